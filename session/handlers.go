package session

import (
	"bytes"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"grid-fog-engine/fog"
	"grid-fog-engine/render"
	"grid-fog-engine/store"
	"grid-fog-engine/view"
)

type CreateMapRequest struct {
	fog.Calibration
	Preset string `json:"preset"`
}

type BindRequest struct {
	ViewportID string    `json:"viewportId"`
	Mode       view.Mode `json:"mode"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
}

func errorJSON(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// statusFor maps core errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrTooManyMaps), errors.Is(err, ErrTooManyViewports):
		return fiber.StatusTooManyRequests
	case errors.Is(err, ErrMapNotFound), errors.Is(err, ErrViewportNotFound),
		errors.Is(err, store.ErrPresetNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrViewportExists):
		return fiber.StatusConflict
	case errors.Is(err, ErrNoStore):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, fog.ErrConstruction), errors.Is(err, ErrInvalidSize),
		errors.Is(err, ErrUnknownCommand), errors.Is(err, ErrInvalidMarker),
		errors.Is(err, ErrInvalidZoom), errors.Is(err, fog.ErrOutOfBounds):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotEditor):
		return fiber.StatusForbidden
	case errors.Is(err, ErrUnbound):
		return fiber.StatusGone
	}
	return fiber.StatusInternalServerError
}

func (m *Manager) CreateMap(c *fiber.Ctx) error {
	var req CreateMapRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	var (
		s   *Session
		err error
	)
	if req.Preset != "" {
		s, err = m.CreateFromPreset(c.UserContext(), req.Preset)
	} else {
		s, err = m.Create(req.Calibration)
	}
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"mapId": s.ID,
	})
}

func (m *Manager) lookup(c *fiber.Ctx) (*Session, error) {
	s, ok := m.Get(c.Params("id"))
	if !ok {
		return nil, ErrMapNotFound
	}
	return s, nil
}

func (m *Manager) lookupViewport(c *fiber.Ctx) (*Handle, error) {
	s, err := m.lookup(c)
	if err != nil {
		return nil, err
	}
	h, ok := s.Viewport(c.Params("vid"))
	if !ok {
		return nil, ErrViewportNotFound
	}
	return h, nil
}

func (m *Manager) GetMap(c *fiber.Ctx) error {
	s, err := m.lookup(c)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}

	return c.JSON(fiber.Map{
		"mapId":     s.ID,
		"version":   s.Version(),
		"map":       s.Snapshot(),
		"viewports": s.Viewports(),
	})
}

func (m *Manager) DeleteMap(c *fiber.Ctx) error {
	if err := m.Remove(c.Params("id")); err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (m *Manager) BindViewport(c *fiber.Ctx) error {
	s, err := m.lookup(c)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}

	var req BindRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	h, err := s.Bind(req.ViewportID, req.Mode, req.Width, req.Height, nil)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"viewportId": h.ID(),
		"viewport":   h.Viewport(),
	})
}

func (m *Manager) UnbindViewport(c *fiber.Ctx) error {
	h, err := m.lookupViewport(c)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	h.Unbind()
	return c.SendStatus(fiber.StatusNoContent)
}

// ViewportEvent accepts the same commands as the socket, for shells that
// only speak HTTP.
func (m *Manager) ViewportEvent(c *fiber.Ctx) error {
	h, err := m.lookupViewport(c)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}

	var msg ClientMessage
	if err := c.BodyParser(&msg); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	if err := processCommand(msg, h); err != nil {
		return errorJSON(c, statusFor(err), err)
	}

	return c.JSON(fiber.Map{
		"version":  h.Session().Version(),
		"viewport": h.Viewport(),
	})
}

func (m *Manager) Frame(c *fiber.Ctx) error {
	h, err := m.lookupViewport(c)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}

	frame, err := h.Render()
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, frame); err != nil {
		log.Println("frame:", err)
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(buf.Bytes())
}

func (m *Manager) SavePreset(c *fiber.Ctx) error {
	ps := m.presets()
	if ps == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, ErrNoStore)
	}

	var cal fog.Calibration
	if err := c.BodyParser(&cal); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	if err := cal.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	if err := ps.SavePreset(c.UserContext(), c.Params("name"), cal); err != nil {
		log.Println("save preset:", err)
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (m *Manager) ListPresets(c *fiber.Ctx) error {
	ps := m.presets()
	if ps == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, ErrNoStore)
	}

	presets, err := ps.LoadPresets(c.UserContext())
	if err != nil {
		log.Println("load presets:", err)
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(presets)
}

func (m *Manager) DeletePreset(c *fiber.Ctx) error {
	ps := m.presets()
	if ps == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, ErrNoStore)
	}
	if err := ps.DeletePreset(c.UserContext(), c.Params("name")); err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
