package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/google/uuid"

	"grid-fog-engine/config"
	"grid-fog-engine/fog"
	"grid-fog-engine/render"
	"grid-fog-engine/view"
)

var (
	ErrTooManyMaps      = errors.New("maximum number of maps reached")
	ErrMapNotFound      = errors.New("map not found")
	ErrTooManyViewports = errors.New("maximum number of viewports reached")
	ErrViewportExists   = errors.New("viewport already bound")
	ErrViewportNotFound = errors.New("viewport not found")
	ErrInvalidSize      = errors.New("invalid viewport size")
	ErrNoStore          = errors.New("no calibration store configured")
)

// PresetStore looks up saved calibrations. *store.Store implements it.
type PresetStore interface {
	SavePreset(ctx context.Context, name string, cal fog.Calibration) error
	LoadPreset(ctx context.Context, name string) (fog.Calibration, error)
	LoadPresets(ctx context.Context) (map[string]fog.Calibration, error)
	DeletePreset(ctx context.Context, name string) error
}

// Session is one shared Map plus the viewports bound to it. Every mutation,
// broadcast and render runs under mu.
type Session struct {
	ID string

	mu           sync.Mutex
	fogMap       *fog.Map
	viewports    map[string]*Handle
	hub          *Hub
	version      uint64
	renderer     *render.Renderer
	zoom         view.ZoomLimits
	maxViewports int
	maxSize      int
}

type Manager struct {
	sessions map[string]*Session
	mu       sync.Mutex
	cfg      config.Config
	renderer *render.Renderer
	store    PresetStore
}

func NewManager(cfg config.Config) (*Manager, error) {
	opts := render.DefaultOptions()
	opts.ShowGrid = cfg.ShowGrid
	opts.ShowHUD = cfg.ShowHUD
	r, err := render.NewRenderer(opts)
	if err != nil {
		return nil, err
	}
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		renderer: r,
	}, nil
}

func (m *Manager) SetStore(s PresetStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = s
}

func (m *Manager) presets() PresetStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store
}

// Reset drops every session, unbinding their viewports.
func (m *Manager) Reset() {
	m.mu.Lock()
	old := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range old {
		s.Close()
	}
}

// Create loads the calibrated image and opens a session for it.
func (m *Manager) Create(cal fog.Calibration) (*Session, error) {
	fm, err := fog.Open(cal, m.cfg.ImageRoot)
	if err != nil {
		return nil, err
	}
	return m.Adopt(fm)
}

// CreateFromPreset opens a session from a stored calibration.
func (m *Manager) CreateFromPreset(ctx context.Context, name string) (*Session, error) {
	ps := m.presets()
	if ps == nil {
		return nil, ErrNoStore
	}
	cal, err := ps.LoadPreset(ctx, name)
	if err != nil {
		return nil, err
	}
	return m.Create(cal)
}

// Adopt opens a session around an already built map.
func (m *Manager) Adopt(fm *fog.Map) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.cfg.MaxMaps {
		return nil, ErrTooManyMaps
	}

	id := uuid.NewString()
	s := &Session{
		ID:        id,
		fogMap:    fm,
		viewports: make(map[string]*Handle),
		hub:       NewHub(),
		renderer:  m.renderer,
		zoom: view.ZoomLimits{
			Step: m.cfg.ZoomStep,
			Min:  m.cfg.MinZoom,
			Max:  m.cfg.MaxZoom,
		},
		maxViewports: m.cfg.MaxViewportsPerMap,
		maxSize:      m.cfg.MaxViewportSize,
	}
	m.sessions[id] = s

	log.Printf("map created: %s (%dx%d)", id, fm.Columns(), fm.Rows())
	return s, nil
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrMapNotFound
	}
	s.Close()
	log.Println("map removed:", id)
	return nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Bind attaches a new viewport to the map. An empty id gets a fresh uuid.
// onRedraw may be nil and set later with Handle.Observe.
func (s *Session) Bind(id string, mode view.Mode, width, height int, onRedraw func(Redraw)) (*Handle, error) {
	if err := s.checkSize(width, height); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.viewports) >= s.maxViewports {
		return nil, ErrTooManyViewports
	}
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := s.viewports[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrViewportExists, id)
	}

	h := &Handle{
		session: s,
		vp:      view.NewViewport(id, mode, width, height, view.GeometryOf(s.fogMap)),
		bound:   true,
		done:    make(chan struct{}),
	}
	s.viewports[id] = h
	s.hub.Subscribe(id, onRedraw)

	log.Printf("viewport %s (%s) bound to map %s (%d bound)", id, mode, s.ID, len(s.viewports))
	return h, nil
}

func (s *Session) Viewport(id string) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.viewports[id]
	return h, ok
}

// Viewports returns copies of the pan/zoom state of every bound viewport.
func (s *Session) Viewports() []view.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]view.Viewport, 0, len(s.viewports))
	for _, h := range s.viewports {
		out = append(out, h.vp)
	}
	return out
}

func (s *Session) Snapshot() fog.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fogMap.Snapshot()
}

func (s *Session) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Update runs fn against the map under the session lock. When fn reports a
// change, every bound viewport is told to redraw once.
func (s *Session) Update(origin string, fn func(m *fog.Map) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn(s.fogMap) {
		s.commit(origin)
	}
}

// Close unbinds every viewport.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, h := range s.viewports {
		h.release()
		s.hub.Unsubscribe(id)
	}
	s.viewports = make(map[string]*Handle)
}

// checkSize bounds a viewport's pixel size, which is also the size of every
// frame rendered for it.
func (s *Session) checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d must be positive", ErrInvalidSize, width, height)
	}
	if width > s.maxSize || height > s.maxSize {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrInvalidSize, width, height, s.maxSize)
	}
	return nil
}

// commit bumps the version and fans a redraw out to every viewport. Callers
// hold mu.
func (s *Session) commit(origin string) {
	s.version++
	s.hub.Broadcast(Redraw{MapID: s.ID, Origin: origin, Version: s.version, Reason: ReasonCells})
}

func (s *Session) notify(id, reason string) {
	s.hub.Notify(id, Redraw{MapID: s.ID, Origin: id, Version: s.version, Reason: reason})
}

func (s *Session) render(h *Handle) *image.RGBA {
	sel := h.sel
	var pointer *view.Point
	if h.hover {
		p := h.pointer
		pointer = &p
	}
	return s.renderer.Render(s.fogMap, h.vp, &sel, pointer)
}
