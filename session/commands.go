package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"grid-fog-engine/fog"
	"grid-fog-engine/view"
)

var ErrUnknownCommand = errors.New("unknown message type")

type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Payloads marshalling
type PointerPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button Button  `json:"button"`
}

type ScrollPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Delta float64 `json:"delta"`
}

type MarkerPayload struct {
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Marker fog.CellState `json:"marker"`
}

type ViewPayload struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func processCommand(msg ClientMessage, h *Handle) error {
	switch msg.Type {
	case "pointer_down":
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.PointerDown(p.X, p.Y, p.Button)
	case "pointer_move":
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.PointerMove(p.X, p.Y)
	case "pointer_up":
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.PointerUp(p.X, p.Y, p.Button)
	case "scroll":
		var p ScrollPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.Scroll(p.X, p.Y, p.Delta)
	case "pointer_leave":
		return h.PointerLeave()
	case "cancel":
		return h.Cancel()
	case "place_marker":
		var p MarkerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.PlaceMarker(p.X, p.Y, p.Marker)
	case "resize":
		var p ResizePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.Resize(p.Width, p.Height)
	case "set_view":
		var p ViewPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.SetView(view.Point{X: p.X, Y: p.Y}, p.Zoom)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, msg.Type)
	}
}
