package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

// Time allowed to write a message to the peer.
const writeWait = 2 * time.Second

// HandleWS attaches a socket to an already bound viewport. Pointer commands
// flow in, redraw notices flow out. Closing the socket unbinds the viewport.
func (m *Manager) HandleWS(c *websocket.Conn) {
	s, ok := m.Get(c.Params("mapId"))
	if !ok {
		c.Close()
		return
	}
	h, ok := s.Viewport(c.Params("viewportId"))
	if !ok {
		c.Close()
		return
	}

	// One pending redraw is enough: a newer one replaces it.
	redraws := make(chan Redraw, 1)
	observe := func(r Redraw) {
		select {
		case redraws <- r:
		default:
			select {
			case <-redraws:
			default:
			}
			select {
			case redraws <- r:
			default:
			}
		}
	}
	if err := h.Observe(observe); err != nil {
		c.Close()
		return
	}
	log.Printf("socket attached to viewport %s of map %s", h.ID(), s.ID)

	defer func() {
		h.Unbind()
		c.Close()
	}()

	ping := m.pingInterval()
	pongWait := 3 * ping
	_ = c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})

	group, ctx := errgroup.WithContext(context.Background())
	group.Go(func() error {
		return readCommands(c, h)
	})
	group.Go(func() error {
		// The reader only stops on a socket error, so the writer closes
		// the socket whenever it stops.
		defer c.Close()
		return publish(ctx, c, h, redraws, ping)
	})

	err := group.Wait()
	select {
	case <-h.Done():
		log.Printf("socket of viewport %s closed: viewport unbound", h.ID())
	default:
		if err != nil && !isClosure(err) {
			log.Println("socket:", err)
		}
	}
}

func readCommands(c *websocket.Conn, h *Handle) error {
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			return err
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(msg, &clientMsg); err != nil {
			log.Println("invalid message:", err)
			continue
		}
		if err := processCommand(clientMsg, h); err != nil {
			log.Printf("viewport %s: %s: %v", h.ID(), clientMsg.Type, err)
		}
	}
}

// publish is the only writer on the socket. When the viewport is unbound it
// sends a final "unbound" message and a close frame.
func publish(ctx context.Context, c *websocket.Conn, h *Handle, redraws <-chan Redraw, ping time.Duration) error {
	pinger := channerics.NewTicker(ctx.Done(), ping)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.Done():
			if err := c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("failed to set deadline: %w", err)
			}
			if err := c.WriteJSON(ServerMessage{Type: "unbound", Payload: map[string]string{"viewportId": h.ID()}}); err != nil {
				return fmt.Errorf("unbound notice failed: %w", err)
			}
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "viewport unbound")
			if err := c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("close failed: %w", err)
			}
			return nil
		case <-pinger:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
		case r := <-redraws:
			if err := c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("failed to set deadline: %w", err)
			}
			if err := c.WriteJSON(ServerMessage{Type: "redraw", Payload: r}); err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}
		}
	}
}

func isClosure(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

func (m *Manager) pingInterval() time.Duration {
	if m.cfg.PingIntervalMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(m.cfg.PingIntervalMs) * time.Millisecond
}
