package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"sharedcanvas-server/domain"
)

// Handler is the synchronization engine: it decodes client events, updates
// the registry and decides who receives what. Malformed or out-of-protocol
// events are logged and dropped; nothing is reported back to the sender.
type Handler struct {
	registry domain.Registry
}

func NewHandler(r domain.Registry) *Handler {
	return &Handler{registry: r}
}

func (h *Handler) Handle(conn domain.Connection, data []byte) {
	var msg domain.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("invalid message", "clientId", conn.ID(), "error", err)
		return
	}

	var err error
	switch msg.Type {
	case domain.EventJoinRoom:
		err = h.handleJoin(conn, msg.Data)
	case domain.EventDrawing:
		err = h.handleStroke(conn, msg.Data)
	case domain.EventCursor:
		err = h.handleCursor(conn, msg.Data)
	default:
		slog.Warn("unknown event", "clientId", conn.ID(), "type", msg.Type)
		return
	}
	if err != nil {
		slog.Debug("event dropped", "clientId", conn.ID(), "type", msg.Type, "error", err)
	}
}

func (h *Handler) Connect(conn domain.Connection) {
	h.registry.Register(conn)
}

func (h *Handler) Disconnect(conn domain.Connection) {
	h.registry.Leave(conn)
}

func (h *Handler) handleJoin(conn domain.Connection, data json.RawMessage) error {
	var req domain.JoinRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	req, err := validateJoin(req)
	if err != nil {
		return err
	}

	return h.registry.Join(conn, req.RoomID, req.Nickname, func(strokes []domain.Stroke) error {
		if strokes == nil {
			strokes = []domain.Stroke{}
		}
		payload, err := Encode(domain.EventInitDrawings, strokes)
		if err != nil {
			return err
		}
		return conn.Send(payload)
	})
}

func (h *Handler) handleStroke(conn domain.Connection, data json.RawMessage) error {
	s, ok := h.registry.Session(conn.ID())
	if !ok || !s.Joined() {
		return fmt.Errorf("stroke: %w", ErrNotJoined)
	}

	var stroke domain.Stroke
	if err := decode(data, &stroke); err != nil {
		return err
	}
	if err := validateStroke(stroke); err != nil {
		return err
	}

	payload, err := Encode(domain.EventDrawing, stroke)
	if err != nil {
		return err
	}
	if !h.registry.AppendStroke(conn, s.RoomID, stroke, payload) {
		return fmt.Errorf("room %s: %w", s.RoomID, ErrUnknownRoom)
	}
	return nil
}

func (h *Handler) handleCursor(conn domain.Connection, data json.RawMessage) error {
	s, ok := h.registry.Session(conn.ID())
	if !ok || !s.Joined() {
		return fmt.Errorf("cursor: %w", ErrNotJoined)
	}

	var update domain.CursorUpdate
	if err := decode(data, &update); err != nil {
		return err
	}
	if err := validatePosition(update.Position); err != nil {
		return err
	}

	payload, err := Encode(domain.EventCursor, domain.CursorBroadcast{
		Position: update.Position,
		Nickname: s.Nickname,
	})
	if err != nil {
		return err
	}
	h.registry.Broadcast(conn, s.RoomID, payload)
	return nil
}

// Encode wraps v in an envelope of the given event type.
func Encode(event string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event, err)
	}
	return json.Marshal(domain.Message{Type: event, Data: data})
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ErrMissingPayload
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
