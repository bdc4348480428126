package domain

import "encoding/json"

const (
	EventJoinRoom     = "join-room"
	EventInitDrawings = "init-drawings"
	EventDrawing      = "drawing"
	EventCursor       = "cursor"
)

// Message is the envelope carried by every websocket frame.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Stroke is one line segment of a freehand path.
type Stroke struct {
	X0       float64 `json:"x0"`
	Y0       float64 `json:"y0"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	Color    string  `json:"color"`
	PenWidth float64 `json:"penWidth"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type JoinRequest struct {
	RoomID   string `json:"roomId"`
	Nickname string `json:"nickname"`
}

type CursorUpdate struct {
	Position Position `json:"position"`
}

type CursorBroadcast struct {
	Position Position `json:"position"`
	Nickname string   `json:"nickname"`
}

// Session is the per-connection join state. An empty RoomID means unjoined.
type Session struct {
	ConnectionID string
	RoomID       string
	Nickname     string
}

func (s Session) Joined() bool { return s.RoomID != "" }

type Connection interface {
	ID() string
	Send(data []byte) error
	Close() error
}

// Registry owns rooms, their stroke logs and the session of every connection.
type Registry interface {
	Register(conn Connection)
	Join(conn Connection, roomID, nickname string, replay func(strokes []Stroke) error) error
	Leave(conn Connection)
	Session(connID string) (Session, bool)
	AppendStroke(sender Connection, roomID string, stroke Stroke, data []byte) bool
	Broadcast(sender Connection, roomID string, data []byte)
	Stats() (rooms, clients int)
}

type MessageHandler interface {
	Connect(conn Connection)
	Handle(conn Connection, data []byte)
	Disconnect(conn Connection)
}
