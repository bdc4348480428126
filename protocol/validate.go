package protocol

import (
	"errors"
	"fmt"
	"math"

	"sharedcanvas-server/domain"
	"sharedcanvas-server/roomcode"
)

const maxColorLen = 64

var (
	ErrEmptyRoomID    = errors.New("room id is empty")
	ErrEmptyNickname  = errors.New("nickname is empty")
	ErrFieldTooLong   = errors.New("field too long")
	ErrNotFinite      = errors.New("coordinate is not finite")
	ErrPenWidth       = errors.New("pen width must be positive")
	ErrEmptyColor     = errors.New("color is empty")
	ErrMissingPayload = errors.New("missing payload")
	ErrNotJoined      = errors.New("connection has not joined a room")
	ErrUnknownRoom    = errors.New("room not found")
)

// validateJoin normalizes the room id. Any non-empty room id and nickname
// is accepted; frame size is bounded by the transport.
func validateJoin(req domain.JoinRequest) (domain.JoinRequest, error) {
	req.RoomID = roomcode.Normalize(req.RoomID)

	switch {
	case req.RoomID == "":
		return req, ErrEmptyRoomID
	case req.Nickname == "":
		return req, ErrEmptyNickname
	}
	return req, nil
}

func validateStroke(s domain.Stroke) error {
	for _, v := range []float64{s.X0, s.Y0, s.X1, s.Y1} {
		if !finite(v) {
			return ErrNotFinite
		}
	}
	if !finite(s.PenWidth) || s.PenWidth <= 0 {
		return ErrPenWidth
	}
	if s.Color == "" {
		return ErrEmptyColor
	}
	if len(s.Color) > maxColorLen {
		return fmt.Errorf("color: %w", ErrFieldTooLong)
	}
	return nil
}

func validatePosition(p domain.Position) error {
	if !finite(p.X) || !finite(p.Y) {
		return ErrNotFinite
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
