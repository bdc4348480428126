package hub

import "sharedcanvas-server/domain"

// strokeLog is an append-only sequence of strokes. It is not safe for
// concurrent use; the owning room serialises access.
type strokeLog struct {
	strokes []domain.Stroke
}

func (l *strokeLog) append(s domain.Stroke) {
	l.strokes = append(l.strokes, s)
}

// snapshot returns a copy that later appends cannot change.
func (l *strokeLog) snapshot() []domain.Stroke {
	out := make([]domain.Stroke, len(l.strokes))
	copy(out, l.strokes)
	return out
}

func (l *strokeLog) len() int {
	return len(l.strokes)
}
