package hub

import (
	"sync"
	"time"

	"sharedcanvas-server/domain"
)

type member struct {
	conn     domain.Connection
	nickname string
}

type room struct {
	id      string
	log     strokeLog
	members map[string]member
	mu      sync.Mutex

	// evicted is set once the room has been dropped from the registry;
	// joins that raced with eviction must look the room up again.
	evicted  bool
	evict    *time.Timer
	evictGen uint64
}

func newRoom(id string) *room {
	return &room{
		id:      id,
		members: make(map[string]member),
	}
}

// fanOut sends data to every member except the one with excludeID and
// returns the members whose send failed. Callers hold r.mu.
func (r *room) fanOut(excludeID string, data []byte) []domain.Connection {
	var failed []domain.Connection
	for id, m := range r.members {
		if id == excludeID {
			continue
		}
		if err := m.conn.Send(data); err != nil {
			failed = append(failed, m.conn)
		}
	}
	return failed
}

func (r *room) nicknames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m.nickname)
	}
	return out
}
