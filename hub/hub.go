package hub

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"sharedcanvas-server/domain"
)

// Hub is the room registry. It maps room ids to rooms (stroke log plus
// members) and tracks the session of every live connection.
//
// Lock order is h.mu, then room.mu, then h.sessMu.
type Hub struct {
	rooms map[string]*room
	mu    sync.RWMutex

	sessions map[string]domain.Session
	sessMu   sync.Mutex

	evictAfter time.Duration
	closed     atomic.Bool
}

type Option func(*Hub)

// WithEvictAfter drops a room once it has had no members for d.
// Zero keeps rooms for the lifetime of the hub.
func WithEvictAfter(d time.Duration) Option {
	return func(h *Hub) { h.evictAfter = d }
}

func New(opts ...Option) *Hub {
	h := &Hub{
		rooms:    make(map[string]*room),
		sessions: make(map[string]domain.Session),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register creates the unjoined session of a new connection.
func (h *Hub) Register(conn domain.Connection) {
	h.sessMu.Lock()
	h.sessions[conn.ID()] = domain.Session{ConnectionID: conn.ID()}
	h.sessMu.Unlock()

	slog.Debug("client registered", "clientId", conn.ID())
}

// Join moves conn into roomID under nickname. replay receives the room's
// history; it runs inside the room's critical section, so anything it
// enqueues on conn precedes every stroke broadcast after the snapshot.
// If replay fails conn is not registered and is dropped like a slow member.
func (h *Hub) Join(conn domain.Connection, roomID, nickname string, replay func(strokes []domain.Stroke) error) error {
	if prev, ok := h.Session(conn.ID()); ok && prev.Joined() {
		h.removeMember(prev.RoomID, conn.ID())
	}

	for {
		r := h.getOrCreateRoom(roomID)

		r.mu.Lock()
		if r.evicted {
			r.mu.Unlock()
			continue
		}
		if r.evict != nil {
			r.evict.Stop()
			r.evict = nil
		}
		r.evictGen++

		history := r.log.snapshot()
		if replay != nil {
			if err := replay(history); err != nil {
				h.sessMu.Lock()
				if _, ok := h.sessions[conn.ID()]; ok {
					h.sessions[conn.ID()] = domain.Session{ConnectionID: conn.ID()}
				}
				h.sessMu.Unlock()
				h.scheduleEvict(r)
				r.mu.Unlock()

				h.dropSlow([]domain.Connection{conn})
				return fmt.Errorf("replay room %s: %w", roomID, err)
			}
		}
		r.members[conn.ID()] = member{conn: conn, nickname: nickname}
		count := len(r.members)

		h.sessMu.Lock()
		h.sessions[conn.ID()] = domain.Session{ConnectionID: conn.ID(), RoomID: roomID, Nickname: nickname}
		h.sessMu.Unlock()
		r.mu.Unlock()

		slog.Info("client joined", "room", roomID, "clientId", conn.ID(), "nickname", nickname,
			"clients", count, "strokes", len(history))
		return nil
	}
}

// Leave discards the session of conn and its room membership. The room's
// stroke log is untouched. Calling Leave twice is harmless.
func (h *Hub) Leave(conn domain.Connection) {
	h.sessMu.Lock()
	s, ok := h.sessions[conn.ID()]
	delete(h.sessions, conn.ID())
	h.sessMu.Unlock()

	if !ok {
		return
	}
	if s.Joined() {
		h.removeMember(s.RoomID, conn.ID())
	}
	slog.Info("client disconnected", "room", s.RoomID, "clientId", conn.ID(), "nickname", s.Nickname)
}

func (h *Hub) Session(connID string) (domain.Session, bool) {
	h.sessMu.Lock()
	defer h.sessMu.Unlock()
	s, ok := h.sessions[connID]
	return s, ok
}

// AppendStroke appends stroke to the log of roomID and relays data to every
// other member. Both happen in one critical section so relay order matches
// log order. It reports false when the room does not exist.
func (h *Hub) AppendStroke(sender domain.Connection, roomID string, stroke domain.Stroke, data []byte) bool {
	r := h.lookup(roomID)
	if r == nil {
		return false
	}

	r.mu.Lock()
	if r.evicted {
		r.mu.Unlock()
		return false
	}
	r.log.append(stroke)
	failed := r.fanOut(sender.ID(), data)
	r.mu.Unlock()

	h.dropSlow(failed)
	return true
}

// Broadcast relays data to every member of roomID except sender without
// touching the log.
func (h *Hub) Broadcast(sender domain.Connection, roomID string, data []byte) {
	r := h.lookup(roomID)
	if r == nil {
		return
	}

	r.mu.Lock()
	failed := r.fanOut(sender.ID(), data)
	r.mu.Unlock()

	h.dropSlow(failed)
}

// Snapshot returns the stroke history of roomID in append order.
func (h *Hub) Snapshot(roomID string) ([]domain.Stroke, bool) {
	r := h.lookup(roomID)
	if r == nil {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.snapshot(), true
}

// StrokeCount returns the length of the stroke log of roomID.
func (h *Hub) StrokeCount(roomID string) (int, bool) {
	r := h.lookup(roomID)
	if r == nil {
		return 0, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.len(), true
}

// Members returns the nicknames currently joined to roomID.
func (h *Hub) Members(roomID string) ([]string, bool) {
	r := h.lookup(roomID)
	if r == nil {
		return nil, false
	}
	return r.nicknames(), true
}

func (h *Hub) Stats() (rooms, clients int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms = len(h.rooms)
	for _, r := range h.rooms {
		r.mu.Lock()
		clients += len(r.members)
		r.mu.Unlock()
	}
	return rooms, clients
}

// Sessions returns the number of live connections, joined or not.
func (h *Hub) Sessions() int {
	h.sessMu.Lock()
	defer h.sessMu.Unlock()
	return len(h.sessions)
}

// Close stops pending evictions. Rooms stay readable.
func (h *Hub) Close() {
	h.closed.Store(true)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.rooms {
		r.mu.Lock()
		if r.evict != nil {
			r.evict.Stop()
			r.evict = nil
		}
		r.mu.Unlock()
	}
}

func (h *Hub) getOrCreateRoom(roomID string) *room {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		r = newRoom(roomID)
		h.rooms[roomID] = r
		slog.Info("room created", "room", roomID)
	}
	return r
}

func (h *Hub) lookup(roomID string) *room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[roomID]
}

func (h *Hub) removeMember(roomID, connID string) {
	r := h.lookup(roomID)
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members, connID)
	h.scheduleEvict(r)
}

// scheduleEvict arms the eviction timer of an empty room. Callers hold r.mu.
func (h *Hub) scheduleEvict(r *room) {
	if len(r.members) > 0 || r.evicted || h.evictAfter <= 0 || h.closed.Load() {
		return
	}
	if r.evict != nil {
		r.evict.Stop()
	}

	r.evictGen++
	gen := r.evictGen
	r.evict = time.AfterFunc(h.evictAfter, func() { h.evictIfIdle(r, gen) })
}

func (h *Hub) evictIfIdle(r *room, gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.evicted || r.evictGen != gen || len(r.members) > 0 {
		return
	}
	r.evicted = true
	r.evict = nil
	if h.rooms[r.id] == r {
		delete(h.rooms, r.id)
	}
	slog.Info("room removed", "room", r.id, "strokes", r.log.len())
}

// dropSlow disconnects members whose send queue overflowed.
func (h *Hub) dropSlow(conns []domain.Connection) {
	for _, c := range conns {
		slog.Warn("send queue full, dropping client", "clientId", c.ID())
		go func(c domain.Connection) {
			h.Leave(c)
			c.Close()
		}(c)
	}
}
