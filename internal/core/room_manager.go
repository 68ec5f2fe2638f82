package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/ksuid"

	"github.com/dkeye/Sketch/internal/domain"
)

// RoomManager is the process-wide room store. It is an owned object
// passed by handle into the session layer, never a package global, so
// tests get isolated instances and shutdown is clean.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]RoomService

	ttl      time.Duration
	interval time.Duration
}

// NewRoomManager builds an empty store. ttl is how long an empty room
// survives without activity before the reaper removes it; interval is
// the sweep period of Run.
func NewRoomManager(ttl, interval time.Duration) *RoomManager {
	return &RoomManager{
		rooms:    make(map[domain.RoomID]RoomService),
		ttl:      ttl,
		interval: interval,
	}
}

// CreateRoom mints a fresh URL-safe id and registers an empty room.
// No error path: ksuid collisions are not a practical concern.
func (m *RoomManager) CreateRoom() RoomService {
	id := domain.RoomID(ksuid.New().String())
	room := NewRoomService(&domain.Room{ID: id})

	m.mu.Lock()
	m.rooms[id] = room
	m.mu.Unlock()

	log.Info().Str("module", "core.rooms").Str("room", string(id)).Msg("room created")
	return room
}

func (m *RoomManager) GetRoom(id domain.RoomID) (RoomService, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

func (m *RoomManager) List() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for id, r := range m.rooms {
		out = append(out, RoomInfo{ID: id, MemberCount: r.MemberCount()})
	}
	return out
}

func (m *RoomManager) Remove(id domain.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
}

func (m *RoomManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Run sweeps for abandoned rooms until ctx is canceled. Only rooms that
// are both empty and idle past the ttl are removed; a room with a live
// member is never reaped no matter how quiet it is.
func (m *RoomManager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.reapOnce(now)
		}
	}
}

func (m *RoomManager) reapOnce(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rooms {
		if r.MemberCount() == 0 && now.Sub(r.LastActive()) > m.ttl {
			delete(m.rooms, id)
			log.Info().Str("module", "core.rooms").Str("room", string(id)).Msg("reaped idle room")
		}
	}
}
