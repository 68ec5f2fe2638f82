package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/domain"
)

// roomImpl is a threadsafe in-memory room. Log mutations and their fanout
// run under one write lock, so every member observes board events in the
// order the room applied them. It never closes adapter-owned resources.
type roomImpl struct {
	room *domain.Room

	mu         sync.RWMutex
	strokes    []domain.Stroke
	shapes     []domain.Shape
	members    map[SessionID]MemberSession
	lastActive time.Time
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:       room,
		strokes:    make([]domain.Stroke, 0),
		shapes:     make([]domain.Shape, 0),
		members:    make(map[SessionID]MemberSession),
		lastActive: time.Now(),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) LastActive() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActive
}

// Join registers the member, captures the replay snapshot, and enqueues
// the welcome frame to the joiner in one critical section: nothing
// appended after the snapshot is missing from it, nothing in it will be
// re-delivered as a live event, and no later fanout can reach the
// joiner's send queue ahead of its welcome.
func (r *roomImpl) Join(sid SessionID, ms MemberSession, welcome WelcomeFunc) JoinSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[sid] = ms
	r.lastActive = time.Now()

	snap := JoinSnapshot{
		Strokes:      make([]domain.Stroke, len(r.strokes)),
		Shapes:       make([]domain.Shape, len(r.shapes)),
		Participants: r.participantsLocked(),
	}
	copy(snap.Strokes, r.strokes)
	copy(snap.Shapes, r.shapes)

	if welcome != nil {
		if frame, ok := welcome(snap); ok {
			if err := ms.Signal().TrySend(frame); err != nil {
				log.Warn().Err(err).Str("module", "core.room").Str("room", string(r.room.ID)).Str("sid", string(sid)).Msg("welcome frame dropped")
			}
		}
	}

	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("sid", string(sid)).Str("name", ms.Meta().Name).Msg("member joined")
	return snap
}

func (r *roomImpl) Leave(sid SessionID) (ParticipantDTO, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, ok := r.members[sid]
	if !ok {
		return ParticipantDTO{}, false
	}
	delete(r.members, sid)
	r.lastActive = time.Now()
	meta := ms.Meta()
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("sid", string(sid)).Msg("member left")
	return ParticipantDTO{ID: sid, Name: meta.Name, Color: meta.Color}, true
}

func (r *roomImpl) AppendStroke(from SessionID, s domain.Stroke, frame Frame) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strokes = append(r.strokes, s)
	r.lastActive = time.Now()
	return r.fanoutLocked(from, frame)
}

func (r *roomImpl) AppendShape(from SessionID, s domain.Shape, frame Frame) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shapes = append(r.shapes, s)
	r.lastActive = time.Now()
	return r.fanoutLocked(from, frame)
}

// Clear truncates both logs and tells everyone, sender included.
func (r *roomImpl) Clear(frame Frame) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strokes = make([]domain.Stroke, 0)
	r.shapes = make([]domain.Shape, 0)
	r.lastActive = time.Now()
	return r.fanoutLocked("", frame)
}

func (r *roomImpl) Broadcast(from SessionID, frame Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fanoutLocked(from, frame)
}

func (r *roomImpl) BroadcastAll(frame Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fanoutLocked("", frame)
}

// fanoutLocked delivers to every member except from. Callers hold r.mu.
// TrySend never blocks, so a slow peer costs nothing but a Dropped entry.
func (r *roomImpl) fanoutLocked(from SessionID, frame Frame) PublishResult {
	res := PublishResult{}
	for sid, m := range r.members {
		if sid == from {
			continue
		}
		if err := m.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("fanout")
	return res
}

func (r *roomImpl) Participant(sid SessionID) (ParticipantDTO, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ms, ok := r.members[sid]
	if !ok {
		return ParticipantDTO{}, false
	}
	meta := ms.Meta()
	return ParticipantDTO{ID: sid, Name: meta.Name, Color: meta.Color}, true
}

func (r *roomImpl) ParticipantsSnapshot() []ParticipantDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.participantsLocked()
}

func (r *roomImpl) participantsLocked() []ParticipantDTO {
	out := make([]ParticipantDTO, 0, len(r.members))
	for sid, ms := range r.members {
		meta := ms.Meta()
		out = append(out, ParticipantDTO{ID: sid, Name: meta.Name, Color: meta.Color})
	}
	return out
}
