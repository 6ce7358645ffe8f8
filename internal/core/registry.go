package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Rendezvous/internal/domain"
)

// roomState pairs the room entity with its live membership.
type roomState struct {
	room    *domain.Room
	members map[SessionID]SignalConnection
}

// Registry is the single source of truth for rooms and membership.
// Every operation takes the one mutex, so capacity checks, membership
// moves and sweeps are atomic with respect to each other.
type Registry struct {
	mu       sync.Mutex
	rooms    map[domain.RoomID]*roomState
	byMember map[SessionID]domain.RoomID
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[domain.RoomID]*roomState),
		byMember: make(map[SessionID]domain.RoomID),
	}
}

// Removal reports the room a departing connection was in and the
// members that remain there, so the caller can notify them.
type Removal struct {
	RoomID    domain.RoomID
	Remaining []SignalConnection
}

// Eviction is one expired room yielded by SweepExpired.
type Eviction struct {
	RoomID  domain.RoomID
	Members []SignalConnection
}

// RoomInfo is a read-only view for APIs (no transport fields).
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
	CreatedAt   time.Time     `json:"created_at"`
}

// CreateRoom makes a fresh room with the initiator as its only member
// and returns its id. A connection belongs to at most one room: if the
// initiator is still in another room it is detached first, and the
// prior removal is returned so the caller can notify the abandoned
// peer.
func (r *Registry) CreateRoom(sid SessionID, conn SignalConnection) (domain.RoomID, *Removal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prior := r.detachLocked(sid)

	id := domain.NewRoomID()
	r.rooms[id] = &roomState{
		room:    &domain.Room{ID: id, CreatedAt: time.Now()},
		members: map[SessionID]SignalConnection{sid: conn},
	}
	r.byMember[sid] = id
	log.Info().Str("module", "core.registry").Str("room", string(id)).Str("sid", string(sid)).Msg("room created")
	return id, prior
}

// JoinRoom adds the joiner to an existing room and returns the members
// that were already there, for notification. Fails with
// domain.ErrRoomNotFound or domain.ErrRoomFull; failures leave the
// registry untouched. Joining the room the connection is already in is
// a no-op that still reports the other members. As with CreateRoom, a
// successful join detaches the joiner from any previous room and
// reports that removal.
func (r *Registry) JoinRoom(id domain.RoomID, sid SessionID, conn SignalConnection) ([]SignalConnection, *Removal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.rooms[id]
	if !ok {
		return nil, nil, domain.ErrRoomNotFound
	}
	if _, already := st.members[sid]; !already && len(st.members) >= domain.RoomCapacity {
		return nil, nil, domain.ErrRoomFull
	}

	peers := make([]SignalConnection, 0, len(st.members))
	for msid, mc := range st.members {
		if msid != sid {
			peers = append(peers, mc)
		}
	}
	if _, already := st.members[sid]; already {
		return peers, nil, nil
	}

	prior := r.detachLocked(sid)
	st.members[sid] = conn
	r.byMember[sid] = id
	log.Info().Str("module", "core.registry").Str("room", string(id)).Str("sid", string(sid)).Int("members", len(st.members)).Msg("member joined")
	return peers, prior, nil
}

// RemoveConnection detaches the connection from its room, if any, and
// deletes the room once empty. Removing an unknown connection is a
// no-op.
func (r *Registry) RemoveConnection(sid SessionID) (Removal, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rem := r.detachLocked(sid)
	if rem == nil {
		return Removal{}, false
	}
	return *rem, true
}

// RelayTarget resolves the other member of the room the sender claims.
// A room holding only the sender yields a nil target and no error; the
// relay is then a no-op.
func (r *Registry) RelayTarget(id domain.RoomID, sender SessionID) (SignalConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	for msid, mc := range st.members {
		if msid != sender {
			return mc, nil
		}
	}
	return nil, nil
}

// SweepExpired removes every room older than ttl and yields its member
// set for notification. One-shot: re-running scans the then-current
// state.
func (r *Registry) SweepExpired(now time.Time, ttl time.Duration) []Eviction {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []Eviction
	for id, st := range r.rooms {
		if !st.room.Expired(now, ttl) {
			continue
		}
		ev := Eviction{RoomID: id, Members: make([]SignalConnection, 0, len(st.members))}
		for msid, mc := range st.members {
			ev.Members = append(ev.Members, mc)
			delete(r.byMember, msid)
		}
		delete(r.rooms, id)
		evicted = append(evicted, ev)
		log.Info().Str("module", "core.registry").Str("room", string(id)).Int("members", len(ev.Members)).Msg("room expired")
	}
	return evicted
}

// Rooms returns a snapshot for the REST listing.
func (r *Registry) Rooms() []RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RoomInfo, 0, len(r.rooms))
	for id, st := range r.rooms {
		out = append(out, RoomInfo{ID: id, MemberCount: len(st.members), CreatedAt: st.room.CreatedAt})
	}
	return out
}

func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// detachLocked removes sid from its current room, deletes the room
// when it becomes empty, and reports who stayed behind. Callers hold
// r.mu.
func (r *Registry) detachLocked(sid SessionID) *Removal {
	id, ok := r.byMember[sid]
	if !ok {
		return nil
	}
	delete(r.byMember, sid)
	st, ok := r.rooms[id]
	if !ok {
		return nil
	}
	delete(st.members, sid)
	rem := &Removal{RoomID: id}
	for _, mc := range st.members {
		rem.Remaining = append(rem.Remaining, mc)
	}
	if len(st.members) == 0 {
		delete(r.rooms, id)
		log.Info().Str("module", "core.registry").Str("room", string(id)).Msg("room removed (empty)")
	}
	return rem
}
