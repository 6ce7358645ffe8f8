// Package domain contains entities without logic, just meta-data.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoomCapacity is the hard member limit of a room. Rooms pair exactly
// two peers for a single negotiation session.
const RoomCapacity = 2

type RoomID string

// Room is a two-party rendezvous point. Membership lives in the
// registry; the entity only carries identity and age.
type Room struct {
	ID        RoomID
	CreatedAt time.Time
}

// NewRoomID returns a short opaque identifier. Eight hex chars of a v4
// UUID; collisions among live rooms are treated as negligible.
func NewRoomID() RoomID {
	return RoomID(uuid.NewString()[:8])
}

// Expired reports whether the room is older than ttl at the given moment.
func (r *Room) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.CreatedAt) > ttl
}
