// Package protocol defines the signaling wire catalog. Every payload is
// a JSON object with a "type" discriminator; relay payloads additionally
// carry negotiation fields the server never looks at.
package protocol

import "encoding/json"

// Inbound message types.
const (
	TypeCreateRoom   = "create_room"
	TypeJoinRoom     = "join_room"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice_candidate"
)

// Outbound message types.
const (
	TypeRoomCreated = "room_created"
	TypeRoomJoined  = "room_joined"
	TypePeerJoined  = "peer_joined"
	TypePeerLeft    = "peer_left"
	TypeError       = "error"
)

// Error texts sent to clients.
const (
	ErrInvalidFormat = "Invalid message format"
	ErrUnknownType   = "Unknown message type"
	ErrRoomNotFound  = "Room not found"
	ErrRoomFull      = "Room is full"
	ErrRoomExpired   = "Room expired"
)

// Envelope is the part of an inbound frame the router needs: the type
// and the asserted room. The rest of the frame stays opaque and relay
// frames are forwarded as the original bytes.
type Envelope struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// RoomEvent is any outbound event that names a room.
type RoomEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// ErrorEvent carries a human-readable failure to the sender.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// EncodeRoomEvent builds e.g. {"type":"room_created","roomId":"..."}.
func EncodeRoomEvent(typ, roomID string) []byte {
	return encode(RoomEvent{Type: typ, RoomID: roomID})
}

func EncodeError(message string) []byte {
	return encode(ErrorEvent{Type: TypeError, Message: message})
}

// encode marshals a plain struct; these cannot fail.
func encode(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
