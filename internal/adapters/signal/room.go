package signal

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/dkeye/Rendezvous/internal/protocol"
)

func (ctl *Controller) handleCreate(sid core.SessionID, c core.SignalConnection) {
	id, prior := ctl.Registry.CreateRoom(sid, c)
	ctl.notifyLeft(prior)
	_ = c.TrySend(protocol.EncodeRoomEvent(protocol.TypeRoomCreated, string(id)))
}

func (ctl *Controller) handleJoin(sid core.SessionID, c core.SignalConnection, env protocol.Envelope) {
	id := domain.RoomID(env.RoomID)
	peers, prior, err := ctl.Registry.JoinRoom(id, sid, c)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("room", env.RoomID).Str("sid", string(sid)).Msg("join rejected")
		if errors.Is(err, domain.ErrRoomFull) {
			ctl.sendError(c, protocol.ErrRoomFull)
		} else {
			ctl.sendError(c, protocol.ErrRoomNotFound)
		}
		return
	}

	ctl.notifyLeft(prior)
	_ = c.TrySend(protocol.EncodeRoomEvent(protocol.TypeRoomJoined, string(id)))
	joined := core.Frame(protocol.EncodeRoomEvent(protocol.TypePeerJoined, string(id)))
	for _, peer := range peers {
		_ = peer.TrySend(joined)
	}
}

// handleRelay forwards the original frame bytes untouched, so the
// negotiation payload's shape never matters here. The asserted roomId
// is trusted; only the sender itself is excluded as a target.
func (ctl *Controller) handleRelay(sid core.SessionID, c core.SignalConnection, env protocol.Envelope, data []byte) {
	target, err := ctl.Registry.RelayTarget(domain.RoomID(env.RoomID), sid)
	if err != nil {
		ctl.sendError(c, protocol.ErrRoomNotFound)
		return
	}
	if target == nil {
		// Alone in the room: nothing to forward, not an error.
		return
	}
	_ = target.TrySend(core.Frame(data))
}

// onDisconnect runs once per connection when its read loop exits.
func (ctl *Controller) onDisconnect(sid core.SessionID) {
	rem, ok := ctl.Registry.RemoveConnection(sid)
	if !ok {
		return
	}
	ctl.notifyLeft(&rem)
}

// notifyLeft tells the members left behind that their peer is gone.
// Best-effort: closed connections just miss the notice.
func (ctl *Controller) notifyLeft(rem *core.Removal) {
	if rem == nil {
		return
	}
	left := core.Frame(protocol.EncodeRoomEvent(protocol.TypePeerLeft, string(rem.RoomID)))
	for _, peer := range rem.Remaining {
		_ = peer.TrySend(left)
	}
}
