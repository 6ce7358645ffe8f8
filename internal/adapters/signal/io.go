package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/protocol"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsSignalConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.onDisconnect(sid)
		cancel()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleMessage(sid, c, data)
		}
	}
}

// handleMessage is the dispatch table: the envelope type picks the
// handler, anything else is answered with an error message on the same
// connection. Domain errors never close the connection.
func (ctl *Controller) handleMessage(sid core.SessionID, c core.SignalConnection, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		ctl.sendError(c, protocol.ErrInvalidFormat)
		return
	}

	switch env.Type {
	case protocol.TypeCreateRoom:
		ctl.handleCreate(sid, c)
	case protocol.TypeJoinRoom:
		ctl.handleJoin(sid, c, env)
	case protocol.TypeOffer, protocol.TypeAnswer, protocol.TypeICECandidate:
		ctl.handleRelay(sid, c, env, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(c, protocol.ErrUnknownType)
	}
}

func (ctl *Controller) sendError(c core.SignalConnection, message string) {
	_ = c.TrySend(protocol.EncodeError(message))
}
