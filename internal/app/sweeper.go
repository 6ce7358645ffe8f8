package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/protocol"
)

// Sweeper bounds room lifetime: on every tick it evicts rooms older
// than TTL and tells their members. Connections are only notified,
// never closed here.
type Sweeper struct {
	Registry *core.Registry
	TTL      time.Duration
	Interval time.Duration
}

func NewSweeper(reg *core.Registry, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{Registry: reg, TTL: ttl, Interval: interval}
}

// Run blocks until ctx is canceled. Start it in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	log.Info().Str("module", "app.sweeper").Dur("ttl", s.TTL).Dur("interval", s.Interval).Msg("sweeper started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.sweeper").Msg("sweeper stopped")
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *Sweeper) sweep(now time.Time) {
	evictions := s.Registry.SweepExpired(now, s.TTL)
	if len(evictions) == 0 {
		return
	}
	expired := core.Frame(protocol.EncodeError(protocol.ErrRoomExpired))
	for _, ev := range evictions {
		for _, conn := range ev.Members {
			// Best-effort: closed or congested peers just miss the notice.
			_ = conn.TrySend(expired)
		}
	}
	log.Info().Str("module", "app.sweeper").Int("rooms", len(evictions)).Msg("evicted expired rooms")
}
