package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/protocol"
)

type fakeConn struct {
	frames []core.Frame
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	if f.closed {
		return errors.New("closed")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestSweep_NotifiesEvictedMembers(t *testing.T) {
	req := require.New(t)
	reg := core.NewRegistry()
	ac, bc := &fakeConn{}, &fakeConn{}

	id, _ := reg.CreateRoom("a", ac)
	_, _, err := reg.JoinRoom(id, "b", bc)
	req.NoError(err)

	s := NewSweeper(reg, time.Hour, time.Minute)
	s.sweep(time.Now().Add(2 * time.Hour))

	req.Zero(reg.RoomCount())
	want := protocol.EncodeError(protocol.ErrRoomExpired)
	req.Len(ac.frames, 1)
	req.JSONEq(string(want), string(ac.frames[0]))
	req.Len(bc.frames, 1)
	req.JSONEq(string(want), string(bc.frames[0]))
}

func TestSweep_FreshRoomUntouched(t *testing.T) {
	req := require.New(t)
	reg := core.NewRegistry()
	ac := &fakeConn{}

	reg.CreateRoom("a", ac)

	s := NewSweeper(reg, time.Hour, time.Minute)
	s.sweep(time.Now())

	req.Equal(1, reg.RoomCount())
	req.Empty(ac.frames)
}

func TestSweep_ClosedMemberSkipped(t *testing.T) {
	req := require.New(t)
	reg := core.NewRegistry()
	ac, bc := &fakeConn{}, &fakeConn{closed: true}

	id, _ := reg.CreateRoom("a", ac)
	_, _, err := reg.JoinRoom(id, "b", bc)
	req.NoError(err)

	s := NewSweeper(reg, time.Hour, time.Minute)
	s.sweep(time.Now().Add(2 * time.Hour))

	// Eviction still completes; the closed peer just misses the notice.
	req.Zero(reg.RoomCount())
	req.Len(ac.frames, 1)
	req.Empty(bc.frames)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	req := require.New(t)
	reg := core.NewRegistry()
	s := NewSweeper(reg, time.Hour, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("sweeper did not stop after cancel")
	}
}
