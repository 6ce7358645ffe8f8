package core

// Frame is a raw wire payload. Relay frames are forwarded verbatim, so
// the core never parses them.
type Frame []byte

// SessionID identifies one client connection for its whole lifetime.
type SessionID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues a frame without blocking. It fails when the peer
	// is closed or its send buffer is full; callers treat delivery as
	// best-effort and ignore the error for notifications.
	TrySend(Frame) error
	Close()
}
