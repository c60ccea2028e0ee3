// Package sensor provides the decoder used when labels are decoded off-process
// (a phone camera or a handheld scanner posting text to the HTTP API).
package sensor

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"manifest/internal/core/ports"
)

// ErrBusy is returned by Acquire while another feed is held.
var ErrBusy = errors.New("sensor is already acquired")

// Remote hands out one feed at a time. Decoded text reaches the open scan session
// through the HTTP adapter, so the feed carries no events of its own; it marks the
// decoder as claimed until Release.
type Remote struct {
	mu     sync.Mutex
	active *feed
	logger *slog.Logger
}

func NewRemote(logger *slog.Logger) *Remote {
	return &Remote{logger: logger.With("component", "remote-sensor")}
}

// Acquire claims the decoder.
func (r *Remote) Acquire(ctx context.Context) (ports.SensorFeed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return nil, ErrBusy
	}
	f := &feed{owner: r, events: make(chan ports.DecodeEvent)}
	r.active = f
	r.logger.DebugContext(ctx, "sensor acquired")
	return f, nil
}

// Busy reports whether a feed is currently held.
func (r *Remote) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.active != nil
}

func (r *Remote) release(f *feed) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == f {
		r.active = nil
	}
	r.logger.Debug("sensor released")
}

type feed struct {
	owner  *Remote
	events chan ports.DecodeEvent
	once   sync.Once
}

func (f *feed) Events() <-chan ports.DecodeEvent {
	return f.events
}

// Release closes the event channel. Later calls are no-ops.
func (f *feed) Release() error {
	f.once.Do(func() {
		close(f.events)
		f.owner.release(f)
	})
	return nil
}
