package ports

import (
	"context"
	"errors"
)

// ErrNoSymbol marks a decode attempt that saw no symbol. It is noise, not a failure.
var ErrNoSymbol = errors.New("no symbol found")

// DecodeEvent is one push from the decoding collaborator: either decoded text or an error.
type DecodeEvent struct {
	Text string
	Err  error
}

// IsNoise reports whether the event carries neither text nor a meaningful error.
func (e DecodeEvent) IsNoise() bool {
	if e.Err != nil {
		return errors.Is(e.Err, ErrNoSymbol)
	}
	return e.Text == ""
}

// Sensor hands out exclusive access to the barcode/QR decoder.
type Sensor interface {
	// Acquire starts the decoder. Failure is retryable from the caller's point of view.
	Acquire(ctx context.Context) (SensorFeed, error)
}

// SensorFeed is an acquired decoder. Release must be called exactly once on every exit path;
// the Events channel is closed after Release.
type SensorFeed interface {
	Events() <-chan DecodeEvent
	Release() error
}
