// Package scangate implements the re-scan confirmation that must succeed before an
// item can be marked delivered.
//
// A Session is bound to a copy of the item's id and code taken when it opens. The
// operator re-presents the parcel; decode events are matched verbatim against the
// copied code. On a match the sensor is released and the item is delivered, either
// right away or after an optional disposition prompt. Every exit path releases the
// sensor exactly once.
package scangate

import (
	"context"
	"log/slog"
	"sync"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/ports"
	"manifest/internal/pkg/errs"
)

// ItemStore is the part of the manifest store the gate needs.
type ItemStore interface {
	Get(id kernel.UUID) (*item.Item, error)
	FindActiveByCode(code string) *item.Item
	Deliver(ctx context.Context, id kernel.UUID, conf item.ScanConfirmation, disposition item.Disposition, note string) error
}

// Option customizes a Gate.
type Option func(*Gate)

// WithDispositionPrompt controls whether a match waits for Finalize (true, the
// default) or delivers immediately.
func WithDispositionPrompt(enabled bool) Option {
	return func(g *Gate) { g.promptDisposition = enabled }
}

// Gate hands out scan sessions. At most one session is open at a time.
type Gate struct {
	mu      sync.Mutex
	current *Session

	store             ItemStore
	issuer            *item.ScanIssuer
	sensor            ports.Sensor
	feedback          ports.Feedback
	logger            *slog.Logger
	promptDisposition bool
}

// NewGate creates a Gate. issuer must be the one the store was given, otherwise
// every delivery is refused.
func NewGate(store ItemStore, issuer *item.ScanIssuer, sensor ports.Sensor, feedback ports.Feedback, logger *slog.Logger, opts ...Option) *Gate {
	g := &Gate{
		store:             store,
		issuer:            issuer,
		sensor:            sensor,
		feedback:          feedback,
		logger:            logger.With("component", "scan-gate"),
		promptDisposition: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Open starts a confirmation session for the item. Name and address are checked
// before the sensor is touched. Any session still open is cancelled first.
// A sensor that cannot be acquired yields a retryable errs.ExternalServiceError.
func (g *Gate) Open(ctx context.Context, itemID kernel.UUID) (*Session, error) {
	it, err := g.store.Get(itemID)
	if err != nil {
		return nil, err
	}
	if err = it.ValidateRecipient(); err != nil {
		return nil, err
	}
	if err = it.Status().ValidateDeliverable(); err != nil {
		return nil, err
	}

	g.teardown()

	feed, err := g.sensor.Acquire(ctx)
	if err != nil {
		g.logger.WarnContext(ctx, "sensor acquisition failed", "itemId", itemID.String(), "error", err)
		return nil, errs.NewRetryableExternalServiceError("sensor", err)
	}

	s := newSession(g, it.ID(), it.Code(), feed)

	g.mu.Lock()
	stale := g.current
	g.current = s
	g.mu.Unlock()
	if stale != nil {
		_ = stale.Cancel()
	}

	g.logger.InfoContext(ctx, "scan session opened", "itemId", itemID.String())
	return s, nil
}

// Current returns the open session, if any.
func (g *Gate) Current() (*Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.current, g.current != nil
}

// Close cancels the open session, if any.
func (g *Gate) Close() {
	g.teardown()
}

func (g *Gate) teardown() {
	g.mu.Lock()
	prev := g.current
	g.current = nil
	g.mu.Unlock()

	if prev != nil {
		if err := prev.Cancel(); err != nil {
			g.logger.Warn("sensor release failed", "itemId", prev.ItemID().String(), "error", err)
		}
	}
}

func (g *Gate) detach(s *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current == s {
		g.current = nil
	}
}
