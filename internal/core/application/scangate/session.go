package scangate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/agnivade/levenshtein"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/ports"
	"manifest/internal/pkg/errs"
)

// nearMissMaxDistance is the largest edit distance reported as a likely misread.
const nearMissMaxDistance = 2

// State is the lifecycle position of a Session.
type State int

const (
	StateScanning State = iota
	StateAwaitingDisposition
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateAwaitingDisposition:
		return "awaiting_disposition"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// OutcomeKind classifies one decode event.
type OutcomeKind string

const (
	// OutcomeIgnored: the session is no longer scanning.
	OutcomeIgnored OutcomeKind = "ignored"
	// OutcomeNoise: nothing decoded, still scanning.
	OutcomeNoise OutcomeKind = "noise"
	// OutcomeWarning: a decode error that does not end the session.
	OutcomeWarning OutcomeKind = "warning"
	// OutcomeMismatch: decoded text differs from the expected code.
	OutcomeMismatch OutcomeKind = "mismatch"
	// OutcomeMatch: decoded text equals the expected code; waiting for Finalize.
	OutcomeMatch OutcomeKind = "match"
	// OutcomeDelivered: matched and delivered without a disposition prompt.
	OutcomeDelivered OutcomeKind = "delivered"
)

// Hint helps the operator understand a mismatch.
type Hint struct {
	EditDistance int
	NearMiss     bool
	// OtherItemID is set when the decoded code belongs to another active item.
	OtherItemID   string
	OtherItemName string
}

// Outcome is the result of handling one decode event.
type Outcome struct {
	Kind    OutcomeKind
	Decoded string
	Hint    *Hint
	Err     error
}

// Session is one open confirmation for one item.
type Session struct {
	mu sync.Mutex

	gate         *Gate
	itemID       kernel.UUID
	expectedCode string
	feed         ports.SensorFeed
	state        State
	confirmation item.ScanConfirmation

	releaseOnce sync.Once
	releaseErr  error
	scanDone    chan struct{}
}

func newSession(g *Gate, itemID kernel.UUID, code string, feed ports.SensorFeed) *Session {
	return &Session{
		gate:         g,
		itemID:       itemID,
		expectedCode: code,
		feed:         feed,
		state:        StateScanning,
		scanDone:     make(chan struct{}),
	}
}

// ItemID returns the id captured when the session opened.
func (s *Session) ItemID() kernel.UUID {
	return s.itemID
}

// ExpectedCode returns the code captured when the session opened.
func (s *Session) ExpectedCode() string {
	return s.expectedCode
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// OnDecode classifies one decode event. Calls are serialised, so events are handled
// in arrival order; anything arriving after a match is ignored.
func (s *Session) OnDecode(ctx context.Context, ev ports.DecodeEvent) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateScanning {
		return Outcome{Kind: OutcomeIgnored, Decoded: ev.Text}
	}

	if ev.IsNoise() {
		return Outcome{Kind: OutcomeNoise}
	}
	if ev.Err != nil {
		s.gate.feedback.Signal(ctx, ports.SignalWarning)
		s.gate.logger.WarnContext(ctx, "decode error", "itemId", s.itemID.String(), "error", ev.Err)
		return Outcome{Kind: OutcomeWarning, Err: errs.NewExternalServiceError("decoder", ev.Err)}
	}

	conf, err := s.gate.issuer.Confirm(s.itemID, s.expectedCode, ev.Text)
	if err != nil {
		s.gate.feedback.Signal(ctx, ports.SignalScanMismatch)
		s.gate.logger.InfoContext(ctx, "scan mismatch", "itemId", s.itemID.String(), "decoded", ev.Text)
		return Outcome{Kind: OutcomeMismatch, Decoded: ev.Text, Hint: s.hint(ev.Text)}
	}

	s.gate.feedback.Signal(ctx, ports.SignalScanSuccess)
	s.confirmation = conf
	s.state = StateAwaitingDisposition
	if relErr := s.releaseLocked(); relErr != nil {
		s.gate.logger.WarnContext(ctx, "sensor release failed", "itemId", s.itemID.String(), "error", relErr)
	}

	if s.gate.promptDisposition {
		return Outcome{Kind: OutcomeMatch, Decoded: ev.Text}
	}

	if err = s.finalizeLocked(ctx, item.DispositionNone, ""); err != nil && !errors.Is(err, errs.ErrPersistence) {
		return Outcome{Kind: OutcomeMatch, Decoded: ev.Text, Err: err}
	}
	return Outcome{Kind: OutcomeDelivered, Decoded: ev.Text, Err: err}
}

// Finalize delivers the matched item with an optional disposition and note.
func (s *Session) Finalize(ctx context.Context, disposition item.Disposition, note string) error {
	if err := disposition.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingDisposition {
		return errs.NewValueIsInvalidErrorWithCause("scan session",
			fmt.Errorf("cannot finalize a session that is %s", s.state))
	}
	return s.finalizeLocked(ctx, disposition, note)
}

// SkipDisposition delivers the matched item without a disposition.
func (s *Session) SkipDisposition(ctx context.Context) error {
	return s.Finalize(ctx, item.DispositionNone, "")
}

// Cancel ends the session without changing the item. It is safe to call at any time
// and more than once.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateScanning || s.state == StateAwaitingDisposition {
		s.state = StateCancelled
		s.gate.detach(s)
	}
	return s.releaseLocked()
}

// Run pumps the sensor feed into OnDecode until the scan phase ends, the feed
// closes or ctx is done. Leaving through ctx cancels the session. Each outcome is
// passed to report when it is not nil.
func (s *Session) Run(ctx context.Context, report func(Outcome)) error {
	events := s.feed.Events()
	for {
		select {
		case <-s.scanDone:
			return nil
		default:
		}

		select {
		case <-ctx.Done():
			_ = s.Cancel()
			return ctx.Err()
		case <-s.scanDone:
			return nil
		case ev, ok := <-events:
			if !ok {
				if s.State() == StateScanning {
					_ = s.Cancel()
					return errs.NewRetryableExternalServiceError("sensor", errors.New("decode stream closed"))
				}
				return nil
			}
			out := s.OnDecode(ctx, ev)
			if report != nil {
				report(out)
			}
		}
	}
}

// finalizeLocked performs the only transition to Delivered. A failure other than a
// snapshot write ends the session without delivering.
func (s *Session) finalizeLocked(ctx context.Context, disposition item.Disposition, note string) error {
	err := s.gate.store.Deliver(ctx, s.itemID, s.confirmation, disposition, note)
	if err != nil && !errors.Is(err, errs.ErrPersistence) {
		s.state = StateCancelled
		s.gate.detach(s)
		s.gate.logger.WarnContext(ctx, "delivery rejected", "itemId", s.itemID.String(), "error", err)
		return err
	}

	s.state = StateCompleted
	s.gate.detach(s)
	s.gate.logger.InfoContext(ctx, "item delivered", "itemId", s.itemID.String(), "disposition", string(disposition))
	return err
}

func (s *Session) releaseLocked() error {
	s.releaseOnce.Do(func() {
		close(s.scanDone)
		s.releaseErr = s.feed.Release()
	})
	return s.releaseErr
}

func (s *Session) hint(decoded string) *Hint {
	h := &Hint{EditDistance: levenshtein.ComputeDistance(decoded, s.expectedCode)}
	h.NearMiss = h.EditDistance <= nearMissMaxDistance
	if other := s.gate.store.FindActiveByCode(decoded); other != nil && !other.ID().IsEqual(s.itemID) {
		h.OtherItemID = other.ID().String()
		h.OtherItemName = other.Name()
	}
	return h
}
