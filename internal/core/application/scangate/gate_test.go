package scangate_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"manifest/internal/core/application/manifest"
	"manifest/internal/core/application/scangate"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/ports"
	"manifest/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSnapshotStore struct{ mock.Mock }

func (m *MockSnapshotStore) Load(ctx context.Context) ([]*item.Item, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]*item.Item)
	return items, args.Error(1)
}

func (m *MockSnapshotStore) Save(ctx context.Context, items []*item.Item) error {
	return m.Called(ctx, items).Error(0)
}

type MockFeedback struct{ mock.Mock }

func (m *MockFeedback) Signal(ctx context.Context, s ports.Signal) {
	m.Called(ctx, s)
}

type MockSensor struct{ mock.Mock }

func (m *MockSensor) Acquire(ctx context.Context) (ports.SensorFeed, error) {
	args := m.Called(ctx)
	feed, _ := args.Get(0).(ports.SensorFeed)
	return feed, args.Error(1)
}

type fakeFeed struct {
	mu       sync.Mutex
	events   chan ports.DecodeEvent
	releases int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{events: make(chan ports.DecodeEvent, 8)}
}

func (f *fakeFeed) Events() <-chan ports.DecodeEvent { return f.events }

func (f *fakeFeed) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases++
	return nil
}

func (f *fakeFeed) Releases() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releases
}

type fixture struct {
	store    *manifest.Store
	sensor   *MockSensor
	feedback *MockFeedback
	gate     *scangate.Gate
}

func newFixture(t *testing.T, opts ...scangate.Option) fixture {
	t.Helper()

	snapshots := new(MockSnapshotStore)
	snapshots.On("Load", mock.Anything).Return([]*item.Item{}, nil)
	snapshots.On("Save", mock.Anything, mock.Anything).Return(nil)
	feedback := new(MockFeedback)
	feedback.On("Signal", mock.Anything, mock.Anything)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer := item.NewScanIssuer()
	store := manifest.NewStore(snapshots, feedback, logger, manifest.WithScanIssuer(issuer))
	require.NoError(t, store.Load(t.Context()))

	sensor := new(MockSensor)
	return fixture{
		store:    store,
		sensor:   sensor,
		feedback: feedback,
		gate:     scangate.NewGate(store, issuer, sensor, feedback, logger, opts...),
	}
}

func (f fixture) register(t *testing.T, code, name, address string) kernel.UUID {
	t.Helper()

	id, err := f.store.Add(t.Context(), item.Candidate{Source: item.SourceScan, Code: code, Name: name, Address: address})
	require.NoError(t, err)
	return id
}

func (f fixture) expectFeed() *fakeFeed {
	feed := newFakeFeed()
	f.sensor.On("Acquire", mock.Anything).Return(feed, nil).Once()
	return feed
}

func decoded(text string) ports.DecodeEvent {
	return ports.DecodeEvent{Text: text}
}

func TestGate_Open(t *testing.T) {
	t.Run("should reject missing recipient fields before touching the sensor", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "", "")

		s, err := f.gate.Open(t.Context(), id)

		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
		assert.Nil(t, s)
		f.sensor.AssertNotCalled(t, "Acquire", mock.Anything)
		it, _ := f.store.Get(id)
		assert.Equal(t, item.Pending, it.Status())
		assert.Empty(t, it.Attempts())
	})

	t.Run("should report a retryable error when the sensor is unavailable", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "Sato", "Tokyo")
		f.sensor.On("Acquire", mock.Anything).Return(nil, errors.New("camera busy")).Once()

		_, err := f.gate.Open(t.Context(), id)

		var extErr *errs.ExternalServiceError
		require.ErrorAs(t, err, &extErr)
		assert.True(t, extErr.Retryable)
		_, open := f.gate.Current()
		assert.False(t, open)
	})

	t.Run("should refuse delivered items", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "Sato", "Tokyo")
		feed := f.expectFeed()
		s, err := f.gate.Open(t.Context(), id)
		require.NoError(t, err)
		s.OnDecode(t.Context(), decoded("A1"))
		require.NoError(t, s.SkipDisposition(t.Context()))
		require.Equal(t, 1, feed.Releases())

		_, err = f.gate.Open(t.Context(), id)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should tear down the previous session first", func(t *testing.T) {
		f := newFixture(t)
		first := f.register(t, "A1", "Sato", "Tokyo")
		second := f.register(t, "B2", "Suzuki", "Osaka")
		firstFeed := f.expectFeed()
		secondFeed := f.expectFeed()

		s1, err := f.gate.Open(t.Context(), first)
		require.NoError(t, err)
		s2, err := f.gate.Open(t.Context(), second)
		require.NoError(t, err)

		assert.Equal(t, scangate.StateCancelled, s1.State())
		assert.Equal(t, 1, firstFeed.Releases())
		assert.Equal(t, 0, secondFeed.Releases())
		current, ok := f.gate.Current()
		require.True(t, ok)
		assert.Same(t, s2, current)
	})
}

func TestSession_OnDecode(t *testing.T) {
	t.Run("should ignore noise", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "Sato", "Tokyo")
		f.expectFeed()
		s, _ := f.gate.Open(t.Context(), id)

		assert.Equal(t, scangate.OutcomeNoise, s.OnDecode(t.Context(), ports.DecodeEvent{Err: ports.ErrNoSymbol}).Kind)
		assert.Equal(t, scangate.OutcomeNoise, s.OnDecode(t.Context(), decoded("")).Kind)
		assert.Equal(t, scangate.StateScanning, s.State())
	})

	t.Run("should keep scanning after a soft decode error", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "Sato", "Tokyo")
		f.expectFeed()
		s, _ := f.gate.Open(t.Context(), id)

		out := s.OnDecode(t.Context(), ports.DecodeEvent{Err: errors.New("blurred frame")})

		assert.Equal(t, scangate.OutcomeWarning, out.Kind)
		require.ErrorIs(t, out.Err, errs.ErrExternalService)
		assert.Equal(t, scangate.StateScanning, s.State())
	})

	t.Run("should report a mismatch with hints and stay open", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "Sato", "Tokyo")
		other := f.register(t, "A7", "Suzuki", "Osaka")
		feed := f.expectFeed()
		s, _ := f.gate.Open(t.Context(), id)

		out := s.OnDecode(t.Context(), decoded("A7"))

		assert.Equal(t, scangate.OutcomeMismatch, out.Kind)
		assert.Equal(t, "A7", out.Decoded)
		require.NotNil(t, out.Hint)
		assert.Equal(t, 1, out.Hint.EditDistance)
		assert.True(t, out.Hint.NearMiss)
		assert.Equal(t, other.String(), out.Hint.OtherItemID)
		assert.Equal(t, scangate.StateScanning, s.State())
		assert.Zero(t, feed.Releases())
		f.feedback.AssertCalled(t, "Signal", mock.Anything, ports.SignalScanMismatch)
	})

	t.Run("should not normalize decoded text", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "Sato", "Tokyo")
		f.expectFeed()
		s, _ := f.gate.Open(t.Context(), id)

		assert.Equal(t, scangate.OutcomeMismatch, s.OnDecode(t.Context(), decoded("a1")).Kind)
		assert.Equal(t, scangate.OutcomeMismatch, s.OnDecode(t.Context(), decoded("A1 ")).Kind)
	})
}

func TestSession_MatchAndFinalize(t *testing.T) {
	t.Run("should deliver exactly once and ignore events after the match", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "", "")
		name, address := "Sato", "Tokyo"
		require.NoError(t, f.store.Update(t.Context(), id, item.Patch{Name: &name, Address: &address}))
		before, _ := f.store.Get(id)
		feed := f.expectFeed()
		s, err := f.gate.Open(t.Context(), id)
		require.NoError(t, err)

		first := s.OnDecode(t.Context(), decoded("A1"))
		second := s.OnDecode(t.Context(), decoded("A1"))

		assert.Equal(t, scangate.OutcomeMatch, first.Kind)
		assert.Equal(t, scangate.OutcomeIgnored, second.Kind)
		assert.Equal(t, scangate.StateAwaitingDisposition, s.State())
		assert.Equal(t, 1, feed.Releases())

		require.NoError(t, s.Finalize(t.Context(), item.DispositionDepositedInBox, "box 3"))

		after, _ := f.store.Get(id)
		assert.Equal(t, item.Delivered, after.Status())
		assert.Len(t, after.Attempts(), len(before.Attempts())+1)
		assert.Equal(t, item.DispositionDepositedInBox, after.Disposition())
		assert.Equal(t, scangate.StateCompleted, s.State())
		_, open := f.gate.Current()
		assert.False(t, open)
		f.feedback.AssertCalled(t, "Signal", mock.Anything, ports.SignalScanSuccess)
	})

	t.Run("should deliver on match when the prompt is disabled", func(t *testing.T) {
		f := newFixture(t, scangate.WithDispositionPrompt(false))
		id := f.register(t, "A1", "Sato", "Tokyo")
		f.expectFeed()
		s, _ := f.gate.Open(t.Context(), id)

		out := s.OnDecode(t.Context(), decoded("A1"))

		assert.Equal(t, scangate.OutcomeDelivered, out.Kind)
		require.NoError(t, out.Err)
		it, _ := f.store.Get(id)
		assert.Equal(t, item.Delivered, it.Status())
		assert.Equal(t, item.DispositionNone, it.Disposition())
	})

	t.Run("should reject finalize when the code was edited mid-session", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "Sato", "Tokyo")
		f.expectFeed()
		s, _ := f.gate.Open(t.Context(), id)
		s.OnDecode(t.Context(), decoded("A1"))
		code := "Z9"
		require.NoError(t, f.store.Update(t.Context(), id, item.Patch{Code: &code}))

		err := s.SkipDisposition(t.Context())

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		it, _ := f.store.Get(id)
		assert.Equal(t, item.Pending, it.Status())
		assert.Equal(t, scangate.StateCancelled, s.State())
	})

	t.Run("should not finalize before a match", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "Sato", "Tokyo")
		f.expectFeed()
		s, _ := f.gate.Open(t.Context(), id)

		err := s.Finalize(t.Context(), item.DispositionNone, "")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, scangate.StateScanning, s.State())
	})
}

func TestSession_Cancel(t *testing.T) {
	t.Run("should release once and change nothing", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "Sato", "Tokyo")
		feed := f.expectFeed()
		s, _ := f.gate.Open(t.Context(), id)
		s.OnDecode(t.Context(), decoded("B2"))

		require.NoError(t, s.Cancel())
		require.NoError(t, s.Cancel())
		f.gate.Close()

		assert.Equal(t, 1, feed.Releases())
		assert.Equal(t, scangate.StateCancelled, s.State())
		assert.Equal(t, scangate.OutcomeIgnored, s.OnDecode(t.Context(), decoded("A1")).Kind)
		it, _ := f.store.Get(id)
		assert.Equal(t, item.Pending, it.Status())
	})

	t.Run("should drop a match awaiting disposition", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "Sato", "Tokyo")
		feed := f.expectFeed()
		s, _ := f.gate.Open(t.Context(), id)
		s.OnDecode(t.Context(), decoded("A1"))

		require.NoError(t, s.Cancel())

		require.Error(t, s.SkipDisposition(t.Context()))
		it, _ := f.store.Get(id)
		assert.Equal(t, item.Pending, it.Status())
		assert.Equal(t, 1, feed.Releases())
	})
}

func TestSession_Run(t *testing.T) {
	t.Run("should process events in order until the match", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "Sato", "Tokyo")
		feed := f.expectFeed()
		s, _ := f.gate.Open(t.Context(), id)
		feed.events <- ports.DecodeEvent{Err: ports.ErrNoSymbol}
		feed.events <- decoded("B2")
		feed.events <- decoded("A1")
		feed.events <- decoded("A1")

		var kinds []scangate.OutcomeKind
		err := s.Run(t.Context(), func(o scangate.Outcome) { kinds = append(kinds, o.Kind) })

		require.NoError(t, err)
		assert.Equal(t, []scangate.OutcomeKind{scangate.OutcomeNoise, scangate.OutcomeMismatch, scangate.OutcomeMatch}, kinds)
		assert.Equal(t, 1, feed.Releases())
	})

	t.Run("should cancel and release when the context ends", func(t *testing.T) {
		f := newFixture(t)
		id := f.register(t, "A1", "Sato", "Tokyo")
		feed := f.expectFeed()
		s, _ := f.gate.Open(t.Context(), id)
		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()

		err := s.Run(ctx, nil)

		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, scangate.StateCancelled, s.State())
		assert.Equal(t, 1, feed.Releases())
	})
}
