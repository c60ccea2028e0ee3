// Package manifest owns the courier's working set of delivery items.
//
// Store is the only writer of items. Every successful mutation rewrites the full
// snapshot through ports.SnapshotStore; reads return clones so callers can never
// change state behind the store's back.
package manifest

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/domain/services"
	"manifest/internal/core/ports"
	"manifest/internal/pkg/errs"
)

// ErrStoreIsNotLoaded is returned by mutations issued before Load.
var ErrStoreIsNotLoaded = errors.New("manifest store must be loaded before use")

// ErrDeliveryRequiresScan is returned when a delivery does not come from the scan gate.
var ErrDeliveryRequiresScan = errors.New("delivery requires a confirmation from the scan gate")

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces kernel.NewUUID.
func WithIDGenerator(newID func() kernel.UUID) Option {
	return func(s *Store) { s.newID = newID }
}

// WithScanIssuer sets the only issuer whose confirmations Deliver accepts.
// Without it the store delivers nothing.
func WithScanIssuer(issuer *item.ScanIssuer) Option {
	return func(s *Store) { s.issuer = issuer }
}

// Store holds the manifest in memory and persists it after every mutation.
// It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	items  []*item.Item
	loaded bool

	snapshots ports.SnapshotStore
	feedback  ports.Feedback
	dedup     services.DedupGuard
	ordering  services.OrderingEngine
	issuer    *item.ScanIssuer
	logger    *slog.Logger
	now       func() time.Time
	newID     func() kernel.UUID
}

// NewStore creates an empty, unloaded store.
func NewStore(snapshots ports.SnapshotStore, feedback ports.Feedback, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		snapshots: snapshots,
		feedback:  feedback,
		dedup:     services.NewDedupGuard(),
		ordering:  services.NewOrderingEngine(),
		logger:    logger.With("component", "manifest-store"),
		now:       time.Now,
		newID:     kernel.NewUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the stored snapshot.
func (s *Store) Load(ctx context.Context) error {
	items, err := s.snapshots.Load(ctx)
	if err != nil {
		return errs.NewPersistenceError("load snapshot", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = items
	s.loaded = true
	s.logger.InfoContext(ctx, "manifest loaded", "items", len(items))
	return nil
}

// Flush writes the current collection. It is called on teardown.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil
	}
	return s.persistLocked(ctx)
}

// Add registers a candidate and returns the new item id. A missing code is replaced
// by a placeholder. A code held by an active item is rejected with
// errs.DuplicateCodeError and a duplicate signal.
func (s *Store) Add(ctx context.Context, c item.Candidate) (kernel.UUID, error) {
	if err := c.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return kernel.UUID{}, ErrStoreIsNotLoaded
	}

	id := s.newID()
	c.Code = strings.TrimSpace(c.Code)
	if c.Code == "" {
		c.Code = item.PlaceholderCode(id)
	}

	if existing := s.dedup.FindActive(s.items, c.Code, nil); existing != nil {
		s.feedback.Signal(ctx, ports.SignalDuplicateRejected)
		return kernel.UUID{}, errs.NewDuplicateCodeError(c.Code, existing.ID().String())
	}

	it, err := item.NewItem(id, c, s.nextOrderLocked(), s.now())
	if err != nil {
		return kernel.UUID{}, err
	}

	s.items = append(s.items, it)
	s.feedback.Signal(ctx, ports.SignalRegistered)
	s.logger.InfoContext(ctx, "item registered", "itemId", id.String(), "code", it.Code())

	return id, s.persistLocked(ctx)
}

// Update merges patch into the item. Status is never touched; a new code must not
// collide with another active item.
func (s *Store) Update(ctx context.Context, id kernel.UUID, patch item.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(id)
	if err != nil {
		return err
	}

	if patch.Code != nil && s.items[idx].IsActive() {
		code := strings.TrimSpace(*patch.Code)
		if existing := s.dedup.FindActive(s.items, code, &id); existing != nil {
			s.feedback.Signal(ctx, ports.SignalDuplicateRejected)
			return errs.NewDuplicateCodeError(code, existing.ID().String())
		}
	}

	if err = s.items[idx].Apply(patch, s.now()); err != nil {
		return err
	}

	return s.persistLocked(ctx)
}

// Remove deletes the item permanently.
func (s *Store) Remove(ctx context.Context, id kernel.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(id)
	if err != nil {
		return err
	}

	s.items = slices.Delete(s.items, idx, idx+1)
	s.logger.InfoContext(ctx, "item removed", "itemId", id.String())
	return s.persistLocked(ctx)
}

// PurgeDelivered removes every delivered item and returns how many were removed.
func (s *Store) PurgeDelivered(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return 0, ErrStoreIsNotLoaded
	}

	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(it *item.Item) bool {
		return it.Status() == item.Delivered
	})
	removed := before - len(s.items)
	if removed == 0 {
		return 0, nil
	}

	s.logger.InfoContext(ctx, "delivered items purged", "count", removed)
	return removed, s.persistLocked(ctx)
}

// List returns clones of the items passing filter in collection order.
// Each call reflects the current state.
func (s *Store) List(filter item.StatusFilter) []*item.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*item.Item, 0, len(s.items))
	for _, it := range s.items {
		if filter.Matches(it) {
			out = append(out, it.Clone())
		}
	}
	return out
}

// Get returns a clone of the item.
func (s *Store) Get(id kernel.UUID) (*item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, err := s.indexLocked(id)
	if err != nil {
		return nil, err
	}
	return s.items[idx].Clone(), nil
}

// IsDuplicateActive reports whether an active item holds code.
func (s *Store) IsDuplicateActive(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.dedup.IsDuplicateActive(s.items, code)
}

// FindActiveByCode returns a clone of the active item holding code, or nil.
func (s *Store) FindActiveByCode(code string) *item.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if it := s.dedup.FindActive(s.items, code, nil); it != nil {
		return it.Clone()
	}
	return nil
}

// Mutate runs fn against a copy of the item and commits the copy only when fn
// succeeds, so a failed transition leaves no trace. Status changes and coordinate
// writes go through here; delivery does not, see Deliver.
func (s *Store) Mutate(ctx context.Context, id kernel.UUID, fn func(it *item.Item, now time.Time) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateLocked(ctx, id, func(it *item.Item, now time.Time) error {
		wasDelivered := it.Status() == item.Delivered
		if err := fn(it, now); err != nil {
			return err
		}
		if !wasDelivered && it.Status() == item.Delivered {
			return errs.NewValueIsInvalidErrorWithCause("status", ErrDeliveryRequiresScan)
		}
		return nil
	})
}

// Deliver completes the item with a confirmation minted by the store's issuer.
func (s *Store) Deliver(ctx context.Context, id kernel.UUID, conf item.ScanConfirmation, disposition item.Disposition, note string) error {
	if !conf.IssuedBy(s.issuer) {
		return errs.NewValueIsInvalidErrorWithCause("scan confirmation", ErrDeliveryRequiresScan)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateLocked(ctx, id, func(it *item.Item, now time.Time) error {
		return it.Deliver(conf, disposition, note, now)
	})
}

func (s *Store) mutateLocked(ctx context.Context, id kernel.UUID, fn func(it *item.Item, now time.Time) error) error {
	idx, err := s.indexLocked(id)
	if err != nil {
		return err
	}

	draft := s.items[idx].Clone()
	if err = fn(draft, s.now()); err != nil {
		return err
	}

	s.items[idx] = draft
	return s.persistLocked(ctx)
}

// ApplyOrder sets each listed item's order to its 1-based position in ids.
// Every id is checked before anything changes, and the result is persisted once.
func (s *Store) ApplyOrder(ctx context.Context, ids []kernel.UUID) error {
	ranks, err := s.ordering.Ranks(ids)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	positions := make([]int, 0, len(ids))
	for _, id := range ids {
		idx, idxErr := s.indexLocked(id)
		if idxErr != nil {
			return idxErr
		}
		positions = append(positions, idx)
	}

	now := s.now()
	for _, idx := range positions {
		it := s.items[idx]
		it.SetOrder(ranks[it.ID()], now)
	}

	return s.persistLocked(ctx)
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// Import inserts fully formed items (for example from an export file). Items whose
// id already exists are skipped; an item whose active code collides with an active
// item is rejected. It returns the number of inserted items and one error per
// rejected item.
func (s *Store) Import(ctx context.Context, items []*item.Item) (int, []error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return 0, nil, ErrStoreIsNotLoaded
	}

	var rejected []error
	inserted := 0
	for _, it := range items {
		if err := it.Validate(); err != nil {
			rejected = append(rejected, err)
			continue
		}
		if _, err := s.indexLocked(it.ID()); err == nil {
			continue
		}
		if it.IsActive() {
			if existing := s.dedup.FindActive(s.items, it.Code(), nil); existing != nil {
				rejected = append(rejected, errs.NewDuplicateCodeError(it.Code(), existing.ID().String()))
				continue
			}
		}
		s.items = append(s.items, it.Clone())
		inserted++
	}

	if inserted == 0 {
		return 0, rejected, nil
	}
	s.logger.InfoContext(ctx, "items imported", "inserted", inserted, "rejected", len(rejected))
	return inserted, rejected, s.persistLocked(ctx)
}

func (s *Store) indexLocked(id kernel.UUID) (int, error) {
	if !s.loaded {
		return -1, ErrStoreIsNotLoaded
	}
	if err := id.Validate(); err != nil {
		return -1, err
	}
	idx := slices.IndexFunc(s.items, func(it *item.Item) bool { return it.ID().IsEqual(id) })
	if idx < 0 {
		return -1, errs.NewObjectNotFoundError("item", id.String())
	}
	return idx, nil
}

func (s *Store) nextOrderLocked() int {
	next := 1
	for _, it := range s.items {
		if it.Order() >= next {
			next = it.Order() + 1
		}
	}
	return next
}

// persistLocked writes the full image. The in-memory state is kept on failure.
func (s *Store) persistLocked(ctx context.Context) error {
	snapshot := make([]*item.Item, 0, len(s.items))
	for _, it := range s.items {
		snapshot = append(snapshot, it.Clone())
	}

	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "snapshot write failed", "error", err)
		s.feedback.Signal(ctx, ports.SignalWarning)
		return errs.NewPersistenceError("save snapshot", err)
	}
	return nil
}
