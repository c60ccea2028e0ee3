// Package geoannotator attaches coordinates to items on a best-effort basis.
//
// Geocoding never blocks manifest work: failures are logged and reported as
// "not resolved", and coordinates set by hand are never replaced.
package geoannotator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/ports"
	"manifest/internal/pkg/errs"
)

var errAlreadyResolved = errors.New("item already has coordinates")

// ItemStore is the part of the manifest store the annotator needs.
type ItemStore interface {
	List(filter item.StatusFilter) []*item.Item
	Mutate(ctx context.Context, id kernel.UUID, fn func(it *item.Item, now time.Time) error) error
}

// BatchReport summarizes one BatchResolve run.
type BatchReport struct {
	Candidates    int
	Resolved      int
	NotFound      int
	Skipped       int
	PersistFailed int
}

// Annotator resolves addresses through a ports.Geocoder.
type Annotator struct {
	store    ItemStore
	geocoder ports.Geocoder
	logger   *slog.Logger
}

// NewAnnotator creates an Annotator.
func NewAnnotator(store ItemStore, geocoder ports.Geocoder, logger *slog.Logger) *Annotator {
	return &Annotator{
		store:    store,
		geocoder: geocoder,
		logger:   logger.With("component", "geo-annotator"),
	}
}

// Resolve geocodes address. It never fails: any problem is logged and reported as
// false.
func (a *Annotator) Resolve(ctx context.Context, address string) (kernel.Coordinates, bool) {
	address = strings.TrimSpace(address)
	if address == "" {
		return kernel.Coordinates{}, false
	}

	res, err := a.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			a.logger.InfoContext(ctx, "address not found", "address", address)
		} else {
			a.logger.WarnContext(ctx, "geocoding failed", "address", address, "error", err)
		}
		return kernel.Coordinates{}, false
	}

	c, err := kernel.NewCoordinates(res.Lat, res.Lng)
	if err != nil {
		a.logger.WarnContext(ctx, "geocoder returned an invalid point", "address", address, "error", err)
		return kernel.Coordinates{}, false
	}
	return c, true
}

// BatchResolve geocodes every item that has an address but no coordinates, one at
// a time with delay between calls. Each hit is persisted before the next call.
// Only ctx cancellation stops the batch early; the report is returned either way.
func (a *Annotator) BatchResolve(ctx context.Context, delay time.Duration) (BatchReport, error) {
	var report BatchReport

	var pending []*item.Item
	for _, it := range a.store.List(item.AllStatuses()) {
		if it.Coordinates() == nil && strings.TrimSpace(it.Address()) != "" {
			pending = append(pending, it)
		}
	}
	report.Candidates = len(pending)

	for i, it := range pending {
		if i > 0 {
			if err := wait(ctx, delay); err != nil {
				return report, err
			}
		} else if err := ctx.Err(); err != nil {
			return report, err
		}

		c, ok := a.Resolve(ctx, it.Address())
		if !ok {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.NotFound++
			continue
		}

		err := a.store.Mutate(ctx, it.ID(), func(draft *item.Item, now time.Time) error {
			changed, err := draft.ResolveCoordinates(c, now)
			if err != nil {
				return err
			}
			if !changed {
				return errAlreadyResolved
			}
			return nil
		})
		switch {
		case err == nil:
			report.Resolved++
		case errors.Is(err, errs.ErrPersistence):
			report.Resolved++
			report.PersistFailed++
		default:
			// removed or fixed by hand since the batch started
			report.Skipped++
		}
	}

	a.logger.InfoContext(ctx, "batch geocoding finished",
		"candidates", report.Candidates,
		"resolved", report.Resolved,
		"notFound", report.NotFound,
		"skipped", report.Skipped,
	)
	return report, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
