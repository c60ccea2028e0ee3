package commands

import (
	"context"
	"fmt"

	"manifest/internal/core/application/scangate"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/errs"
)

// ActionKind names the per-row actions offered by the item list.
type ActionKind string

const (
	ActionMarkAbsent ActionKind = "mark_absent"
	ActionSetStatus  ActionKind = "set_status"
	ActionStartScan  ActionKind = "start_scan"
	ActionDelete     ActionKind = "delete"
	ActionGeocode    ActionKind = "geocode"
)

// Action is a tagged request targeting one item.
type Action struct {
	ItemID       kernel.UUID
	Kind         ActionKind
	RedeliveryAt string
	Note         string
	Status       item.Status
}

// ActionResult carries what the action produced. Session is set for start_scan,
// Resolved for geocode.
type ActionResult struct {
	Kind     ActionKind
	Session  *scangate.Session
	Resolved bool
}

// Dispatcher routes item actions to their handlers. Delivery is only reachable by
// starting a scan; there is no action that sets Delivered directly.
type Dispatcher struct {
	markAbsent MarkAbsentCommandHandler
	setStatus  SetPeerStatusCommandHandler
	remove     RemoveItemCommandHandler
	geocode    GeocodeItemsCommandHandler
	gate       ScanGate
}

// NewDispatcher wires the handlers behind the item actions.
func NewDispatcher(
	markAbsent MarkAbsentCommandHandler,
	setStatus SetPeerStatusCommandHandler,
	remove RemoveItemCommandHandler,
	geocode GeocodeItemsCommandHandler,
	gate ScanGate,
) *Dispatcher {
	return &Dispatcher{
		markAbsent: markAbsent,
		setStatus:  setStatus,
		remove:     remove,
		geocode:    geocode,
		gate:       gate,
	}
}

// Dispatch executes a.
func (d *Dispatcher) Dispatch(ctx context.Context, a Action) (ActionResult, error) {
	res := ActionResult{Kind: a.Kind}

	switch a.Kind {
	case ActionMarkAbsent:
		cmd, err := NewMarkAbsentCommand(a.ItemID, a.RedeliveryAt, a.Note)
		if err != nil {
			return res, err
		}
		return res, d.markAbsent.Handle(ctx, cmd)

	case ActionSetStatus:
		cmd, err := NewSetPeerStatusCommand(a.ItemID, a.Status, a.Note)
		if err != nil {
			return res, err
		}
		return res, d.setStatus.Handle(ctx, cmd)

	case ActionStartScan:
		session, err := d.gate.Open(ctx, a.ItemID)
		if err != nil {
			return res, err
		}
		res.Session = session
		return res, nil

	case ActionDelete:
		cmd, err := NewRemoveItemCommand(a.ItemID)
		if err != nil {
			return res, err
		}
		return res, d.remove.Handle(ctx, cmd)

	case ActionGeocode:
		resolved, err := d.geocode.HandleOne(ctx, a.ItemID)
		res.Resolved = resolved
		return res, err
	}

	return res, errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("%q is not a supported action", a.Kind))
}
