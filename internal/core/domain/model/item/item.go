package item

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/errs"
)

var (
	// ErrItemIsNotConstructed is returned when an Item was not created through
	// NewItem or RestoreItem.
	ErrItemIsNotConstructed = errors.New("Item must be created via NewItem or RestoreItem constructor")
)

// PlaceholderPrefix starts every system-generated tracking code.
const PlaceholderPrefix = "TMP-"

// Item is a parcel on the courier's manifest and the aggregate root of this package.
//
// Item follows these invariants:
//   - id is valid and never changes
//   - code is never empty (a placeholder is assigned when the label is unknown)
//   - coordinates are complete or absent, never partial
//   - status only changes through MarkAbsent, Deliver or SetPeerStatus, and every such
//     change appends exactly one Attempt
//   - Delivered requires a ScanConfirmation for the item's current code and a
//     non-empty name and address
type Item struct {
	id             kernel.UUID
	code           string
	kind           Kind
	name           string
	address        string
	phone          string
	status         Status
	deliveryMethod string
	memo           string
	redeliveryAt   string
	disposition    Disposition
	coordinates    *kernel.Coordinates
	order          int
	attempts       []Attempt
	createdAt      time.Time
	updatedAt      time.Time

	isConstructed bool
}

// NewItem registers a candidate as a Pending item. The candidate must already carry
// a code (see PlaceholderCode).
func NewItem(id kernel.UUID, c Candidate, order int, now time.Time) (*Item, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	kind := c.Kind
	if kind == KindUnknown {
		kind = KindParcel
	}

	it := &Item{
		kind:           kind,
		name:           strings.TrimSpace(c.Name),
		address:        strings.TrimSpace(c.Address),
		phone:          strings.TrimSpace(c.Phone),
		status:         Pending,
		deliveryMethod: c.DeliveryMethod,
		memo:           c.Memo,
		coordinates:    c.Coordinates,
		order:          order,
		attempts:       []Attempt{},
		createdAt:      now,
		updatedAt:      now,
		isConstructed:  true,
	}

	if err := errors.Join(it.setID(id), it.setCode(c.Code)); err != nil {
		return nil, err
	}

	return it, nil
}

// PlaceholderCode derives a system-generated code from id.
func PlaceholderCode(id kernel.UUID) string {
	return PlaceholderPrefix + id.ShortHex()
}

// RestoreParams holds every persisted field of an Item.
type RestoreParams struct {
	ID             kernel.UUID
	Code           string
	Kind           Kind
	Name           string
	Address        string
	Phone          string
	Status         Status
	DeliveryMethod string
	Memo           string
	RedeliveryAt   string
	Disposition    Disposition
	Coordinates    *kernel.Coordinates
	Order          int
	Attempts       []Attempt
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RestoreItem rebuilds an Item from persistence without replaying transitions.
func RestoreItem(p RestoreParams) (*Item, error) {
	it := &Item{
		name:           p.Name,
		address:        p.Address,
		phone:          p.Phone,
		deliveryMethod: p.DeliveryMethod,
		memo:           p.Memo,
		redeliveryAt:   p.RedeliveryAt,
		order:          p.Order,
		attempts:       append([]Attempt{}, p.Attempts...),
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
		isConstructed:  true,
	}

	var coordErr error
	if p.Coordinates != nil {
		coordErr = p.Coordinates.Validate()
		it.coordinates = p.Coordinates
	}

	if err := errors.Join(
		it.setID(p.ID),
		it.setCode(p.Code),
		p.Kind.Validate(),
		p.Status.Validate(),
		p.Disposition.Validate(),
		coordErr,
	); err != nil {
		return nil, err
	}
	it.kind = p.Kind
	it.status = p.Status
	it.disposition = p.Disposition

	return it, nil
}

// Validate ensures the Item was properly constructed.
func (it *Item) Validate() error {
	if it == nil || !it.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}

// Clone returns a deep copy that shares nothing mutable with it.
func (it *Item) Clone() *Item {
	cp := *it
	cp.attempts = append([]Attempt{}, it.attempts...)
	if it.coordinates != nil {
		c := *it.coordinates
		cp.coordinates = &c
	}
	return &cp
}

// IsEqual compares items by identifier.
func (it *Item) IsEqual(other *Item) bool {
	return other != nil && it.id.IsEqual(other.id)
}

func (it *Item) ID() kernel.UUID                  { return it.id }
func (it *Item) Code() string                     { return it.code }
func (it *Item) Kind() Kind                       { return it.kind }
func (it *Item) Name() string                     { return it.name }
func (it *Item) Address() string                  { return it.address }
func (it *Item) Phone() string                    { return it.phone }
func (it *Item) Status() Status                   { return it.status }
func (it *Item) DeliveryMethod() string           { return it.deliveryMethod }
func (it *Item) Memo() string                     { return it.memo }
func (it *Item) RedeliveryAt() string             { return it.redeliveryAt }
func (it *Item) Disposition() Disposition         { return it.disposition }
func (it *Item) Coordinates() *kernel.Coordinates { return it.coordinates }
func (it *Item) Order() int                       { return it.order }
func (it *Item) CreatedAt() time.Time             { return it.createdAt }
func (it *Item) UpdatedAt() time.Time             { return it.updatedAt }

// Attempts returns a copy of the history, oldest first.
func (it *Item) Attempts() []Attempt {
	return append([]Attempt{}, it.attempts...)
}

// IsActive reports whether the item has not been delivered yet.
func (it *Item) IsActive() bool {
	return it.status.IsActive()
}

// HasPlaceholderCode reports whether the code was generated by the system.
func (it *Item) HasPlaceholderCode() bool {
	return strings.HasPrefix(it.code, PlaceholderPrefix)
}

// DeliveredAt returns the time of the delivered attempt, if any.
func (it *Item) DeliveredAt() (time.Time, bool) {
	for i := len(it.attempts) - 1; i >= 0; i-- {
		if it.attempts[i].Event == EventDelivered {
			return it.attempts[i].At, true
		}
	}
	return time.Time{}, false
}

// ValidateRecipient checks the fields required before absence or delivery.
func (it *Item) ValidateRecipient() error {
	var missing []error
	if strings.TrimSpace(it.name) == "" {
		missing = append(missing, errs.NewValueIsRequiredError("name"))
	}
	if strings.TrimSpace(it.address) == "" {
		missing = append(missing, errs.NewValueIsRequiredError("address"))
	}
	return errors.Join(missing...)
}

// Apply merges a partial patch. The whole patch is validated before any field
// changes; status is never touched.
func (it *Item) Apply(p Patch, now time.Time) error {
	if p.Code != nil && strings.TrimSpace(*p.Code) == "" {
		return errs.NewValueIsRequiredError("code")
	}
	if p.Kind != nil {
		if err := p.Kind.Validate(); err != nil {
			return err
		}
	}
	if p.Coordinates != nil {
		if err := p.Coordinates.Validate(); err != nil {
			return err
		}
		if p.ClearCoordinates {
			return errs.NewValueIsInvalidErrorWithCause("coordinates",
				errors.New("cannot set and clear coordinates in one patch"))
		}
	}

	if p.Code != nil {
		it.code = strings.TrimSpace(*p.Code)
	}
	if p.Kind != nil {
		it.kind = *p.Kind
	}
	if p.Name != nil {
		it.name = strings.TrimSpace(*p.Name)
	}
	if p.Address != nil {
		it.address = strings.TrimSpace(*p.Address)
	}
	if p.Phone != nil {
		it.phone = strings.TrimSpace(*p.Phone)
	}
	if p.DeliveryMethod != nil {
		it.deliveryMethod = *p.DeliveryMethod
	}
	if p.Memo != nil {
		it.memo = *p.Memo
	}
	if p.RedeliveryAt != nil {
		it.redeliveryAt = *p.RedeliveryAt
	}
	if p.Coordinates != nil {
		c := *p.Coordinates
		it.coordinates = &c
	}
	if p.ClearCoordinates {
		it.coordinates = nil
	}
	if p.Order != nil {
		it.order = *p.Order
	}

	it.updatedAt = now
	return nil
}

// SetOrder changes the custom sort key.
func (it *Item) SetOrder(order int, now time.Time) {
	it.order = order
	it.updatedAt = now
}

// ResolveCoordinates stores an automatically resolved point. It returns false and
// leaves the item untouched when coordinates are already present.
func (it *Item) ResolveCoordinates(c kernel.Coordinates, now time.Time) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, err
	}
	if it.coordinates != nil {
		return false, nil
	}
	it.coordinates = &c
	it.updatedAt = now
	return true, nil
}

// MarkAbsent records a failed attempt. Name and address are required. Re-entering
// Absent overwrites the redelivery hint.
func (it *Item) MarkAbsent(redeliveryAt, note string, now time.Time) error {
	if err := it.ValidateRecipient(); err != nil {
		return err
	}

	newStatus, err := it.status.Absent()
	if err != nil {
		return err
	}

	it.redeliveryAt = redeliveryAt
	it.transition(newStatus, note, now)
	return nil
}

// Deliver completes the item. It requires a confirmation issued for this item and
// for the code the item holds right now.
func (it *Item) Deliver(conf ScanConfirmation, disposition Disposition, note string, now time.Time) error {
	if err := conf.Validate(); err != nil {
		return err
	}
	if !conf.ItemID().IsEqual(it.id) {
		return errs.NewValueIsInvalidErrorWithCause("scan confirmation",
			fmt.Errorf("issued for item %s, not %s", conf.ItemID(), it.id))
	}
	if conf.Code() != it.code {
		return errs.NewValueIsInvalidErrorWithCause("scan confirmation",
			fmt.Errorf("code changed from %q to %q while scanning", conf.Code(), it.code))
	}
	if err := disposition.Validate(); err != nil {
		return err
	}
	if err := it.ValidateRecipient(); err != nil {
		return err
	}

	newStatus, err := it.status.deliver()
	if err != nil {
		return err
	}

	it.disposition = disposition
	it.transition(newStatus, note, now)
	return nil
}

// SetPeerStatus moves an active item to one of the extended statuses.
func (it *Item) SetPeerStatus(target Status, note string, now time.Time) error {
	newStatus, err := it.status.ToPeer(target)
	if err != nil {
		return err
	}

	it.transition(newStatus, note, now)
	return nil
}

func (it *Item) transition(to Status, note string, now time.Time) {
	it.status = to
	it.attempts = append(it.attempts, Attempt{At: now, Event: eventFor(to), Note: note})
	it.updatedAt = now
}

func (it *Item) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	it.id = id
	return nil
}

func (it *Item) setCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errs.NewValueIsRequiredError("code")
	}
	it.code = code
	return nil
}
