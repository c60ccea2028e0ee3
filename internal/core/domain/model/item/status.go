package item

import (
	"fmt"
	"strings"

	"manifest/internal/pkg/errs"
)

// Status represents the delivery state of an item.
//
// State transitions:
//
//	Pending ──┬──> Absent ──┬──> Delivered   (scan-confirmed only)
//	          │     ↺       │
//	          └─────────────┘
//
//	extended deployments:  Pending | Absent | peer ──> PickedUp | Held | Returned | HandedOver
//
// Delivered is terminal. An item is active while its status is anything but Delivered.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status of every registered item.
	Pending

	// Absent records a failed attempt (recipient not home). Re-entering it is allowed
	// and overwrites the redelivery hint.
	Absent

	// Delivered is the terminal status, reachable only through a matched re-scan.
	Delivered

	// PickedUp, Held, Returned and HandedOver are peer statuses set by direct operator
	// action in deployments with looser control requirements.
	PickedUp
	Held
	Returned
	HandedOver
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "unknown",
		Pending:    "pending",
		Absent:     "absent",
		Delivered:  "delivered",
		PickedUp:   "picked_up",
		Held:       "held",
		Returned:   "returned",
		HandedOver: "handed_over",
	}
}

// Statuses lists every valid status in declaration order.
func Statuses() []Status {
	return []Status{Pending, Absent, Delivered, PickedUp, Held, Returned, HandedOver}
}

// ParseStatus maps the persisted name back to a Status.
func ParseStatus(s string) (Status, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, st := range Statuses() {
		if st.String() == want {
			return st, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that s is one of the declared statuses.
func (s Status) Validate() error {
	if s < Pending || s > HandedOver {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted name, "unknown" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsActive reports whether the item still needs work.
func (s Status) IsActive() bool {
	return s.Validate() == nil && s != Delivered
}

// IsPeer reports whether s is one of the extended operator-set statuses.
func (s Status) IsPeer() bool {
	return s == PickedUp || s == Held || s == Returned || s == HandedOver
}

// ValidateAbsent checks that an absence may be recorded from s.
func (s Status) ValidateAbsent() error {
	if s != Pending && s != Absent {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to mark absent", s),
		)
	}
	return nil
}

// Absent transitions Pending|Absent to Absent.
func (s Status) Absent() (Status, error) {
	if err := s.ValidateAbsent(); err != nil {
		return 0, err
	}
	return Absent, nil
}

// ValidateDeliverable checks that a delivery may start from s.
func (s Status) ValidateDeliverable() error {
	if s != Pending && s != Absent {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to deliver", s),
		)
	}
	return nil
}

// deliver transitions Pending|Absent to Delivered. The caller must hold a matched
// scan confirmation; Item.Deliver is the only caller.
func (s Status) deliver() (Status, error) {
	if err := s.ValidateDeliverable(); err != nil {
		return 0, err
	}
	return Delivered, nil
}

// ToPeer transitions an active status to one of the peer statuses.
// Delivered is never a valid target here.
func (s Status) ToPeer(target Status) (Status, error) {
	if target == Delivered {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is reachable only through scan confirmation", target),
		)
	}
	if !target.IsPeer() {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a peer status", target),
		)
	}
	if !s.IsActive() {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to leave", s),
		)
	}
	return target, nil
}
