package item

import (
	"strings"

	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/errs"
)

// Source tells how a candidate reached the manifest.
type Source int

const (
	// SourceManual is operator entry on the form.
	SourceManual Source = iota
	// SourceScan is registration from a decoded label; name and address usually follow later.
	SourceScan
)

// Candidate carries the fields of an item about to be registered.
type Candidate struct {
	Source         Source
	Code           string
	Kind           Kind
	Name           string
	Address        string
	Phone          string
	DeliveryMethod string
	Memo           string
	Coordinates    *kernel.Coordinates
}

// Validate applies the lax registration rules: a scan needs its code, manual entry
// needs at least one of code, name or address. Name and address may otherwise be empty.
func (c Candidate) Validate() error {
	if c.Kind != KindUnknown {
		if err := c.Kind.Validate(); err != nil {
			return err
		}
	}
	if c.Coordinates != nil {
		if err := c.Coordinates.Validate(); err != nil {
			return err
		}
	}

	switch c.Source {
	case SourceScan:
		if strings.TrimSpace(c.Code) == "" {
			return errs.NewValueIsRequiredError("code")
		}
	case SourceManual:
		if strings.TrimSpace(c.Code) == "" && strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Address) == "" {
			return errs.NewValueIsRequiredError("code, name or address")
		}
	default:
		return errs.NewValueIsInvalidError("source")
	}
	return nil
}

// Patch is a partial update. Nil fields are left untouched; Status is deliberately absent.
type Patch struct {
	Code             *string
	Kind             *Kind
	Name             *string
	Address          *string
	Phone            *string
	DeliveryMethod   *string
	Memo             *string
	RedeliveryAt     *string
	Coordinates      *kernel.Coordinates
	ClearCoordinates bool
	Order            *int
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Code == nil && p.Kind == nil && p.Name == nil && p.Address == nil &&
		p.Phone == nil && p.DeliveryMethod == nil && p.Memo == nil && p.RedeliveryAt == nil &&
		p.Coordinates == nil && !p.ClearCoordinates && p.Order == nil
}

// StatusFilter selects items by exact status or lets every item through.
type StatusFilter struct {
	status Status
}

// AllStatuses matches every item.
func AllStatuses() StatusFilter {
	return StatusFilter{}
}

// OnlyStatus matches items whose status equals s.
func OnlyStatus(s Status) StatusFilter {
	return StatusFilter{status: s}
}

// ParseStatusFilter accepts "", "all" or a status name.
func ParseStatusFilter(s string) (StatusFilter, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" || trimmed == "all" {
		return AllStatuses(), nil
	}
	st, err := ParseStatus(trimmed)
	if err != nil {
		return StatusFilter{}, err
	}
	return OnlyStatus(st), nil
}

// Matches reports whether it passes the filter.
func (f StatusFilter) Matches(it *Item) bool {
	return f.status == Unknown || it.Status() == f.status
}

func (f StatusFilter) String() string {
	if f.status == Unknown {
		return "all"
	}
	return f.status.String()
}
