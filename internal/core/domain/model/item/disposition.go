package item

import (
	"fmt"
	"strings"

	"manifest/internal/pkg/errs"
)

// Disposition records how a delivered parcel changed hands. It is optional:
// DispositionNone means the operator skipped the prompt.
type Disposition string

const (
	DispositionNone              Disposition = ""
	DispositionHandedToRecipient Disposition = "handed_to_recipient"
	DispositionLeftAtLocation    Disposition = "left_at_location"
	DispositionDepositedInBox    Disposition = "deposited_in_box"
	DispositionLeftWithCustodian Disposition = "left_with_custodian"
)

// ParseDisposition accepts the empty string and the four declared values.
func ParseDisposition(s string) (Disposition, error) {
	d := Disposition(strings.ToLower(strings.TrimSpace(s)))
	if err := d.Validate(); err != nil {
		return DispositionNone, err
	}
	return d, nil
}

// Validate rejects undeclared dispositions.
func (d Disposition) Validate() error {
	switch d {
	case DispositionNone, DispositionHandedToRecipient, DispositionLeftAtLocation,
		DispositionDepositedInBox, DispositionLeftWithCustodian:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("disposition is invalid", fmt.Errorf("%q is not a valid disposition", string(d)))
}
