package item

import (
	"errors"
	"fmt"

	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/pkg/errs"
	"manifest/internal/pkg/guard"
)

// ErrScanConfirmationIsNotConstructed is returned when a zero ScanConfirmation reaches Deliver.
var ErrScanConfirmationIsNotConstructed = errors.New(
	"ScanConfirmation must be created via ScanIssuer.Confirm")

// ScanIssuer mints ScanConfirmations. The manifest store trusts exactly one
// issuer, and only the scan gate holds it.
type ScanIssuer struct {
	guard guard.ConstructorGuard
}

func NewScanIssuer() *ScanIssuer {
	return &ScanIssuer{guard: guard.NewConstructorGuard()}
}

// ScanConfirmation is proof that a decoded symbol matched the code an item held
// when its scan session opened. Item.Deliver accepts nothing else.
type ScanConfirmation struct {
	itemID kernel.UUID
	code   string
	issuer *ScanIssuer
	guard  guard.ConstructorGuard
}

// Confirm compares decoded with expectedCode by verbatim string equality.
// No trimming, case folding or other normalization is applied.
func (is *ScanIssuer) Confirm(itemID kernel.UUID, expectedCode, decoded string) (ScanConfirmation, error) {
	if is == nil {
		return ScanConfirmation{}, errs.NewValueIsRequiredError("scan issuer")
	}
	if err := is.guard.Validate(errs.NewValueIsRequiredError("scan issuer")); err != nil {
		return ScanConfirmation{}, err
	}
	if err := itemID.Validate(); err != nil {
		return ScanConfirmation{}, err
	}
	if expectedCode == "" {
		return ScanConfirmation{}, errs.NewValueIsRequiredError("code")
	}
	if decoded != expectedCode {
		return ScanConfirmation{}, errs.NewValueIsInvalidErrorWithCause(
			"decoded code",
			fmt.Errorf("%q does not match %q", decoded, expectedCode),
		)
	}
	return ScanConfirmation{itemID: itemID, code: expectedCode, issuer: is, guard: guard.NewConstructorGuard()}, nil
}

// Validate rejects zero values.
func (c ScanConfirmation) Validate() error {
	return c.guard.Validate(ErrScanConfirmationIsNotConstructed)
}

// ItemID returns the item the confirmation was issued for.
func (c ScanConfirmation) ItemID() kernel.UUID {
	return c.itemID
}

// Code returns the matched code.
func (c ScanConfirmation) Code() string {
	return c.code
}

// IssuedBy reports whether is minted the confirmation.
func (c ScanConfirmation) IssuedBy(is *ScanIssuer) bool {
	return is != nil && c.issuer == is
}
