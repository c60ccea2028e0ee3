package item

import (
	"fmt"
	"strings"

	"manifest/internal/pkg/errs"
)

// Kind is the category tag of a delivery item.
type Kind int

const (
	KindUnknown Kind = iota
	KindParcel
	KindLetter
	KindMailboxDrop
	KindRefrigerated
	KindCashOnDelivery
	KindBulky
	KindFragile
	KindDocument
	KindMedical
	KindBuildingMaterial
)

func getKindStrings() map[Kind]string {
	return map[Kind]string{
		KindUnknown:          "unknown",
		KindParcel:           "parcel",
		KindLetter:           "letter",
		KindMailboxDrop:      "mailbox_drop",
		KindRefrigerated:     "refrigerated",
		KindCashOnDelivery:   "cash_on_delivery",
		KindBulky:            "bulky",
		KindFragile:          "fragile",
		KindDocument:         "document",
		KindMedical:          "medical",
		KindBuildingMaterial: "building_material",
	}
}

// Kinds lists every valid kind.
func Kinds() []Kind {
	return []Kind{
		KindParcel, KindLetter, KindMailboxDrop, KindRefrigerated, KindCashOnDelivery,
		KindBulky, KindFragile, KindDocument, KindMedical, KindBuildingMaterial,
	}
}

// ParseKind maps a persisted name to a Kind. An empty string yields KindParcel,
// the default for items registered by scan.
func ParseKind(s string) (Kind, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	if want == "" {
		return KindParcel, nil
	}
	for _, k := range Kinds() {
		if k.String() == want {
			return k, nil
		}
	}
	return KindUnknown, errs.NewValueIsInvalidErrorWithCause("kind is invalid", fmt.Errorf("%q is not a valid kind", s))
}

// Validate checks that k is one of the declared kinds.
func (k Kind) Validate() error {
	if k < KindParcel || k > KindBuildingMaterial {
		return errs.NewValueIsInvalidErrorWithCause("kind is invalid", fmt.Errorf("%d is not a valid kind", k))
	}
	return nil
}

func (k Kind) String() string {
	if str, ok := getKindStrings()[k]; ok {
		return str
	}
	return "unknown"
}
