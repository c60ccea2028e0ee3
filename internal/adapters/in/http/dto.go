package http

import (
	"errors"
	"time"

	"manifest/internal/core/application/geoannotator"
	"manifest/internal/core/application/scangate"
	"manifest/internal/core/application/usecases/queries"
	"manifest/internal/core/domain/model/item"
	"manifest/internal/core/domain/model/kernel"
	"manifest/internal/core/domain/services"
	"manifest/internal/pkg/errs"
)

// ItemRequest is the body of POST and PATCH on items. Absent fields are left alone
// on PATCH. Coordinates sent by an operator are stored as fixed.
type ItemRequest struct {
	Source           string   `json:"source"           validate:"omitempty,oneof=manual scan"`
	Code             *string  `json:"code"             validate:"omitempty,max=128"`
	Kind             *string  `json:"kind"             validate:"omitempty,max=32"`
	Name             *string  `json:"name"             validate:"omitempty,max=256"`
	Address          *string  `json:"address"          validate:"omitempty,max=512"`
	Phone            *string  `json:"phone"            validate:"omitempty,max=32"`
	DeliveryMethod   *string  `json:"deliveryMethod"   validate:"omitempty,max=128"`
	Memo             *string  `json:"memo"             validate:"omitempty,max=2000"`
	RedeliveryAt     *string  `json:"redeliveryAt"     validate:"omitempty,max=64"`
	Lat              *float64 `json:"lat"              validate:"omitempty,gte=-90,lte=90"`
	Lng              *float64 `json:"lng"              validate:"omitempty,gte=-180,lte=180"`
	ClearCoordinates bool     `json:"clearCoordinates"`
	Order            *int     `json:"order"`
}

func (r ItemRequest) coordinates() (*kernel.Coordinates, error) {
	if r.Lat == nil && r.Lng == nil {
		return nil, nil
	}
	if r.Lat == nil || r.Lng == nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("coordinates", errors.New("lat and lng must be given together"))
	}
	c, err := kernel.NewFixedCoordinates(*r.Lat, *r.Lng)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r ItemRequest) kind() (*item.Kind, error) {
	if r.Kind == nil {
		return nil, nil
	}
	k, err := item.ParseKind(*r.Kind)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r ItemRequest) toCandidate() (item.Candidate, error) {
	c := item.Candidate{
		Source:         item.SourceManual,
		Code:           deref(r.Code),
		Name:           deref(r.Name),
		Address:        deref(r.Address),
		Phone:          deref(r.Phone),
		DeliveryMethod: deref(r.DeliveryMethod),
		Memo:           deref(r.Memo),
	}
	if r.Source == "scan" {
		c.Source = item.SourceScan
	}

	kind, err := r.kind()
	if err != nil {
		return item.Candidate{}, err
	}
	if kind != nil {
		c.Kind = *kind
	}
	if c.Coordinates, err = r.coordinates(); err != nil {
		return item.Candidate{}, err
	}
	return c, nil
}

func (r ItemRequest) toPatch() (item.Patch, error) {
	p := item.Patch{
		Code:             r.Code,
		Name:             r.Name,
		Address:          r.Address,
		Phone:            r.Phone,
		DeliveryMethod:   r.DeliveryMethod,
		Memo:             r.Memo,
		RedeliveryAt:     r.RedeliveryAt,
		ClearCoordinates: r.ClearCoordinates,
		Order:            r.Order,
	}

	var err error
	if p.Kind, err = r.kind(); err != nil {
		return item.Patch{}, err
	}
	if p.Coordinates, err = r.coordinates(); err != nil {
		return item.Patch{}, err
	}
	return p, nil
}

// ActionRequest is the body of POST /items/:id/actions.
type ActionRequest struct {
	Kind         string `json:"kind"         validate:"required,oneof=mark_absent set_status start_scan delete geocode"`
	RedeliveryAt string `json:"redeliveryAt" validate:"max=64"`
	Note         string `json:"note"         validate:"max=2000"`
	Status       string `json:"status"       validate:"required_if=Kind set_status"`
}

type ReorderRequest struct {
	ItemIDs []string `json:"itemIds" validate:"required,min=1,dive,uuid"`
}

type GeocodeRequest struct {
	DelayMs *int `json:"delayMs" validate:"omitempty,gte=0,lte=60000"`
}

type OpenScanRequest struct {
	ItemID string `json:"itemId" validate:"required,uuid"`
}

// DecodeRequest carries one decode event. Error reports a decoder failure;
// NoSymbol marks an attempt that saw nothing.
type DecodeRequest struct {
	Text     string `json:"text"     validate:"max=512"`
	Error    string `json:"error"    validate:"max=512"`
	NoSymbol bool   `json:"noSymbol"`
}

type FinalizeRequest struct {
	Disposition string `json:"disposition" validate:"omitempty,oneof=handed_to_recipient left_at_location deposited_in_box left_with_custodian"`
	Note        string `json:"note"        validate:"max=2000"`
	Skip        bool   `json:"skip"`
}

type LabelRequest struct {
	Text string `json:"text" validate:"required,max=8000"`
}

type CoordinatesResponse struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Fixed bool    `json:"fixed"`
}

type AttemptResponse struct {
	At    time.Time `json:"at"`
	Event string    `json:"event"`
	Note  string    `json:"note,omitempty"`
}

type ItemResponse struct {
	ID             string               `json:"id"`
	Code           string               `json:"code"`
	Kind           string               `json:"kind"`
	Name           string               `json:"name"`
	Address        string               `json:"address"`
	Phone          string               `json:"phone"`
	Status         string               `json:"status"`
	DeliveryMethod string               `json:"deliveryMethod"`
	Memo           string               `json:"memo"`
	RedeliveryAt   string               `json:"redeliveryAt"`
	Disposition    string               `json:"disposition,omitempty"`
	Coordinates    *CoordinatesResponse `json:"coordinates"`
	Order          int                  `json:"order"`
	Attempts       []AttemptResponse    `json:"attempts"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
	DeliveredAt    *time.Time           `json:"deliveredAt,omitempty"`
}

func toItemResponse(it *item.Item) ItemResponse {
	resp := ItemResponse{
		ID:             it.ID().String(),
		Code:           it.Code(),
		Kind:           it.Kind().String(),
		Name:           it.Name(),
		Address:        it.Address(),
		Phone:          it.Phone(),
		Status:         it.Status().String(),
		DeliveryMethod: it.DeliveryMethod(),
		Memo:           it.Memo(),
		RedeliveryAt:   it.RedeliveryAt(),
		Disposition:    string(it.Disposition()),
		Order:          it.Order(),
		CreatedAt:      it.CreatedAt(),
		UpdatedAt:      it.UpdatedAt(),
	}
	if c := it.Coordinates(); c != nil {
		resp.Coordinates = &CoordinatesResponse{Lat: c.Lat(), Lng: c.Lng(), Fixed: c.Fixed()}
	}
	attempts := it.Attempts()
	resp.Attempts = make([]AttemptResponse, len(attempts))
	for i, a := range attempts {
		resp.Attempts[i] = AttemptResponse{At: a.At, Event: string(a.Event), Note: a.Note}
	}
	if at, ok := it.DeliveredAt(); ok {
		resp.DeliveredAt = &at
	}
	return resp
}

type ListedItemResponse struct {
	Position       int          `json:"position"`
	Label          string       `json:"label"`
	DistanceMeters *float64     `json:"distanceMeters,omitempty"`
	Item           ItemResponse `json:"item"`
}

type ListResponse struct {
	Items    []ListedItemResponse `json:"items"`
	Counts   map[string]int       `json:"counts"`
	PinCount int                  `json:"pinCount"`
	Mapped   int                  `json:"mapped"`
	Mode     services.SortMode    `json:"mode"`
	Degraded bool                 `json:"degraded"`
}

func toListResponse(r queries.ListItemsResponse) ListResponse {
	resp := ListResponse{
		Items:    make([]ListedItemResponse, len(r.Items)),
		Counts:   make(map[string]int, len(r.Counts)),
		PinCount: r.PinCount,
		Mapped:   r.Mapped,
		Mode:     r.Mode,
		Degraded: r.Degraded,
	}
	for i, row := range r.Items {
		resp.Items[i] = ListedItemResponse{
			Position:       row.Position,
			Label:          row.Label,
			DistanceMeters: row.DistanceMeters,
			Item:           toItemResponse(row.Item),
		}
	}
	for st, n := range r.Counts {
		resp.Counts[st.String()] = n
	}
	return resp
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type ActionResponse struct {
	Kind     string           `json:"kind"`
	Resolved bool             `json:"resolved,omitempty"`
	Session  *SessionResponse `json:"session,omitempty"`
	Item     *ItemResponse    `json:"item,omitempty"`
}

type SessionResponse struct {
	ItemID       string `json:"itemId"`
	ExpectedCode string `json:"expectedCode"`
	State        string `json:"state"`
}

func toSessionResponse(s *scangate.Session) *SessionResponse {
	return &SessionResponse{
		ItemID:       s.ItemID().String(),
		ExpectedCode: s.ExpectedCode(),
		State:        s.State().String(),
	}
}

type HintResponse struct {
	EditDistance  int    `json:"editDistance"`
	NearMiss      bool   `json:"nearMiss"`
	OtherItemID   string `json:"otherItemId,omitempty"`
	OtherItemName string `json:"otherItemName,omitempty"`
}

type OutcomeResponse struct {
	Kind    string        `json:"kind"`
	Decoded string        `json:"decoded,omitempty"`
	Hint    *HintResponse `json:"hint,omitempty"`
	Error   string        `json:"error,omitempty"`
	State   string        `json:"state"`
}

func toOutcomeResponse(o scangate.Outcome, state scangate.State) OutcomeResponse {
	resp := OutcomeResponse{Kind: string(o.Kind), Decoded: o.Decoded, State: state.String()}
	if o.Hint != nil {
		resp.Hint = &HintResponse{
			EditDistance:  o.Hint.EditDistance,
			NearMiss:      o.Hint.NearMiss,
			OtherItemID:   o.Hint.OtherItemID,
			OtherItemName: o.Hint.OtherItemName,
		}
	}
	if o.Err != nil {
		resp.Error = o.Err.Error()
	}
	return resp
}

type PurgeResponse struct {
	Removed int `json:"removed"`
}

type GeocodeResponse struct {
	Candidates    int `json:"candidates"`
	Resolved      int `json:"resolved"`
	NotFound      int `json:"notFound"`
	Skipped       int `json:"skipped"`
	PersistFailed int `json:"persistFailed"`
}

func toGeocodeResponse(r geoannotator.BatchReport) GeocodeResponse {
	return GeocodeResponse{
		Candidates:    r.Candidates,
		Resolved:      r.Resolved,
		NotFound:      r.NotFound,
		Skipped:       r.Skipped,
		PersistFailed: r.PersistFailed,
	}
}

type ImportResponse struct {
	Inserted int      `json:"inserted"`
	Rejected []string `json:"rejected"`
}

type LabelResponse struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

type SummaryResponse struct {
	Day      string         `json:"day"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
