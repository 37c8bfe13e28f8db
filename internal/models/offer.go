package models

// OfferStatus represents the stored state of an offer. Expired is derived at
// read time from the validity window and is never written back.
type OfferStatus string

// Possible offer statuses.
const (
	OfferStatusActive  OfferStatus = "ACTIVE"
	OfferStatusPaused  OfferStatus = "PAUSED"
	OfferStatusExpired OfferStatus = "EXPIRED"
)

// OfferScope restricts which catalog items an offer applies to.
type OfferScope string

// Possible offer scopes.
const (
	OfferScopeAll     OfferScope = "ALL"
	OfferScopeProgram OfferScope = "PROGRAM"
	OfferScopeCourse  OfferScope = "COURSE"
	OfferScopeBundle  OfferScope = "BUNDLE"
)

// Offer is a discount campaign. Exactly one of FlatDiscount and
// PercentDiscount must be set.
type Offer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`

	FlatDiscount    *int64 `json:"flat_discount,omitempty"`
	PercentDiscount *int   `json:"percent_discount,omitempty"`

	Scope    OfferScope `json:"scope"`
	ScopeIDs []string   `json:"scope_ids,omitempty"`

	AlwaysOn   bool  `json:"always_on"`
	ValidFrom  int64 `json:"valid_from,omitempty"`
	ValidUntil int64 `json:"valid_until,omitempty"`

	Status     OfferStatus `json:"status"`
	UsageLimit *int        `json:"usage_limit,omitempty"`
	UsedCount  int         `json:"used_count"`
	CreatedAt  int64       `json:"created_at"`
}

// OfferFilter provides filters for listing offers.
type OfferFilter struct {
	Search    string
	Scope     OfferScope
	Status    OfferStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
