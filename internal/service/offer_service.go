package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/pipeline"
	"github.com/oneinflu/nsaconsole-api/internal/store"
	"github.com/oneinflu/nsaconsole-api/internal/transition"
	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
)

// NamespaceOffers is the store key for the offer list.
const NamespaceOffers = "offers"

// OfferRequest describes offer creation and edit. Exactly one of
// flat_discount and percent_discount must be set.
type OfferRequest struct {
	Name            string            `json:"name" validate:"required"`
	Code            string            `json:"code"`
	FlatDiscount    *int64            `json:"flat_discount" validate:"omitempty,gt=0"`
	PercentDiscount *int              `json:"percent_discount" validate:"omitempty,gt=0,lte=100"`
	Scope           models.OfferScope `json:"scope" validate:"required,oneof=ALL PROGRAM COURSE BUNDLE"`
	ScopeIDs        []string          `json:"scope_ids"`
	AlwaysOn        bool              `json:"always_on"`
	ValidFrom       int64             `json:"valid_from"`
	ValidUntil      int64             `json:"valid_until"`
	UsageLimit      *int              `json:"usage_limit" validate:"omitempty,gt=0"`
}

// OfferService owns the offers page view-model. The stored status only ever
// toggles Active/Paused; expiry is presented at read time.
type OfferService struct {
	offers    *store.Collection[models.Offer]
	validator *validator.Validate
	logger    *zap.Logger
	now       func() int64
}

// NewOfferService constructs OfferService. now may be nil for wall-clock time.
func NewOfferService(kv store.KV, validate *validator.Validate, logger *zap.Logger, now func() int64) *OfferService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = models.NowMillis
	}
	return &OfferService{
		offers:    store.NewCollection[models.Offer](kv, NamespaceOffers, nil, logger),
		validator: validate,
		logger:    logger,
		now:       now,
	}
}

// List returns offers with their effective (read-time) status applied.
func (s *OfferService) List(ctx context.Context, filter models.OfferFilter) ([]models.Offer, *models.Pagination, error) {
	now := s.now()
	items := s.offers.Load(ctx)
	for i := range items {
		items[i].Status = transition.EffectiveOfferStatus(items[i], now)
	}
	view := pipeline.View[models.Offer]{
		Filters: []pipeline.Predicate[models.Offer]{
			pipeline.Search(filter.Search, func(o models.Offer) []string { return []string{o.Name, o.Code} }),
			pipeline.Match(string(filter.Scope), func(o models.Offer) string { return string(o.Scope) }),
			pipeline.Match(string(filter.Status), func(o models.Offer) string { return string(o.Status) }),
		},
		Less:       offerLess(filter.SortBy),
		Descending: strings.EqualFold(filter.SortOrder, "desc"),
		Page:       filter.Page,
		PageSize:   pageSizeOrDefault(filter.PageSize),
	}
	res := view.Apply(items)
	return res.Items, &models.Pagination{Page: res.Page, PageSize: res.PageSize, TotalCount: res.Total}, nil
}

// Get returns a single offer with its effective status.
func (s *OfferService) Get(ctx context.Context, id string) (*models.Offer, error) {
	o, ok := s.offers.Find(ctx, func(o models.Offer) bool { return o.ID == id })
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "offer not found")
	}
	o.Status = transition.EffectiveOfferStatus(o, s.now())
	return &o, nil
}

// Create registers a new offer in Active status.
func (s *OfferService) Create(ctx context.Context, req OfferRequest) (*models.Offer, error) {
	if err := s.validateOffer(req); err != nil {
		return nil, err
	}
	o := models.Offer{
		ID:              models.NewID(),
		Name:            req.Name,
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		FlatDiscount:    req.FlatDiscount,
		PercentDiscount: req.PercentDiscount,
		Scope:           req.Scope,
		ScopeIDs:        req.ScopeIDs,
		AlwaysOn:        req.AlwaysOn,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		Status:          models.OfferStatusActive,
		UsageLimit:      req.UsageLimit,
		CreatedAt:       models.NowMillis(),
	}
	s.offers.Upsert(ctx, o, func(x models.Offer) bool { return x.ID == o.ID })
	s.logger.Info("offer created", zap.String("id", o.ID), zap.String("name", o.Name))
	return &o, nil
}

// Update replaces the editable fields of an offer.
func (s *OfferService) Update(ctx context.Context, id string, req OfferRequest) (*models.Offer, error) {
	if err := s.validateOffer(req); err != nil {
		return nil, err
	}
	existing, ok := s.offers.Find(ctx, func(o models.Offer) bool { return o.ID == id })
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "offer not found")
	}
	updated := existing
	updated.Name = req.Name
	updated.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	updated.FlatDiscount = req.FlatDiscount
	updated.PercentDiscount = req.PercentDiscount
	updated.Scope = req.Scope
	updated.ScopeIDs = req.ScopeIDs
	updated.AlwaysOn = req.AlwaysOn
	updated.ValidFrom = req.ValidFrom
	updated.ValidUntil = req.ValidUntil
	updated.UsageLimit = req.UsageLimit
	s.offers.Upsert(ctx, updated, func(x models.Offer) bool { return x.ID == id })
	return &updated, nil
}

// Toggle flips an offer between Active and Paused. Toggling a lapsed offer
// is a no-op signalled by changed=false.
func (s *OfferService) Toggle(ctx context.Context, id string) (*models.Offer, bool, error) {
	existing, ok := s.offers.Find(ctx, func(o models.Offer) bool { return o.ID == id })
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "offer not found")
	}
	if transition.EffectiveOfferStatus(existing, s.now()) == models.OfferStatusExpired {
		out := existing
		out.Status = models.OfferStatusExpired
		return &out, false, nil
	}
	target := models.OfferStatusPaused
	if existing.Status == models.OfferStatusPaused {
		target = models.OfferStatusActive
	}
	next, ok := transition.Offers.Apply(existing.Status, target)
	if !ok {
		out := existing
		return &out, false, nil
	}
	updated := existing
	updated.Status = next
	s.offers.Upsert(ctx, updated, func(x models.Offer) bool { return x.ID == id })
	return &updated, true, nil
}

// RecordUse bumps the usage counter, refusing once the limit is reached.
func (s *OfferService) RecordUse(ctx context.Context, id string) (*models.Offer, error) {
	existing, ok := s.offers.Find(ctx, func(o models.Offer) bool { return o.ID == id })
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "offer not found")
	}
	if existing.UsageLimit != nil && existing.UsedCount >= *existing.UsageLimit {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "offer usage limit reached")
	}
	updated := existing
	updated.UsedCount++
	s.offers.Upsert(ctx, updated, func(x models.Offer) bool { return x.ID == id })
	return &updated, nil
}

// Delete removes an offer.
func (s *OfferService) Delete(ctx context.Context, id string) error {
	if _, ok := s.offers.Find(ctx, func(o models.Offer) bool { return o.ID == id }); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "offer not found")
	}
	s.offers.Remove(ctx, func(o models.Offer) bool { return o.ID == id })
	s.logger.Info("offer deleted", zap.String("id", id))
	return nil
}

// CountExpired reports how many stored offers present as Expired right now.
// Used by the read-only refresh tick; it never writes.
func (s *OfferService) CountExpired(ctx context.Context) int {
	now := s.now()
	count := 0
	for _, o := range s.offers.Load(ctx) {
		if transition.EffectiveOfferStatus(o, now) == models.OfferStatusExpired {
			count++
		}
	}
	return count
}

func (s *OfferService) validateOffer(req OfferRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offer payload")
	}
	if (req.FlatDiscount == nil) == (req.PercentDiscount == nil) {
		return appErrors.Clone(appErrors.ErrValidation, "exactly one of flat_discount and percent_discount must be set")
	}
	if !req.AlwaysOn && req.ValidUntil == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "offer needs a validity window or always_on")
	}
	if req.Scope != models.OfferScopeAll && len(req.ScopeIDs) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "scoped offers need scope_ids")
	}
	return nil
}

func offerLess(sortBy string) pipeline.Less[models.Offer] {
	switch sortBy {
	case "name":
		return func(a, b models.Offer) bool { return a.Name < b.Name }
	case "valid_until":
		return func(a, b models.Offer) bool { return a.ValidUntil < b.ValidUntil }
	default:
		return func(a, b models.Offer) bool { return a.CreatedAt < b.CreatedAt }
	}
}
