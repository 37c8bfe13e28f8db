package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/oneinflu/nsaconsole-api/internal/derive"
	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/pipeline"
	"github.com/oneinflu/nsaconsole-api/internal/store"
	"github.com/oneinflu/nsaconsole-api/internal/transition"
	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
)

// NamespaceOrders is the store key for the order list. Timeline events live
// in a per-order namespace derived by timelineNamespace.
const NamespaceOrders = "orders"

func timelineNamespace(orderID string) string {
	return "timeline:" + orderID
}

// Order event types recorded on the timeline.
const (
	OrderEventCreated  = "created"
	OrderEventPayment  = "payment_received"
	OrderEventPartial  = "partial_payment"
	OrderEventFailed   = "payment_failed"
	OrderEventRefunded = "refunded"
	OrderEventDisputed = "disputed"
)

// MarkPaidRequest settles an order in full.
type MarkPaidRequest struct {
	GatewayFee int64 `json:"gateway_fee" validate:"gte=0"`
}

// PartialPaymentRequest records a partial payment against an order.
type PartialPaymentRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// OrderDetail is an order together with its timeline.
type OrderDetail struct {
	models.Order
	Timeline []models.OrderEvent `json:"timeline"`
}

// OrderService owns the orders page view-model: monetary breakdowns, the
// payment state machine and its cascade into the linked enrollment, and the
// append-only timeline. Orders are historical and never deleted.
type OrderService struct {
	kv          store.KV
	orders      *store.Collection[models.Order]
	enrollments *store.Collection[models.Enrollment]
	pricing     *derive.PricingEngine
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewOrderService constructs OrderService.
func NewOrderService(kv store.KV, pricing *derive.PricingEngine, validate *validator.Validate, logger *zap.Logger) *OrderService {
	if pricing == nil {
		pricing = derive.NewPricingEngine(nil)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		kv:          kv,
		orders:      store.NewCollection[models.Order](kv, NamespaceOrders, nil, logger),
		enrollments: store.NewCollection[models.Enrollment](kv, NamespaceEnrollments, nil, logger),
		pricing:     pricing,
		validator:   validate,
		logger:      logger,
	}
}

func (s *OrderService) timeline(orderID string) *store.Collection[models.OrderEvent] {
	return store.NewCollection[models.OrderEvent](s.kv, timelineNamespace(orderID), nil, s.logger)
}

// List returns orders matching the filter with pagination metadata.
func (s *OrderService) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, *models.Pagination, error) {
	view := pipeline.View[models.Order]{
		Filters: []pipeline.Predicate[models.Order]{
			pipeline.Search(filter.Search, func(o models.Order) []string { return []string{o.ID, o.EnrollmentID} }),
			pipeline.Match(string(filter.Status), func(o models.Order) string { return string(o.Status) }),
			pipeline.DateRange(filter.From, filter.To, func(o models.Order) int64 { return o.CreatedAt }),
		},
		Less:       orderLess(filter.SortBy),
		Descending: strings.EqualFold(filter.SortOrder, "desc"),
		Page:       filter.Page,
		PageSize:   pageSizeOrDefault(filter.PageSize),
	}
	res := view.Apply(s.orders.Load(ctx))
	return res.Items, &models.Pagination{Page: res.Page, PageSize: res.PageSize, TotalCount: res.Total}, nil
}

// Get returns an order with its timeline.
func (s *OrderService) Get(ctx context.Context, id string) (*OrderDetail, error) {
	o, ok := s.orders.Find(ctx, func(o models.Order) bool { return o.ID == id })
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "order not found")
	}
	return &OrderDetail{Order: o, Timeline: s.timeline(id).Load(ctx)}, nil
}

// CreateForEnrollment opens an order from an enrollment's pricing snapshot.
func (s *OrderService) CreateForEnrollment(ctx context.Context, enrollmentID string) (*models.Order, error) {
	e, ok := s.enrollments.Find(ctx, func(e models.Enrollment) bool { return e.ID == enrollmentID })
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	listPrice := e.BasePrice
	if e.OfferPrice != nil {
		listPrice = *e.OfferPrice
	}
	o := models.Order{
		ID:             models.NewID(),
		EnrollmentID:   e.ID,
		BaseAmount:     e.BasePrice,
		Discount:       e.BasePrice - listPrice,
		CouponDiscount: listPrice - e.FinalAmount,
		Payable:        e.FinalAmount,
		Paid:           e.AmountPaid,
		Pending:        e.BalanceDue,
		NetSettlement:  e.AmountPaid,
		Status:         orderStatusFor(e.AmountPaid, e.FinalAmount),
		CreatedAt:      models.NowMillis(),
	}
	s.orders.Upsert(ctx, o, func(x models.Order) bool { return x.ID == o.ID })
	s.appendEvent(ctx, o.ID, OrderEventCreated, "order created")
	return &o, nil
}

// MarkPaid settles the order in full and cascades Paid/Active into the
// linked enrollment. Re-settling a paid order is a no-op: the record comes
// back unchanged, changed=false, and no timeline entry is appended.
func (s *OrderService) MarkPaid(ctx context.Context, id string, req MarkPaidRequest) (*models.Order, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	o, ok := s.orders.Find(ctx, func(o models.Order) bool { return o.ID == id })
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "order not found")
	}
	next, changed := transition.Orders.Apply(o.Status, models.OrderStatusPaid)
	if !changed {
		return &o, false, nil
	}
	updated := o
	updated.Status = next
	updated.Paid = updated.Payable
	updated.Pending = 0
	updated.GatewayFee = req.GatewayFee
	updated.NetSettlement = updated.Paid - req.GatewayFee
	s.orders.Upsert(ctx, updated, func(x models.Order) bool { return x.ID == id })
	s.appendEvent(ctx, id, OrderEventPayment, "payment received in full")
	s.cascadePaid(ctx, updated)
	return &updated, true, nil
}

// RecordPartial applies a partial payment, moving the order to Partial (or
// Paid once the balance is covered) and cascading into the enrollment.
func (s *OrderService) RecordPartial(ctx context.Context, id string, req PartialPaymentRequest) (*models.Order, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	o, ok := s.orders.Find(ctx, func(o models.Order) bool { return o.ID == id })
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "order not found")
	}
	if o.Status != models.OrderStatusPending && o.Status != models.OrderStatusPartial {
		return &o, false, nil
	}
	updated := o
	updated.Paid += req.Amount
	if updated.Paid > updated.Payable {
		updated.Paid = updated.Payable
	}
	updated.Pending = updated.Payable - updated.Paid
	updated.NetSettlement = updated.Paid - updated.GatewayFee
	target := models.OrderStatusPartial
	if updated.Pending == 0 {
		target = models.OrderStatusPaid
	}
	if next, ok := transition.Orders.Apply(updated.Status, target); ok {
		updated.Status = next
	}
	s.orders.Upsert(ctx, updated, func(x models.Order) bool { return x.ID == id })
	if updated.Status == models.OrderStatusPaid {
		s.appendEvent(ctx, id, OrderEventPayment, "payment completed")
		s.cascadePaid(ctx, updated)
	} else {
		s.appendEvent(ctx, id, OrderEventPartial, "partial payment recorded")
		s.cascadePartial(ctx, updated, req.Amount)
	}
	return &updated, true, nil
}

// MarkFailed fails a non-terminal order (e.g. on cancellation).
func (s *OrderService) MarkFailed(ctx context.Context, id string) (*models.Order, bool, error) {
	return s.simpleTransition(ctx, id, models.OrderStatusFailed, OrderEventFailed, "payment failed")
}

// MarkDisputed flags a settled order as disputed.
func (s *OrderService) MarkDisputed(ctx context.Context, id string) (*models.Order, bool, error) {
	return s.simpleTransition(ctx, id, models.OrderStatusDisputed, OrderEventDisputed, "order disputed")
}

// Refund refunds a settled order and cascades Refunded into the linked
// enrollment. Idempotent like MarkPaid.
func (s *OrderService) Refund(ctx context.Context, id string) (*models.Order, bool, error) {
	o, changed, err := s.simpleTransition(ctx, id, models.OrderStatusRefunded, OrderEventRefunded, "order refunded")
	if err != nil || !changed {
		return o, changed, err
	}
	s.cascadeRefund(ctx, *o)
	return o, true, nil
}

func (s *OrderService) simpleTransition(ctx context.Context, id string, to models.OrderStatus, eventType, message string) (*models.Order, bool, error) {
	o, ok := s.orders.Find(ctx, func(o models.Order) bool { return o.ID == id })
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "order not found")
	}
	next, changed := transition.Orders.Apply(o.Status, to)
	if !changed {
		return &o, false, nil
	}
	updated := o
	updated.Status = next
	s.orders.Upsert(ctx, updated, func(x models.Order) bool { return x.ID == id })
	s.appendEvent(ctx, id, eventType, message)
	return &updated, true, nil
}

// cascadePaid marks the linked enrollment fully paid; the pricing rules
// flip it to Active.
func (s *OrderService) cascadePaid(ctx context.Context, o models.Order) {
	e, ok := s.enrollments.Find(ctx, func(e models.Enrollment) bool { return e.ID == o.EnrollmentID })
	if !ok {
		s.logger.Warn("order cascade found no enrollment",
			zap.String("order_id", o.ID), zap.String("enrollment_id", o.EnrollmentID))
		return
	}
	e.AmountPaid = e.FinalAmount
	e = s.pricing.Reprice(e)
	s.enrollments.Upsert(ctx, e, func(x models.Enrollment) bool { return x.ID == e.ID })
}

func (s *OrderService) cascadePartial(ctx context.Context, o models.Order, amount int64) {
	e, ok := s.enrollments.Find(ctx, func(e models.Enrollment) bool { return e.ID == o.EnrollmentID })
	if !ok {
		return
	}
	e.AmountPaid += amount
	if e.AmountPaid > e.FinalAmount {
		e.AmountPaid = e.FinalAmount
	}
	e = s.pricing.Reprice(e)
	s.enrollments.Upsert(ctx, e, func(x models.Enrollment) bool { return x.ID == e.ID })
}

// cascadeRefund pushes Refunded into the linked enrollment's payment and
// lifecycle status.
func (s *OrderService) cascadeRefund(ctx context.Context, o models.Order) {
	e, ok := s.enrollments.Find(ctx, func(e models.Enrollment) bool { return e.ID == o.EnrollmentID })
	if !ok {
		return
	}
	e.PaymentStatus = models.PaymentStatusRefunded
	if next, ok := transition.Enrollments.Apply(e.Status, models.EnrollmentStatusRefunded); ok {
		e.Status = next
	}
	s.enrollments.Upsert(ctx, e, func(x models.Enrollment) bool { return x.ID == e.ID })
}

func (s *OrderService) appendEvent(ctx context.Context, orderID, eventType, message string) {
	col := s.timeline(orderID)
	events := append(col.Load(ctx), models.OrderEvent{
		ID:      models.NewID(),
		OrderID: orderID,
		Type:    eventType,
		Message: message,
		At:      models.NowMillis(),
	})
	col.Save(ctx, events)
}

func orderStatusFor(paid, payable int64) models.OrderStatus {
	switch {
	case paid >= payable:
		return models.OrderStatusPaid
	case paid > 0:
		return models.OrderStatusPartial
	default:
		return models.OrderStatusPending
	}
}

func orderLess(sortBy string) pipeline.Less[models.Order] {
	switch sortBy {
	case "payable":
		return func(a, b models.Order) bool { return a.Payable < b.Payable }
	case "paid":
		return func(a, b models.Order) bool { return a.Paid < b.Paid }
	default:
		return func(a, b models.Order) bool { return a.CreatedAt < b.CreatedAt }
	}
}
