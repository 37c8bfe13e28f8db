package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/oneinflu/nsaconsole-api/internal/derive"
	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/pipeline"
	"github.com/oneinflu/nsaconsole-api/internal/store"
	"github.com/oneinflu/nsaconsole-api/internal/transition"
	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
)

// NamespaceEnrollments is the store key for the enrollment list.
const NamespaceEnrollments = "enrollments"

// CreateEnrollmentRequest describes enrollment creation.
type CreateEnrollmentRequest struct {
	StudentName  string `json:"student_name" validate:"required"`
	StudentEmail string `json:"student_email" validate:"required,email"`
	StudentPhone string `json:"student_phone"`
	CourseID     string `json:"course_id" validate:"required"`
	BatchID      string `json:"batch_id" validate:"required"`
	BasePrice    int64  `json:"base_price" validate:"gte=0"`
	OfferPrice   *int64 `json:"offer_price" validate:"omitempty,gte=0"`
	CouponCode   string `json:"coupon_code"`
	AmountPaid   int64  `json:"amount_paid" validate:"gte=0"`
	EnrolledAt   int64  `json:"enrolled_at"`
	Notes        string `json:"notes"`
}

// RecordPaymentRequest describes an incremental payment against an enrollment.
type RecordPaymentRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// OverrideStatusRequest sets an enrollment status directly, bypassing both
// the transition table and the payment-driven derivation for this one write.
type OverrideStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" validate:"required"`
}

// ImportResult summarises a CSV bulk import run.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// csvImportHeader is the exact column set the bulk import understands.
// Values containing commas are not supported: rows are split naively, which
// mirrors the import format this console has always accepted.
var csvImportHeader = []string{
	"student_email", "course_id", "batch_id", "price", "paid_amount", "enrollment_date", "notes",
}

// EnrollmentService owns the enrollments page view-model: listing, pricing
// snapshots, payments, status changes and bulk import. Enrollments are
// historical records and are never deleted.
type EnrollmentService struct {
	enrollments *store.Collection[models.Enrollment]
	pricing     *derive.PricingEngine
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(kv store.KV, pricing *derive.PricingEngine, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if pricing == nil {
		pricing = derive.NewPricingEngine(nil)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		enrollments: store.NewCollection[models.Enrollment](kv, NamespaceEnrollments, nil, logger),
		pricing:     pricing,
		validator:   validate,
		logger:      logger,
	}
}

// List returns enrollments matching the filter with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, *models.Pagination, error) {
	view := pipeline.View[models.Enrollment]{
		Filters: []pipeline.Predicate[models.Enrollment]{
			pipeline.Search(filter.Search, func(e models.Enrollment) []string {
				return []string{e.StudentName, e.StudentEmail, e.CouponCode}
			}),
			pipeline.Match(filter.CourseID, func(e models.Enrollment) string { return e.CourseID }),
			pipeline.Match(filter.BatchID, func(e models.Enrollment) string { return e.BatchID }),
			pipeline.Match(string(filter.Status), func(e models.Enrollment) string { return string(e.Status) }),
			pipeline.Match(string(filter.PaymentStatus), func(e models.Enrollment) string { return string(e.PaymentStatus) }),
			pipeline.DateRange(filter.From, filter.To, func(e models.Enrollment) int64 { return e.EnrolledAt }),
		},
		Less:       enrollmentLess(filter.SortBy),
		Descending: strings.EqualFold(filter.SortOrder, "desc"),
		Page:       filter.Page,
		PageSize:   pageSizeOrDefault(filter.PageSize),
	}
	res := view.Apply(s.enrollments.Load(ctx))
	return res.Items, &models.Pagination{Page: res.Page, PageSize: res.PageSize, TotalCount: res.Total}, nil
}

// Get returns a single enrollment.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.Enrollment, error) {
	e, ok := s.enrollments.Find(ctx, func(e models.Enrollment) bool { return e.ID == id })
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	return &e, nil
}

// Create registers an enrollment with a derived pricing snapshot.
func (s *EnrollmentService) Create(ctx context.Context, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	enrolledAt := req.EnrolledAt
	if enrolledAt == 0 {
		enrolledAt = models.NowMillis()
	}
	e := models.Enrollment{
		ID:           models.NewID(),
		StudentName:  req.StudentName,
		StudentEmail: req.StudentEmail,
		StudentPhone: req.StudentPhone,
		CourseID:     req.CourseID,
		BatchID:      req.BatchID,
		BasePrice:    req.BasePrice,
		OfferPrice:   req.OfferPrice,
		CouponCode:   req.CouponCode,
		AmountPaid:   req.AmountPaid,
		EnrolledAt:   enrolledAt,
		Notes:        req.Notes,
	}
	e = s.pricing.Reprice(e)
	s.enrollments.Upsert(ctx, e, func(x models.Enrollment) bool { return x.ID == e.ID })
	s.logger.Info("enrollment created",
		zap.String("id", e.ID),
		zap.String("batch_id", e.BatchID),
		zap.Int64("final_amount", e.FinalAmount))
	return &e, nil
}

// RecordPayment adds a payment and recomputes the derived pricing fields.
// A payment covering the full balance flips the enrollment to Active.
func (s *EnrollmentService) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *e
	updated.AmountPaid += req.Amount
	updated = s.pricing.Reprice(updated)
	s.enrollments.Upsert(ctx, updated, func(x models.Enrollment) bool { return x.ID == id })
	return &updated, nil
}

// Transition applies a legal enrollment status change. An illegal request
// returns the record unchanged with changed=false, never an error.
func (s *EnrollmentService) Transition(ctx context.Context, id string, to models.EnrollmentStatus) (*models.Enrollment, bool, error) {
	if !models.ValidEnrollmentStatus(to) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment status")
	}
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	next, ok := transition.Enrollments.Apply(e.Status, to)
	if !ok {
		return e, false, nil
	}
	updated := *e
	updated.Status = next
	s.enrollments.Upsert(ctx, updated, func(x models.Enrollment) bool { return x.ID == id })
	return &updated, true, nil
}

// OverrideStatus sets the status directly as an explicit admin action. The
// money fields are still recomputed but the status derivation is bypassed
// for this write.
func (s *EnrollmentService) OverrideStatus(ctx context.Context, id string, req OverrideStatusRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override payload")
	}
	if !models.ValidEnrollmentStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment status")
	}
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *e
	updated.Status = req.Status
	updated = s.pricing.RepriceKeepStatus(updated)
	s.enrollments.Upsert(ctx, updated, func(x models.Enrollment) bool { return x.ID == id })
	s.logger.Info("enrollment status overridden",
		zap.String("id", id), zap.String("status", string(req.Status)))
	return &updated, nil
}

// ImportCSV bulk-creates enrollments from the plain-text import format.
// Unparseable rows are skipped, not fatal; the result reports both counts.
func (s *EnrollmentService) ImportCSV(ctx context.Context, text string) (*ImportResult, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty import payload")
	}

	cols := splitRow(lines[0])
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[strings.ToLower(strings.TrimSpace(c))] = i
	}
	for _, required := range csvImportHeader[:5] {
		if _, ok := index[required]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "import header missing column "+required)
		}
	}

	result := &ImportResult{}
	for n, line := range lines[1:] {
		fields := splitRow(line)
		e, err := s.importRow(index, fields)
		if err != "" {
			result.Skipped++
			result.Errors = append(result.Errors, "row "+strconv.Itoa(n+2)+": "+err)
			continue
		}
		s.enrollments.Upsert(ctx, e, func(x models.Enrollment) bool { return x.ID == e.ID })
		result.Imported++
	}
	s.logger.Info("enrollment import finished",
		zap.Int("imported", result.Imported), zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *EnrollmentService) importRow(index map[string]int, fields []string) (models.Enrollment, string) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	email := get("student_email")
	if email == "" || !strings.Contains(email, "@") {
		return models.Enrollment{}, "invalid student_email"
	}
	courseID := get("course_id")
	batchID := get("batch_id")
	if courseID == "" || batchID == "" {
		return models.Enrollment{}, "missing course_id or batch_id"
	}
	price, err := strconv.ParseInt(get("price"), 10, 64)
	if err != nil || price < 0 {
		return models.Enrollment{}, "invalid price"
	}
	paid, err := strconv.ParseInt(get("paid_amount"), 10, 64)
	if err != nil || paid < 0 {
		return models.Enrollment{}, "invalid paid_amount"
	}
	enrolledAt := models.NowMillis()
	if raw := get("enrollment_date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return models.Enrollment{}, "invalid enrollment_date"
		}
		enrolledAt = d.UnixMilli()
	}

	e := models.Enrollment{
		ID:           models.NewID(),
		StudentName:  strings.SplitN(email, "@", 2)[0],
		StudentEmail: email,
		CourseID:     courseID,
		BatchID:      batchID,
		BasePrice:    price,
		AmountPaid:   paid,
		EnrolledAt:   enrolledAt,
		Notes:        get("notes"),
	}
	return s.pricing.Reprice(e), ""
}

func enrollmentLess(sortBy string) pipeline.Less[models.Enrollment] {
	switch sortBy {
	case "student_name":
		return func(a, b models.Enrollment) bool { return a.StudentName < b.StudentName }
	case "final_amount":
		return func(a, b models.Enrollment) bool { return a.FinalAmount < b.FinalAmount }
	case "balance_due":
		return func(a, b models.Enrollment) bool { return a.BalanceDue < b.BalanceDue }
	default:
		return func(a, b models.Enrollment) bool { return a.EnrolledAt < b.EnrolledAt }
	}
}

// splitLines breaks the import text into non-empty trimmed lines.
func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// splitRow is the naive comma split of the import format. Quoting and
// escaping are not supported.
func splitRow(line string) []string {
	return strings.Split(line, ",")
}
