package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/pipeline"
	"github.com/oneinflu/nsaconsole-api/internal/store"
	"github.com/oneinflu/nsaconsole-api/internal/transition"
	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
)

// NamespaceBatches is the store key for the batch list. Sessions live in a
// per-batch namespace derived by sessionsNamespace.
const NamespaceBatches = "batches"

func sessionsNamespace(batchID string) string {
	return "sessions:" + batchID
}

// CreateBatchRequest describes batch creation.
type CreateBatchRequest struct {
	Name     string   `json:"name" validate:"required"`
	CourseID string   `json:"course_id" validate:"required"`
	StartsAt int64    `json:"starts_at" validate:"required"`
	EndsAt   int64    `json:"ends_at"`
	Weekdays []string `json:"weekdays"`
	Capacity *int     `json:"capacity" validate:"omitempty,gte=0"`
}

// UpdateBatchRequest describes a full batch edit.
type UpdateBatchRequest struct {
	Name     string   `json:"name" validate:"required"`
	CourseID string   `json:"course_id" validate:"required"`
	StartsAt int64    `json:"starts_at" validate:"required"`
	EndsAt   int64    `json:"ends_at"`
	Weekdays []string `json:"weekdays"`
	Capacity *int     `json:"capacity" validate:"omitempty,gte=0"`
}

// AddSessionRequest describes a new session within a batch.
type AddSessionRequest struct {
	Title     string `json:"title"`
	Date      int64  `json:"date" validate:"required"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// RescheduleSessionRequest moves a session to a new date.
type RescheduleSessionRequest struct {
	Date      int64  `json:"date" validate:"required"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ReorderSessionsRequest carries the manually dragged session sequence.
type ReorderSessionsRequest struct {
	SessionIDs []string `json:"session_ids" validate:"required,min=1"`
}

// BatchService owns the batches page view-model and the per-batch session
// roster.
type BatchService struct {
	kv        store.KV
	batches   *store.Collection[models.Batch]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBatchService constructs BatchService.
func NewBatchService(kv store.KV, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{
		kv:        kv,
		batches:   store.NewCollection[models.Batch](kv, NamespaceBatches, nil, logger),
		validator: validate,
		logger:    logger,
	}
}

func (s *BatchService) sessions(batchID string) *store.Collection[models.Session] {
	return store.NewCollection[models.Session](s.kv, sessionsNamespace(batchID), nil, s.logger)
}

// List returns batches matching the filter with pagination metadata.
func (s *BatchService) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, *models.Pagination, error) {
	view := pipeline.View[models.Batch]{
		Filters: []pipeline.Predicate[models.Batch]{
			pipeline.Search(filter.Search, func(b models.Batch) []string { return []string{b.Name, b.CourseID} }),
			pipeline.Match(filter.CourseID, func(b models.Batch) string { return b.CourseID }),
			pipeline.Match(string(filter.Status), func(b models.Batch) string { return string(b.Status) }),
			pipeline.DateRange(filter.From, filter.To, func(b models.Batch) int64 { return b.StartsAt }),
		},
		Less:       batchLess(filter.SortBy),
		Descending: strings.EqualFold(filter.SortOrder, "desc"),
		Page:       filter.Page,
		PageSize:   pageSizeOrDefault(filter.PageSize),
	}
	res := view.Apply(s.batches.Load(ctx))
	return res.Items, &models.Pagination{Page: res.Page, PageSize: res.PageSize, TotalCount: res.Total}, nil
}

// Get returns a single batch.
func (s *BatchService) Get(ctx context.Context, id string) (*models.Batch, error) {
	b, ok := s.batches.Find(ctx, func(b models.Batch) bool { return b.ID == id })
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
	}
	return &b, nil
}

// Create registers a new batch in Draft status.
func (s *BatchService) Create(ctx context.Context, req CreateBatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	b := models.Batch{
		ID:        models.NewID(),
		Name:      req.Name,
		CourseID:  req.CourseID,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		Weekdays:  req.Weekdays,
		Capacity:  req.Capacity,
		Status:    models.BatchStatusDraft,
		CreatedAt: models.NowMillis(),
	}
	s.batches.Upsert(ctx, b, func(x models.Batch) bool { return x.ID == b.ID })
	s.logger.Info("batch created", zap.String("id", b.ID), zap.String("name", b.Name))
	return &b, nil
}

// Update replaces the editable fields of a batch.
func (s *BatchService) Update(ctx context.Context, id string, req UpdateBatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *b
	updated.Name = req.Name
	updated.CourseID = req.CourseID
	updated.StartsAt = req.StartsAt
	updated.EndsAt = req.EndsAt
	updated.Weekdays = req.Weekdays
	updated.Capacity = req.Capacity
	s.batches.Upsert(ctx, updated, func(x models.Batch) bool { return x.ID == id })
	return &updated, nil
}

// SetStatus moves a batch to another lifecycle status.
func (s *BatchService) SetStatus(ctx context.Context, id string, status models.BatchStatus) (*models.Batch, error) {
	if !models.ValidBatchStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown batch status")
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *b
	updated.Status = status
	s.batches.Upsert(ctx, updated, func(x models.Batch) bool { return x.ID == id })
	return &updated, nil
}

// Delete removes a batch together with its session roster.
func (s *BatchService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	s.batches.Remove(ctx, func(b models.Batch) bool { return b.ID == id })
	if err := s.kv.Delete(ctx, sessionsNamespace(id)); err != nil {
		s.logger.Warn("session roster cleanup failed", zap.String("batch_id", id), zap.Error(err))
	}
	s.logger.Info("batch deleted", zap.String("id", id))
	return nil
}

// Sessions returns the session roster of a batch in display order:
// date-ascending, unless an admin dragged an explicit sequence.
func (s *BatchService) Sessions(ctx context.Context, batchID string) ([]models.Session, error) {
	if _, err := s.Get(ctx, batchID); err != nil {
		return nil, err
	}
	return s.sessions(batchID).Load(ctx), nil
}

// AddSession inserts a session and restores date-ascending order. Any
// manual drag order is superseded by this date-changing edit.
func (s *BatchService) AddSession(ctx context.Context, batchID string, req AddSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	b, err := s.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	sess := models.Session{
		ID:        models.NewID(),
		BatchID:   batchID,
		Title:     req.Title,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    models.SessionStatusUpcoming,
		CreatedAt: models.NowMillis(),
	}
	col := s.sessions(batchID)
	items := append(col.Load(ctx), sess)
	sortSessionsByDate(items)
	col.Save(ctx, items)
	s.clearManualOrder(ctx, *b)
	return &sess, nil
}

// RescheduleSession changes a session's date. The session stays Upcoming;
// terminal sessions cannot move. The roster returns to date order.
func (s *BatchService) RescheduleSession(ctx context.Context, batchID, sessionID string, req RescheduleSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}
	b, err := s.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	col := s.sessions(batchID)
	items := col.Load(ctx)
	var updated *models.Session
	for i := range items {
		if items[i].ID != sessionID {
			continue
		}
		if items[i].Status != models.SessionStatusUpcoming {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only upcoming sessions can be rescheduled")
		}
		items[i].Date = req.Date
		if req.StartTime != "" {
			items[i].StartTime = req.StartTime
		}
		if req.EndTime != "" {
			items[i].EndTime = req.EndTime
		}
		updated = &items[i]
		break
	}
	if updated == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	out := *updated
	sortSessionsByDate(items)
	col.Save(ctx, items)
	s.clearManualOrder(ctx, *b)
	return &out, nil
}

// ReorderSessions persists a manually dragged session sequence. The order
// must be a permutation of the current roster; it wins over date order
// until the next date-changing edit.
func (s *BatchService) ReorderSessions(ctx context.Context, batchID string, req ReorderSessionsRequest) ([]models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}
	b, err := s.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	col := s.sessions(batchID)
	items := col.Load(ctx)
	if len(req.SessionIDs) != len(items) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reorder must include every session exactly once")
	}
	byID := make(map[string]models.Session, len(items))
	for _, sess := range items {
		byID[sess.ID] = sess
	}
	ordered := make([]models.Session, 0, len(items))
	for _, id := range req.SessionIDs {
		sess, ok := byID[id]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown session id in reorder")
		}
		delete(byID, id)
		ordered = append(ordered, sess)
	}
	col.Save(ctx, ordered)

	marked := *b
	marked.ManualSessionOrder = true
	s.batches.Upsert(ctx, marked, func(x models.Batch) bool { return x.ID == batchID })
	return ordered, nil
}

// TransitionSession marks a session Completed or Cancelled. An illegal
// request returns the session unchanged with changed=false.
func (s *BatchService) TransitionSession(ctx context.Context, batchID, sessionID string, to models.SessionStatus) (*models.Session, bool, error) {
	if _, err := s.Get(ctx, batchID); err != nil {
		return nil, false, err
	}
	col := s.sessions(batchID)
	items := col.Load(ctx)
	for i := range items {
		if items[i].ID != sessionID {
			continue
		}
		next, ok := transition.Sessions.Apply(items[i].Status, to)
		if !ok {
			out := items[i]
			return &out, false, nil
		}
		items[i].Status = next
		out := items[i]
		col.Save(ctx, items)
		return &out, true, nil
	}
	return nil, false, appErrors.Clone(appErrors.ErrNotFound, "session not found")
}

func (s *BatchService) clearManualOrder(ctx context.Context, b models.Batch) {
	if !b.ManualSessionOrder {
		return
	}
	b.ManualSessionOrder = false
	s.batches.Upsert(ctx, b, func(x models.Batch) bool { return x.ID == b.ID })
}

func sortSessionsByDate(items []models.Session) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Date < items[j].Date })
}

func batchLess(sortBy string) pipeline.Less[models.Batch] {
	switch sortBy {
	case "name":
		return func(a, b models.Batch) bool { return a.Name < b.Name }
	case "starts_at":
		return func(a, b models.Batch) bool { return a.StartsAt < b.StartsAt }
	default:
		return func(a, b models.Batch) bool { return a.CreatedAt < b.CreatedAt }
	}
}
