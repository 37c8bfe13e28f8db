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
	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
)

// NamespaceStudents is the store key for the student roster.
const NamespaceStudents = "students"

// CreateStudentRequest describes a new roster entry.
type CreateStudentRequest struct {
	Name              string   `json:"name" validate:"required"`
	Email             string   `json:"email" validate:"required,email"`
	Phone             string   `json:"phone"`
	EnrolledCourseIDs []string `json:"enrolled_course_ids"`
}

// UpdateStudentRequest describes a full roster edit.
type UpdateStudentRequest struct {
	Name              string   `json:"name" validate:"required"`
	Email             string   `json:"email" validate:"required,email"`
	Phone             string   `json:"phone"`
	EnrolledCourseIDs []string `json:"enrolled_course_ids"`
}

// ProgressRequest updates the session counters behind the progress bar.
type ProgressRequest struct {
	CompletedSessions int `json:"completed_sessions" validate:"gte=0"`
	TotalSessions     int `json:"total_sessions" validate:"gte=0"`
}

// StudentService owns the students page view-model. ProgressPct is a
// derived field: it is recomputed from the session counters by rule, never
// edited directly.
type StudentService struct {
	students  *store.Collection[models.Student]
	progress  *derive.Engine[models.Student]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(kv store.KV, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	progress := derive.NewEngine[models.Student](
		derive.Rule[models.Student]{
			Target:  "progress_pct",
			Sources: []string{"completed_sessions", "total_sessions"},
			Apply: func(st models.Student) models.Student {
				if st.TotalSessions <= 0 {
					st.ProgressPct = 0
					return st
				}
				pct := st.CompletedSessions * 100 / st.TotalSessions
				if pct > 100 {
					pct = 100
				}
				st.ProgressPct = pct
				return st
			},
		},
	)
	return &StudentService{
		students:  store.NewCollection[models.Student](kv, NamespaceStudents, nil, logger),
		progress:  progress,
		validator: validate,
		logger:    logger,
	}
}

// List returns students matching the filter with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	view := pipeline.View[models.Student]{
		Filters: []pipeline.Predicate[models.Student]{
			pipeline.Search(filter.Search, func(st models.Student) []string { return []string{st.Name, st.Email} }),
			func(st models.Student) bool {
				if filter.CourseID == "" {
					return true
				}
				for _, id := range st.EnrolledCourseIDs {
					if id == filter.CourseID {
						return true
					}
				}
				return false
			},
		},
		Less:       studentLess(filter.SortBy),
		Descending: strings.EqualFold(filter.SortOrder, "desc"),
		Page:       filter.Page,
		PageSize:   pageSizeOrDefault(filter.PageSize),
	}
	res := view.Apply(s.students.Load(ctx))
	return res.Items, &models.Pagination{Page: res.Page, PageSize: res.PageSize, TotalCount: res.Total}, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	st, ok := s.students.Find(ctx, func(st models.Student) bool { return st.ID == id })
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return &st, nil
}

// Create adds a student to the roster.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if _, ok := s.students.Find(ctx, func(st models.Student) bool { return st.Email == req.Email }); ok {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student email already on roster")
	}
	st := models.Student{
		ID:                models.NewID(),
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		EnrolledCourseIDs: req.EnrolledCourseIDs,
		CreatedAt:         models.NowMillis(),
	}
	st = s.progress.Derive(st)
	s.students.Upsert(ctx, st, func(x models.Student) bool { return x.ID == st.ID })
	return &st, nil
}

// Update replaces the editable fields of a student.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *st
	updated.Name = req.Name
	updated.Email = req.Email
	updated.Phone = req.Phone
	updated.EnrolledCourseIDs = req.EnrolledCourseIDs
	s.students.Upsert(ctx, updated, func(x models.Student) bool { return x.ID == id })
	return &updated, nil
}

// RecordProgress updates the session counters and rederives the progress
// percentage.
func (s *StudentService) RecordProgress(ctx context.Context, id string, req ProgressRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *st
	updated.CompletedSessions = req.CompletedSessions
	updated.TotalSessions = req.TotalSessions
	updated.LastActiveAt = models.NowMillis()
	updated = s.progress.Derive(updated)
	s.students.Upsert(ctx, updated, func(x models.Student) bool { return x.ID == id })
	return &updated, nil
}

func studentLess(sortBy string) pipeline.Less[models.Student] {
	switch sortBy {
	case "name":
		return func(a, b models.Student) bool { return a.Name < b.Name }
	case "progress":
		return func(a, b models.Student) bool { return a.ProgressPct < b.ProgressPct }
	default:
		return func(a, b models.Student) bool { return a.CreatedAt < b.CreatedAt }
	}
}
