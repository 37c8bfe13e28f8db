package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/store"
	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
)

// Store keys for the catalog taxonomy.
const (
	NamespaceCategories = "categories"
	NamespaceParts      = "parts"
)

// CategoryRequest describes category creation and edit.
type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug"`
}

// PartRequest describes a part (level) within a category.
type PartRequest struct {
	Name  string `json:"name" validate:"required"`
	Level int    `json:"level" validate:"gte=0"`
}

// ReorderRequest carries a manually dragged id sequence.
type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// CategoryService owns the categories page view-model: the category list
// and the parts/levels within each, both manually orderable.
type CategoryService struct {
	categories *store.Collection[models.Category]
	parts      *store.Collection[models.Part]
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCategoryService constructs CategoryService.
func NewCategoryService(kv store.KV, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categories: store.NewCollection[models.Category](kv, NamespaceCategories, nil, logger),
		parts:      store.NewCollection[models.Part](kv, NamespaceParts, nil, logger),
		validator:  validate,
		logger:     logger,
	}
}

// List returns every category in display order.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	items := s.categories.Load(ctx)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items, nil
}

// Create appends a category at the end of the display order.
func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	items := s.categories.Load(ctx)
	c := models.Category{
		ID:        models.NewID(),
		Name:      req.Name,
		Slug:      slugify(req.Slug, req.Name),
		Position:  len(items),
		CreatedAt: models.NowMillis(),
	}
	s.categories.Upsert(ctx, c, func(x models.Category) bool { return x.ID == c.ID })
	return &c, nil
}

// Update renames a category.
func (s *CategoryService) Update(ctx context.Context, id string, req CategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	c, ok := s.categories.Find(ctx, func(c models.Category) bool { return c.ID == id })
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
	}
	c.Name = req.Name
	c.Slug = slugify(req.Slug, req.Name)
	s.categories.Upsert(ctx, c, func(x models.Category) bool { return x.ID == id })
	return &c, nil
}

// Delete removes a category and its parts.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, ok := s.categories.Find(ctx, func(c models.Category) bool { return c.ID == id }); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "category not found")
	}
	s.categories.Remove(ctx, func(c models.Category) bool { return c.ID == id })
	s.parts.Remove(ctx, func(p models.Part) bool { return p.CategoryID == id })
	return nil
}

// Reorder persists a manually dragged category sequence.
func (s *CategoryService) Reorder(ctx context.Context, req ReorderRequest) ([]models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}
	items := s.categories.Load(ctx)
	ordered, err := applyOrder(items, req.IDs, func(c models.Category) string { return c.ID })
	if err != nil {
		return nil, err
	}
	for i := range ordered {
		ordered[i].Position = i
	}
	s.categories.Save(ctx, ordered)
	return ordered, nil
}

// Parts returns the parts of a category in display order.
func (s *CategoryService) Parts(ctx context.Context, categoryID string) ([]models.Part, error) {
	if _, ok := s.categories.Find(ctx, func(c models.Category) bool { return c.ID == categoryID }); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
	}
	out := make([]models.Part, 0)
	for _, p := range s.parts.Load(ctx) {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// AddPart appends a part to a category.
func (s *CategoryService) AddPart(ctx context.Context, categoryID string, req PartRequest) (*models.Part, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid part payload")
	}
	siblings, err := s.Parts(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	p := models.Part{
		ID:         models.NewID(),
		CategoryID: categoryID,
		Name:       req.Name,
		Level:      req.Level,
		Position:   len(siblings),
		CreatedAt:  models.NowMillis(),
	}
	s.parts.Upsert(ctx, p, func(x models.Part) bool { return x.ID == p.ID })
	return &p, nil
}

// RemovePart deletes a part.
func (s *CategoryService) RemovePart(ctx context.Context, partID string) error {
	if _, ok := s.parts.Find(ctx, func(p models.Part) bool { return p.ID == partID }); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "part not found")
	}
	s.parts.Remove(ctx, func(p models.Part) bool { return p.ID == partID })
	return nil
}

// ReorderParts persists a manually dragged part sequence within a category.
func (s *CategoryService) ReorderParts(ctx context.Context, categoryID string, req ReorderRequest) ([]models.Part, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}
	siblings, err := s.Parts(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	ordered, err := applyOrder(siblings, req.IDs, func(p models.Part) string { return p.ID })
	if err != nil {
		return nil, err
	}
	for i := range ordered {
		ordered[i].Position = i
	}
	// Rewrite the full parts list with the reordered slice spliced in.
	all := s.parts.Load(ctx)
	byID := make(map[string]models.Part, len(ordered))
	for _, p := range ordered {
		byID[p.ID] = p
	}
	for i := range all {
		if p, ok := byID[all[i].ID]; ok {
			all[i] = p
		}
	}
	s.parts.Save(ctx, all)
	return ordered, nil
}

// applyOrder rearranges items into the sequence given by ids, which must be
// a permutation of the item ids.
func applyOrder[T any](items []T, ids []string, idOf func(T) string) ([]T, error) {
	if len(ids) != len(items) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reorder must include every item exactly once")
	}
	byID := make(map[string]T, len(items))
	for _, item := range items {
		byID[idOf(item)] = item
	}
	out := make([]T, 0, len(items))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown id in reorder")
		}
		delete(byID, id)
		out = append(out, item)
	}
	return out, nil
}

func slugify(slug, name string) string {
	src := slug
	if src == "" {
		src = name
	}
	src = strings.ToLower(strings.TrimSpace(src))
	return strings.ReplaceAll(src, " ", "-")
}
