package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/store"
	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
)

// NamespaceRoles is the store key for the role list.
const NamespaceRoles = "roles"

// RoleRequest describes role creation and edit.
type RoleRequest struct {
	Name        string   `json:"name" validate:"required"`
	Permissions []string `json:"permissions"`
}

// MemberRequest adds or removes an admin user on a role.
type MemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PermissionService owns the permissions page view-model: roles, their
// permission sets and their members.
type PermissionService struct {
	roles     *store.Collection[models.Role]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPermissionService constructs PermissionService.
func NewPermissionService(kv store.KV, validate *validator.Validate, logger *zap.Logger) *PermissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionService{
		roles:     store.NewCollection[models.Role](kv, NamespaceRoles, nil, logger),
		validator: validate,
		logger:    logger,
	}
}

// List returns every role.
func (s *PermissionService) List(ctx context.Context) ([]models.Role, error) {
	return s.roles.Load(ctx), nil
}

// Get returns a single role.
func (s *PermissionService) Get(ctx context.Context, id string) (*models.Role, error) {
	r, ok := s.roles.Find(ctx, func(r models.Role) bool { return r.ID == id })
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "role not found")
	}
	return &r, nil
}

// Create registers a role with a validated permission set.
func (s *PermissionService) Create(ctx context.Context, req RoleRequest) (*models.Role, error) {
	if err := s.validateRole(req); err != nil {
		return nil, err
	}
	if _, ok := s.roles.Find(ctx, func(r models.Role) bool { return r.Name == req.Name }); ok {
		return nil, appErrors.Clone(appErrors.ErrConflict, "role name already exists")
	}
	r := models.Role{
		ID:          models.NewID(),
		Name:        req.Name,
		Permissions: req.Permissions,
		Members:     []string{},
		CreatedAt:   models.NowMillis(),
	}
	s.roles.Upsert(ctx, r, func(x models.Role) bool { return x.ID == r.ID })
	return &r, nil
}

// Update replaces a role's name and permission set.
func (s *PermissionService) Update(ctx context.Context, id string, req RoleRequest) (*models.Role, error) {
	if err := s.validateRole(req); err != nil {
		return nil, err
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *r
	updated.Name = req.Name
	updated.Permissions = req.Permissions
	s.roles.Upsert(ctx, updated, func(x models.Role) bool { return x.ID == id })
	return &updated, nil
}

// Delete removes a role.
func (s *PermissionService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	s.roles.Remove(ctx, func(r models.Role) bool { return r.ID == id })
	return nil
}

// AddMember puts an admin user on a role. Adding an existing member is a
// no-op.
func (s *PermissionService) AddMember(ctx context.Context, id string, req MemberRequest) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid member payload")
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, m := range r.Members {
		if m == req.Email {
			return r, nil
		}
	}
	updated := *r
	updated.Members = append(append([]string{}, r.Members...), req.Email)
	s.roles.Upsert(ctx, updated, func(x models.Role) bool { return x.ID == id })
	return &updated, nil
}

// RemoveMember takes an admin user off a role.
func (s *PermissionService) RemoveMember(ctx context.Context, id string, req MemberRequest) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid member payload")
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	kept := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		if m != req.Email {
			kept = append(kept, m)
		}
	}
	updated := *r
	updated.Members = kept
	s.roles.Upsert(ctx, updated, func(x models.Role) bool { return x.ID == id })
	return &updated, nil
}

func (s *PermissionService) validateRole(req RoleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}
	known := make(map[string]struct{}, len(models.KnownPermissions))
	for _, p := range models.KnownPermissions {
		known[p] = struct{}{}
	}
	for _, p := range req.Permissions {
		if _, ok := known[p]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, "unknown permission "+p)
		}
	}
	return nil
}
