package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/store"
)

func newPermissionService(t *testing.T) *PermissionService {
	t.Helper()
	return NewPermissionService(store.NewMemoryKV(), nil, nil)
}

func TestRoleCreateValidatesPermissions(t *testing.T) {
	svc := newPermissionService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, RoleRequest{
		Name:        "Batch Ops",
		Permissions: []string{models.PermBatchesManage, models.PermEnrollmentsManage},
	})
	require.NoError(t, err)
	assert.Len(t, r.Permissions, 2)

	_, err = svc.Create(ctx, RoleRequest{
		Name:        "Broken",
		Permissions: []string{"payments:manage"},
	})
	require.Error(t, err)
}

func TestRoleNameConflict(t *testing.T) {
	svc := newPermissionService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, RoleRequest{Name: "Admin"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, RoleRequest{Name: "Admin"})
	require.Error(t, err)
}

func TestRoleMembershipIsIdempotent(t *testing.T) {
	svc := newPermissionService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, RoleRequest{Name: "Support"})
	require.NoError(t, err)

	out, err := svc.AddMember(ctx, r.ID, MemberRequest{Email: "ops@x.com"})
	require.NoError(t, err)
	require.Len(t, out.Members, 1)

	out, err = svc.AddMember(ctx, r.ID, MemberRequest{Email: "ops@x.com"})
	require.NoError(t, err)
	assert.Len(t, out.Members, 1)

	out, err = svc.RemoveMember(ctx, r.ID, MemberRequest{Email: "ops@x.com"})
	require.NoError(t, err)
	assert.Empty(t, out.Members)
}
