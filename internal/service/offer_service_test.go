package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/store"
)

func flat(v int64) *int64 { return &v }
func pct(v int) *int      { return &v }
func limit(v int) *int    { return &v }

func newOfferService(t *testing.T, now int64) *OfferService {
	t.Helper()
	return NewOfferService(store.NewMemoryKV(), nil, nil, func() int64 { return now })
}

func TestOfferCreateNormalizesCode(t *testing.T) {
	svc := newOfferService(t, 1000)

	o, err := svc.Create(context.Background(), OfferRequest{
		Name:         "Diwali Sale",
		Code:         " diwali ",
		FlatDiscount: flat(1500),
		Scope:        models.OfferScopeAll,
		AlwaysOn:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "DIWALI", o.Code)
	assert.Equal(t, models.OfferStatusActive, o.Status)
}

func TestOfferRejectsAmbiguousDiscount(t *testing.T) {
	svc := newOfferService(t, 1000)
	ctx := context.Background()

	_, err := svc.Create(ctx, OfferRequest{
		Name:     "no discount",
		Scope:    models.OfferScopeAll,
		AlwaysOn: true,
	})
	require.Error(t, err)

	_, err = svc.Create(ctx, OfferRequest{
		Name:            "both discounts",
		FlatDiscount:    flat(100),
		PercentDiscount: pct(10),
		Scope:           models.OfferScopeAll,
		AlwaysOn:        true,
	})
	require.Error(t, err)

	_, err = svc.Create(ctx, OfferRequest{
		Name:         "scoped without ids",
		FlatDiscount: flat(100),
		Scope:        models.OfferScopeCourse,
		AlwaysOn:     true,
	})
	require.Error(t, err)
}

func TestOfferToggleFlipsActivePaused(t *testing.T) {
	svc := newOfferService(t, 1000)
	ctx := context.Background()

	o, err := svc.Create(ctx, OfferRequest{
		Name:         "sale",
		FlatDiscount: flat(100),
		Scope:        models.OfferScopeAll,
		AlwaysOn:     true,
	})
	require.NoError(t, err)

	out, changed, err := svc.Toggle(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, models.OfferStatusPaused, out.Status)

	out, changed, err = svc.Toggle(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, models.OfferStatusActive, out.Status)
}

func TestExpiredOfferPresentsExpiredAndRejectsToggle(t *testing.T) {
	svc := newOfferService(t, 5000)
	ctx := context.Background()

	o, err := svc.Create(ctx, OfferRequest{
		Name:         "lapsed",
		FlatDiscount: flat(100),
		Scope:        models.OfferScopeAll,
		ValidFrom:    1000,
		ValidUntil:   2000,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusExpired, got.Status)

	out, changed, err := svc.Toggle(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.OfferStatusExpired, out.Status)

	// The stored record keeps its Active state: expiry is never written back.
	assert.Equal(t, 1, svc.CountExpired(ctx))
}

func TestAlwaysOnOfferNeverExpires(t *testing.T) {
	svc := newOfferService(t, 999999999)
	ctx := context.Background()

	o, err := svc.Create(ctx, OfferRequest{
		Name:         "evergreen",
		FlatDiscount: flat(100),
		Scope:        models.OfferScopeAll,
		AlwaysOn:     true,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusActive, got.Status)
	assert.Equal(t, 0, svc.CountExpired(ctx))
}

func TestOfferUsageLimit(t *testing.T) {
	svc := newOfferService(t, 1000)
	ctx := context.Background()

	o, err := svc.Create(ctx, OfferRequest{
		Name:         "limited",
		FlatDiscount: flat(100),
		Scope:        models.OfferScopeAll,
		AlwaysOn:     true,
		UsageLimit:   limit(2),
	})
	require.NoError(t, err)

	_, err = svc.RecordUse(ctx, o.ID)
	require.NoError(t, err)
	used, err := svc.RecordUse(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, used.UsedCount)

	_, err = svc.RecordUse(ctx, o.ID)
	require.Error(t, err)
}
