package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/store"
)

type orderFixture struct {
	enrollments *EnrollmentService
	orders      *OrderService
}

func newOrderFixture(t *testing.T) orderFixture {
	t.Helper()
	kv := store.NewMemoryKV()
	return orderFixture{
		enrollments: NewEnrollmentService(kv, nil, nil, nil),
		orders:      NewOrderService(kv, nil, nil, nil),
	}
}

func (f orderFixture) enroll(t *testing.T, paid int64) *models.Enrollment {
	t.Helper()
	e, err := f.enrollments.Create(context.Background(), CreateEnrollmentRequest{
		StudentName:  "Farhan",
		StudentEmail: "far@example.com",
		CourseID:     "course-cfa",
		BatchID:      "batch-far-jan-25",
		BasePrice:    24999,
		OfferPrice:   offerPrice(19999),
		CouponCode:   "DIWALI",
		AmountPaid:   paid,
	})
	require.NoError(t, err)
	return e
}

func TestOrderCreatedFromEnrollmentSnapshot(t *testing.T) {
	f := newOrderFixture(t)
	e := f.enroll(t, 5000)

	o, err := f.orders.CreateForEnrollment(context.Background(), e.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(24999), o.BaseAmount)
	assert.Equal(t, int64(5000), o.Discount)
	assert.Equal(t, int64(1500), o.CouponDiscount)
	assert.Equal(t, int64(18499), o.Payable)
	assert.Equal(t, int64(5000), o.Paid)
	assert.Equal(t, int64(13499), o.Pending)
	assert.Equal(t, models.OrderStatusPartial, o.Status)

	detail, err := f.orders.Get(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, detail.Timeline, 1)
	assert.Equal(t, OrderEventCreated, detail.Timeline[0].Type)
}

func TestMarkPaidCascadesAndIsIdempotent(t *testing.T) {
	f := newOrderFixture(t)
	e := f.enroll(t, 0)
	ctx := context.Background()

	o, err := f.orders.CreateForEnrollment(ctx, e.ID)
	require.NoError(t, err)

	paid, changed, err := f.orders.MarkPaid(ctx, o.ID, MarkPaidRequest{GatewayFee: 499})
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, models.OrderStatusPaid, paid.Status)
	assert.Equal(t, int64(18499), paid.Paid)
	assert.Equal(t, int64(0), paid.Pending)
	assert.Equal(t, int64(18000), paid.NetSettlement)

	linked, err := f.enrollments.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, linked.PaymentStatus)
	assert.Equal(t, models.EnrollmentStatusActive, linked.Status)

	detail, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	eventsBefore := len(detail.Timeline)

	// Settling again changes nothing and appends no event.
	again, changed, err := f.orders.MarkPaid(ctx, o.ID, MarkPaidRequest{})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.OrderStatusPaid, again.Status)

	detail, err = f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Timeline, eventsBefore)
}

func TestPartialPaymentClampsAndCompletes(t *testing.T) {
	f := newOrderFixture(t)
	e := f.enroll(t, 0)
	ctx := context.Background()

	o, err := f.orders.CreateForEnrollment(ctx, e.ID)
	require.NoError(t, err)

	partial, changed, err := f.orders.RecordPartial(ctx, o.ID, PartialPaymentRequest{Amount: 10000})
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, models.OrderStatusPartial, partial.Status)
	assert.Equal(t, int64(8499), partial.Pending)

	// Overshooting the balance clamps to payable and settles the order.
	done, changed, err := f.orders.RecordPartial(ctx, o.ID, PartialPaymentRequest{Amount: 99999})
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, models.OrderStatusPaid, done.Status)
	assert.Equal(t, int64(18499), done.Paid)
	assert.Equal(t, int64(0), done.Pending)

	linked, err := f.enrollments.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), linked.BalanceDue)
	assert.Equal(t, models.EnrollmentStatusActive, linked.Status)
}

func TestRefundCascadesIntoEnrollment(t *testing.T) {
	f := newOrderFixture(t)
	e := f.enroll(t, 0)
	ctx := context.Background()

	o, err := f.orders.CreateForEnrollment(ctx, e.ID)
	require.NoError(t, err)
	_, changed, err := f.orders.MarkPaid(ctx, o.ID, MarkPaidRequest{})
	require.NoError(t, err)
	require.True(t, changed)

	refunded, changed, err := f.orders.Refund(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, models.OrderStatusRefunded, refunded.Status)

	linked, err := f.enrollments.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, linked.PaymentStatus)
	assert.Equal(t, models.EnrollmentStatusRefunded, linked.Status)

	// Refunding twice is a no-op.
	_, changed, err = f.orders.Refund(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestPartialOnTerminalOrderIsNoOp(t *testing.T) {
	f := newOrderFixture(t)
	e := f.enroll(t, 0)
	ctx := context.Background()

	o, err := f.orders.CreateForEnrollment(ctx, e.ID)
	require.NoError(t, err)
	_, changed, err := f.orders.MarkFailed(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, changed)

	out, changed, err := f.orders.RecordPartial(ctx, o.ID, PartialPaymentRequest{Amount: 100})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.OrderStatusFailed, out.Status)
}
