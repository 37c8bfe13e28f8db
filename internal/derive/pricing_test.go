package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneinflu/nsaconsole-api/internal/models"
)

func int64Ptr(v int64) *int64 { return &v }

func TestRepriceDiwaliScenario(t *testing.T) {
	p := NewPricingEngine(nil)

	e := models.Enrollment{
		BasePrice:  24999,
		OfferPrice: int64Ptr(19999),
		CouponCode: "DIWALI",
		AmountPaid: 5000,
	}
	out := p.Reprice(e)

	assert.Equal(t, int64(18499), out.FinalAmount)
	assert.Equal(t, int64(13499), out.BalanceDue)
	assert.Equal(t, models.PaymentStatusPartial, out.PaymentStatus)
	assert.Equal(t, models.EnrollmentStatusPendingPayment, out.Status)
}

func TestRepriceFullPaymentActivates(t *testing.T) {
	p := NewPricingEngine(nil)

	e := models.Enrollment{
		BasePrice:  24999,
		OfferPrice: int64Ptr(19999),
		CouponCode: "DIWALI",
		AmountPaid: 18499,
	}
	out := p.Reprice(e)

	assert.Equal(t, models.PaymentStatusPaid, out.PaymentStatus)
	assert.Equal(t, models.EnrollmentStatusActive, out.Status)
	assert.Equal(t, int64(0), out.BalanceDue)
}

func TestRepriceOverpaymentClampsBalance(t *testing.T) {
	p := NewPricingEngine(nil)

	out := p.Reprice(models.Enrollment{BasePrice: 1000, AmountPaid: 5000})
	assert.Equal(t, int64(0), out.BalanceDue)
	assert.Equal(t, models.PaymentStatusPaid, out.PaymentStatus)
}

func TestRepriceUnknownCouponIsNoop(t *testing.T) {
	p := NewPricingEngine(nil)

	out := p.Reprice(models.Enrollment{BasePrice: 10000, CouponCode: "NOPE"})
	assert.Equal(t, int64(10000), out.FinalAmount)
}

func TestRepriceUsesBasePriceWithoutOffer(t *testing.T) {
	p := NewPricingEngine(nil)

	out := p.Reprice(models.Enrollment{BasePrice: 24999, CouponCode: "DIWALI"})
	assert.Equal(t, int64(23499), out.FinalAmount)
}

func TestRepriceLeavesAdminStatusesAlone(t *testing.T) {
	p := NewPricingEngine(nil)

	out := p.Reprice(models.Enrollment{BasePrice: 1000, AmountPaid: 1000, Status: models.EnrollmentStatusCancelled})
	assert.Equal(t, models.PaymentStatusPaid, out.PaymentStatus)
	assert.Equal(t, models.EnrollmentStatusCancelled, out.Status)
}

func TestRepriceKeepStatusSkipsStatusRule(t *testing.T) {
	p := NewPricingEngine(nil)

	e := models.Enrollment{BasePrice: 1000, AmountPaid: 0, Status: models.EnrollmentStatusActive}
	out := p.RepriceKeepStatus(e)

	// Money fields recomputed, admin-chosen status preserved.
	assert.Equal(t, int64(1000), out.BalanceDue)
	assert.Equal(t, models.PaymentStatusPending, out.PaymentStatus)
	assert.Equal(t, models.EnrollmentStatusActive, out.Status)
}

func TestCouponRegistry(t *testing.T) {
	r := NewCouponRegistry()
	r.Register("save10", Percent(10))

	assert.Equal(t, int64(900), r.Apply("SAVE10", 1000))
	assert.Equal(t, int64(900), r.Apply(" save10 ", 1000))
	assert.Equal(t, int64(1000), r.Apply("", 1000))
	assert.Equal(t, int64(1000), r.Apply("UNKNOWN", 1000))
}

func TestFlatDiscountClampsAtZero(t *testing.T) {
	d := Flat(1500)
	assert.Equal(t, int64(0), d(1000))
	assert.Equal(t, int64(500), d(2000))
}

func TestPercentBounds(t *testing.T) {
	assert.Equal(t, int64(1000), Percent(0)(1000))
	assert.Equal(t, int64(0), Percent(100)(1000))
	assert.Equal(t, int64(750), Percent(25)(1000))
}

func TestEngineDeriveChangedChainsThroughTargets(t *testing.T) {
	p := NewPricingEngine(nil)

	e := models.Enrollment{BasePrice: 24999, OfferPrice: int64Ptr(19999), CouponCode: "DIWALI", AmountPaid: 5000}
	out := p.engine.DeriveChanged(e, FieldBasePrice)

	// base_price feeds final_amount, which feeds balance_due and the
	// statuses; all of them must have run.
	require.Equal(t, int64(18499), out.FinalAmount)
	assert.Equal(t, int64(13499), out.BalanceDue)
	assert.Equal(t, models.PaymentStatusPartial, out.PaymentStatus)
}

func TestEngineDeriveChangedSkipsUnrelatedRules(t *testing.T) {
	p := NewPricingEngine(nil)

	e := models.Enrollment{BasePrice: 1000, AmountPaid: 400, FinalAmount: 999}
	out := p.engine.DeriveChanged(e, FieldAmountPaid)

	// amount_paid does not feed final_amount, so the stale value stays.
	assert.Equal(t, int64(999), out.FinalAmount)
	assert.Equal(t, int64(599), out.BalanceDue)
}
