package derive

import (
	"github.com/oneinflu/nsaconsole-api/internal/models"
)

// Field names used by the enrollment pricing rules.
const (
	FieldBasePrice     = "base_price"
	FieldOfferPrice    = "offer_price"
	FieldCouponCode    = "coupon_code"
	FieldFinalAmount   = "final_amount"
	FieldAmountPaid    = "amount_paid"
	FieldBalanceDue    = "balance_due"
	FieldPaymentStatus = "payment_status"
	FieldStatus        = "status"
)

// PricingEngine recomputes the enrollment pricing snapshot: final amount,
// balance due, payment status and the payment-driven enrollment status.
type PricingEngine struct {
	coupons *CouponRegistry
	engine  *Engine[models.Enrollment]
}

// NewPricingEngine wires the canonical pricing rules against a coupon
// registry. A nil registry gets the default campaign codes.
func NewPricingEngine(coupons *CouponRegistry) *PricingEngine {
	if coupons == nil {
		coupons = DefaultCoupons()
	}
	p := &PricingEngine{coupons: coupons}
	p.engine = NewEngine[models.Enrollment](
		Rule[models.Enrollment]{
			Target:  FieldFinalAmount,
			Sources: []string{FieldBasePrice, FieldOfferPrice, FieldCouponCode},
			Apply: func(e models.Enrollment) models.Enrollment {
				list := e.BasePrice
				if e.OfferPrice != nil {
					list = *e.OfferPrice
				}
				e.FinalAmount = coupons.Apply(e.CouponCode, list)
				return e
			},
		},
		Rule[models.Enrollment]{
			Target:  FieldBalanceDue,
			Sources: []string{FieldFinalAmount, FieldAmountPaid},
			Apply: func(e models.Enrollment) models.Enrollment {
				due := e.FinalAmount - e.AmountPaid
				if due < 0 {
					due = 0
				}
				e.BalanceDue = due
				return e
			},
		},
		Rule[models.Enrollment]{
			Target:  FieldPaymentStatus,
			Sources: []string{FieldFinalAmount, FieldAmountPaid},
			Apply: func(e models.Enrollment) models.Enrollment {
				switch {
				case e.AmountPaid >= e.FinalAmount:
					e.PaymentStatus = models.PaymentStatusPaid
				case e.AmountPaid > 0:
					e.PaymentStatus = models.PaymentStatusPartial
				default:
					e.PaymentStatus = models.PaymentStatusPending
				}
				return e
			},
		},
		Rule[models.Enrollment]{
			Target:  FieldStatus,
			Sources: []string{FieldPaymentStatus},
			Apply: func(e models.Enrollment) models.Enrollment {
				if !paymentDriven(e.Status) {
					return e
				}
				if e.PaymentStatus == models.PaymentStatusPaid {
					e.Status = models.EnrollmentStatusActive
				} else {
					e.Status = models.EnrollmentStatusPendingPayment
				}
				return e
			},
		},
	)
	return p
}

// Reprice recomputes every derived pricing field.
func (p *PricingEngine) Reprice(e models.Enrollment) models.Enrollment {
	return p.engine.Derive(e)
}

// RepriceKeepStatus recomputes the money fields but leaves the enrollment
// status untouched. Used for the one-shot admin status override.
func (p *PricingEngine) RepriceKeepStatus(e models.Enrollment) models.Enrollment {
	return p.engine.DeriveExcept(e, FieldStatus)
}

// Coupons exposes the registry backing this engine.
func (p *PricingEngine) Coupons() *CouponRegistry {
	return p.coupons
}

// paymentDriven reports whether the enrollment status is controlled by the
// payment state. Statuses set by explicit admin transitions (Trial,
// Cancelled, Refunded, Transferred, Completed, Paused) are left alone.
func paymentDriven(s models.EnrollmentStatus) bool {
	switch s {
	case "", models.EnrollmentStatusActive, models.EnrollmentStatusPendingPayment:
		return true
	}
	return false
}
