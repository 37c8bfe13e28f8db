package transition

import (
	"github.com/oneinflu/nsaconsole-api/internal/models"
)

// Sessions: Upcoming may complete or cancel; both results are terminal.
// Rescheduling keeps Upcoming and is not a transition.
var Sessions = NewTable(map[models.SessionStatus][]models.SessionStatus{
	models.SessionStatusUpcoming: {models.SessionStatusCompleted, models.SessionStatusCancelled},
})

// Enrollments: payment activates, course end completes; trial converts or
// cancels. The admin override path bypasses this table deliberately.
var Enrollments = NewTable(map[models.EnrollmentStatus][]models.EnrollmentStatus{
	models.EnrollmentStatusPendingPayment: {
		models.EnrollmentStatusActive,
		models.EnrollmentStatusCancelled,
	},
	models.EnrollmentStatusActive: {
		models.EnrollmentStatusCompleted,
		models.EnrollmentStatusCancelled,
		models.EnrollmentStatusRefunded,
		models.EnrollmentStatusTransferred,
		models.EnrollmentStatusPaused,
	},
	models.EnrollmentStatusTrial: {
		models.EnrollmentStatusActive,
		models.EnrollmentStatusCancelled,
	},
	models.EnrollmentStatusPaused: {
		models.EnrollmentStatusActive,
		models.EnrollmentStatusCancelled,
	},
})

// Offers: the stored state only toggles between Active and Paused. Expiry
// is derived at read time, never stored.
var Offers = NewTable(map[models.OfferStatus][]models.OfferStatus{
	models.OfferStatusActive: {models.OfferStatusPaused},
	models.OfferStatusPaused: {models.OfferStatusActive},
})

// Orders: pending settles, partials and paids can refund, anything
// non-terminal can fail on cancellation.
var Orders = NewTable(map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending: {
		models.OrderStatusPaid,
		models.OrderStatusPartial,
		models.OrderStatusFailed,
	},
	models.OrderStatusPartial: {
		models.OrderStatusPaid,
		models.OrderStatusRefunded,
		models.OrderStatusFailed,
		models.OrderStatusDisputed,
	},
	models.OrderStatusPaid: {
		models.OrderStatusRefunded,
		models.OrderStatusDisputed,
	},
	models.OrderStatusDisputed: {
		models.OrderStatusRefunded,
		models.OrderStatusFailed,
	},
})

// EffectiveOfferStatus returns the status an offer presents at read time:
// the stored Active/Paused state, or Expired once the validity window has
// elapsed. now is epoch milliseconds.
func EffectiveOfferStatus(o models.Offer, now int64) models.OfferStatus {
	if o.AlwaysOn {
		return o.Status
	}
	if o.ValidUntil > 0 && now > o.ValidUntil {
		return models.OfferStatusExpired
	}
	return o.Status
}
