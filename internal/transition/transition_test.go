package transition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oneinflu/nsaconsole-api/internal/models"
)

func TestSessionMarkCompleted(t *testing.T) {
	got, ok := Sessions.Apply(models.SessionStatusUpcoming, models.SessionStatusCompleted)
	assert.True(t, ok)
	assert.Equal(t, models.SessionStatusCompleted, got)
}

func TestCancelledSessionRejectsMarkCompleted(t *testing.T) {
	got, ok := Sessions.Apply(models.SessionStatusCancelled, models.SessionStatusCompleted)
	assert.False(t, ok)
	assert.Equal(t, models.SessionStatusCancelled, got)
}

func TestSessionTerminalStates(t *testing.T) {
	assert.True(t, Sessions.Terminal(models.SessionStatusCompleted))
	assert.True(t, Sessions.Terminal(models.SessionStatusCancelled))
	assert.False(t, Sessions.Terminal(models.SessionStatusUpcoming))
}

func TestEnrollmentActivationPath(t *testing.T) {
	got, ok := Enrollments.Apply(models.EnrollmentStatusPendingPayment, models.EnrollmentStatusActive)
	assert.True(t, ok)
	assert.Equal(t, models.EnrollmentStatusActive, got)

	got, ok = Enrollments.Apply(got, models.EnrollmentStatusCompleted)
	assert.True(t, ok)
	assert.Equal(t, models.EnrollmentStatusCompleted, got)
}

func TestEnrollmentCancelledIsTerminal(t *testing.T) {
	_, ok := Enrollments.Apply(models.EnrollmentStatusCancelled, models.EnrollmentStatusActive)
	assert.False(t, ok)
}

func TestTrialConverts(t *testing.T) {
	_, ok := Enrollments.Apply(models.EnrollmentStatusTrial, models.EnrollmentStatusActive)
	assert.True(t, ok)
	_, ok = Enrollments.Apply(models.EnrollmentStatusTrial, models.EnrollmentStatusCompleted)
	assert.False(t, ok)
}

func TestOfferToggleIsReversible(t *testing.T) {
	got, ok := Offers.Apply(models.OfferStatusActive, models.OfferStatusPaused)
	assert.True(t, ok)
	got, ok = Offers.Apply(got, models.OfferStatusActive)
	assert.True(t, ok)
	assert.Equal(t, models.OfferStatusActive, got)
}

func TestOfferExpiredIsNeverStored(t *testing.T) {
	_, ok := Offers.Apply(models.OfferStatusActive, models.OfferStatusExpired)
	assert.False(t, ok)
}

func TestOrderIdempotentRequest(t *testing.T) {
	// Re-applying the current status is a no-op so callers skip the
	// timeline append.
	got, ok := Orders.Apply(models.OrderStatusPaid, models.OrderStatusPaid)
	assert.False(t, ok)
	assert.Equal(t, models.OrderStatusPaid, got)
}

func TestOrderRefundPaths(t *testing.T) {
	_, ok := Orders.Apply(models.OrderStatusPaid, models.OrderStatusRefunded)
	assert.True(t, ok)
	_, ok = Orders.Apply(models.OrderStatusPartial, models.OrderStatusRefunded)
	assert.True(t, ok)
	_, ok = Orders.Apply(models.OrderStatusPending, models.OrderStatusRefunded)
	assert.False(t, ok)
}

func TestEffectiveOfferStatus(t *testing.T) {
	now := int64(1_700_000_000_000)

	live := models.Offer{Status: models.OfferStatusActive, ValidUntil: now + 1000}
	assert.Equal(t, models.OfferStatusActive, EffectiveOfferStatus(live, now))

	lapsed := models.Offer{Status: models.OfferStatusActive, ValidUntil: now - 1000}
	assert.Equal(t, models.OfferStatusExpired, EffectiveOfferStatus(lapsed, now))

	pausedLapsed := models.Offer{Status: models.OfferStatusPaused, ValidUntil: now - 1000}
	assert.Equal(t, models.OfferStatusExpired, EffectiveOfferStatus(pausedLapsed, now))

	evergreen := models.Offer{Status: models.OfferStatusActive, AlwaysOn: true, ValidUntil: now - 1000}
	assert.Equal(t, models.OfferStatusActive, EffectiveOfferStatus(evergreen, now))
}
