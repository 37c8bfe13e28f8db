package models

// PaymentStatus represents the derived payment state of an enrollment or order.
type PaymentStatus string

// Possible payment statuses.
const (
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusPartial  PaymentStatus = "PARTIAL"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive         EnrollmentStatus = "ACTIVE"
	EnrollmentStatusPendingPayment EnrollmentStatus = "PENDING_PAYMENT"
	EnrollmentStatusTrial          EnrollmentStatus = "TRIAL"
	EnrollmentStatusCancelled      EnrollmentStatus = "CANCELLED"
	EnrollmentStatusRefunded       EnrollmentStatus = "REFUNDED"
	EnrollmentStatusTransferred    EnrollmentStatus = "TRANSFERRED"
	EnrollmentStatusCompleted      EnrollmentStatus = "COMPLETED"
	EnrollmentStatusPaused         EnrollmentStatus = "PAUSED"
)

// ValidEnrollmentStatus reports whether s is a known enrollment status.
func ValidEnrollmentStatus(s EnrollmentStatus) bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusPendingPayment, EnrollmentStatusTrial,
		EnrollmentStatusCancelled, EnrollmentStatusRefunded, EnrollmentStatusTransferred,
		EnrollmentStatusCompleted, EnrollmentStatusPaused:
		return true
	}
	return false
}

// Enrollment captures a student's registration to a course batch together
// with its pricing snapshot. FinalAmount, BalanceDue, PaymentStatus and
// Status are derived fields; they are recomputed from the source fields and
// never edited independently. Enrollments are historical and never deleted.
type Enrollment struct {
	ID           string `json:"id"`
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
	StudentPhone string `json:"student_phone,omitempty"`
	CourseID     string `json:"course_id"`
	BatchID      string `json:"batch_id"`

	BasePrice  int64  `json:"base_price"`
	OfferPrice *int64 `json:"offer_price,omitempty"`
	CouponCode string `json:"coupon_code,omitempty"`

	FinalAmount int64 `json:"final_amount"`
	AmountPaid  int64 `json:"amount_paid"`
	BalanceDue  int64 `json:"balance_due"`

	PaymentStatus PaymentStatus    `json:"payment_status"`
	Status        EnrollmentStatus `json:"status"`

	EnrolledAt int64  `json:"enrolled_at"`
	Notes      string `json:"notes,omitempty"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	Search        string
	CourseID      string
	BatchID       string
	Status        EnrollmentStatus
	PaymentStatus PaymentStatus
	From          int64
	To            int64
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
