package models

// BatchStatus represents the lifecycle of a batch.
type BatchStatus string

// Possible batch statuses.
const (
	BatchStatusDraft     BatchStatus = "DRAFT"
	BatchStatusEnrolling BatchStatus = "ENROLLING"
	BatchStatusActive    BatchStatus = "ACTIVE"
	BatchStatusPaused    BatchStatus = "PAUSED"
	BatchStatusCompleted BatchStatus = "COMPLETED"
	BatchStatusCancelled BatchStatus = "CANCELLED"
)

// ValidBatchStatus reports whether s is a known batch status.
func ValidBatchStatus(s BatchStatus) bool {
	switch s {
	case BatchStatusDraft, BatchStatusEnrolling, BatchStatusActive,
		BatchStatusPaused, BatchStatusCompleted, BatchStatusCancelled:
		return true
	}
	return false
}

// Batch is a scheduled run of a course with its own roster of sessions.
type Batch struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	CourseID string      `json:"course_id"`
	StartsAt int64       `json:"starts_at"`
	EndsAt   int64       `json:"ends_at"`
	Weekdays []string    `json:"weekdays"`
	Capacity *int        `json:"capacity,omitempty"`
	Status   BatchStatus `json:"status"`
	// ManualSessionOrder marks that an admin dragged sessions into an
	// explicit sequence; it is cleared by the next date-changing edit.
	ManualSessionOrder bool  `json:"manual_session_order"`
	CreatedAt          int64 `json:"created_at"`
}

// BatchFilter provides filters for listing batches.
type BatchFilter struct {
	Search    string
	CourseID  string
	Status    BatchStatus
	From      int64
	To        int64
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
