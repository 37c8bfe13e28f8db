package models

// SessionStatus represents the lifecycle of a single class session.
type SessionStatus string

// Possible session statuses. Completed and Cancelled are terminal.
const (
	SessionStatusUpcoming  SessionStatus = "UPCOMING"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusCancelled SessionStatus = "CANCELLED"
)

// Session is a single dated class within a batch. Sessions are held in
// date-ascending order unless the owning batch carries a manual order.
type Session struct {
	ID        string        `json:"id"`
	BatchID   string        `json:"batch_id"`
	Title     string        `json:"title"`
	Date      int64         `json:"date"`
	StartTime string        `json:"start_time,omitempty"`
	EndTime   string        `json:"end_time,omitempty"`
	Status    SessionStatus `json:"status"`
	CreatedAt int64         `json:"created_at"`
}
