package models

// Student represents a learner on the admin roster. ProgressPct is a
// derived field recomputed from the session counters.
type Student struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone,omitempty"`
	EnrolledCourseIDs []string `json:"enrolled_course_ids"`
	TotalSessions     int      `json:"total_sessions"`
	CompletedSessions int      `json:"completed_sessions"`
	ProgressPct       int      `json:"progress_pct"`
	LastActiveAt      int64    `json:"last_active_at,omitempty"`
	CreatedAt         int64    `json:"created_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	CourseID  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
