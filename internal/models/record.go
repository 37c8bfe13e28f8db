package models

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a unique record identifier. IDs are generated once at
// creation and never reused.
func NewID() string {
	return uuid.NewString()
}

// NowMillis returns the current time as epoch milliseconds, the timestamp
// representation used by every stored record.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
