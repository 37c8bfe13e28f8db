package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
)

// listQuery carries the common list parameters every page accepts.
type listQuery struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
	From      int64
	To        int64
}

func parseListQuery(c *gin.Context) listQuery {
	q := listQuery{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		q.PageSize = size
	}
	q.From = parseMillis(c.Query("from"))
	q.To = parseMillis(c.Query("to"))
	return q
}

func parseMillis(raw string) int64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// requireConfirm gates destructive actions on an explicit confirm=true.
func requireConfirm(c *gin.Context) error {
	if c.Query("confirm") != "true" {
		return appErrors.ErrConfirmRequired
	}
	return nil
}

// changedMeta annotates transition responses so callers can tell a no-op
// from an applied change.
func changedMeta(changed bool) map[string]interface{} {
	return map[string]interface{}{"changed": changed}
}
