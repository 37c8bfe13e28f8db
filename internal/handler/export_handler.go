package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oneinflu/nsaconsole-api/internal/service"
	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
	"github.com/oneinflu/nsaconsole-api/pkg/response"
)

// ExportHandler streams table exports as CSV or PDF downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export godoc
// @Summary Export a table as CSV or PDF
// @Tags Exports
// @Produce octet-stream
// @Param table path string true "One of enrollments, orders, batches, students"
// @Param format query string false "csv (default) or pdf"
// @Success 200
// @Router /exports/{table} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatCSV)

	var (
		file *service.ExportFile
		err  error
	)
	ctx := c.Request.Context()
	switch c.Param("table") {
	case "enrollments":
		file, err = h.exports.Enrollments(ctx, format)
	case "orders":
		file, err = h.exports.Orders(ctx, format)
	case "batches":
		file, err = h.exports.Batches(ctx, format)
	case "students":
		file, err = h.exports.Students(ctx, format)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown export table"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Bytes)
}
