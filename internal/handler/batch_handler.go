package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/service"
	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
	"github.com/oneinflu/nsaconsole-api/pkg/response"
)

// BatchHandler exposes batch and session endpoints.
type BatchHandler struct {
	batches *service.BatchService
}

// NewBatchHandler constructs BatchHandler.
func NewBatchHandler(batches *service.BatchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

type batchStatusRequest struct {
	Status models.BatchStatus `json:"status"`
}

type sessionStatusRequest struct {
	Status models.SessionStatus `json:"status"`
}

// List godoc
// @Summary List batches
// @Tags Batches
// @Produce json
// @Param search query string false "Search by name or course"
// @Param course_id query string false "Filter by course"
// @Param status query string false "Filter by status, All passes everything"
// @Param from query int false "Start date lower bound (millis)"
// @Param to query int false "Start date upper bound (millis)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	q := parseListQuery(c)
	filter := models.BatchFilter{
		Search:    q.Search,
		CourseID:  c.Query("course_id"),
		Status:    models.BatchStatus(c.Query("status")),
		From:      q.From,
		To:        q.To,
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	batches, pagination, err := h.batches.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, pagination)
}

// Get godoc
// @Summary Get batch detail
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	batch, err := h.batches.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Create godoc
// @Summary Create batch
// @Tags Batches
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	var req service.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	batch, err := h.batches.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, batch)
}

// Update godoc
// @Summary Update batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id} [put]
func (h *BatchHandler) Update(c *gin.Context) {
	var req service.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	batch, err := h.batches.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// SetStatus godoc
// @Summary Set batch lifecycle status
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/status [patch]
func (h *BatchHandler) SetStatus(c *gin.Context) {
	var req batchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	batch, err := h.batches.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Delete godoc
// @Summary Delete batch and its sessions
// @Tags Batches
// @Param id path string true "Batch ID"
// @Param confirm query bool true "Must be true"
// @Success 204
// @Router /batches/{id} [delete]
func (h *BatchHandler) Delete(c *gin.Context) {
	if err := requireConfirm(c); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.batches.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Sessions godoc
// @Summary List batch sessions in display order
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/sessions [get]
func (h *BatchHandler) Sessions(c *gin.Context) {
	sessions, err := h.batches.Sessions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// AddSession godoc
// @Summary Add session to batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Success 201 {object} response.Envelope
// @Router /batches/{id}/sessions [post]
func (h *BatchHandler) AddSession(c *gin.Context) {
	var req service.AddSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.batches.AddSession(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// RescheduleSession godoc
// @Summary Reschedule an upcoming session
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/sessions/{sessionId}/reschedule [put]
func (h *BatchHandler) RescheduleSession(c *gin.Context) {
	var req service.RescheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.batches.RescheduleSession(c.Request.Context(), c.Param("id"), c.Param("sessionId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// ReorderSessions godoc
// @Summary Persist a manually dragged session order
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/sessions/reorder [put]
func (h *BatchHandler) ReorderSessions(c *gin.Context) {
	var req service.ReorderSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sessions, err := h.batches.ReorderSessions(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// TransitionSession godoc
// @Summary Mark a session Completed or Cancelled
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/sessions/{sessionId}/status [patch]
func (h *BatchHandler) TransitionSession(c *gin.Context) {
	var req sessionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, changed, err := h.batches.TransitionSession(c.Request.Context(), c.Param("id"), c.Param("sessionId"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil, changedMeta(changed))
}
