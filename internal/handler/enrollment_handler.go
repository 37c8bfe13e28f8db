package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/service"
	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
	"github.com/oneinflu/nsaconsole-api/pkg/response"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

type enrollmentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status"`
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param search query string false "Search by student name, email or coupon"
// @Param course_id query string false "Filter by course"
// @Param batch_id query string false "Filter by batch"
// @Param status query string false "Filter by status, All passes everything"
// @Param payment_status query string false "Filter by payment status"
// @Param from query int false "Enrolled-at lower bound (millis)"
// @Param to query int false "Enrolled-at upper bound (millis)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	q := parseListQuery(c)
	filter := models.EnrollmentFilter{
		Search:        q.Search,
		CourseID:      c.Query("course_id"),
		BatchID:       c.Query("batch_id"),
		Status:        models.EnrollmentStatus(c.Query("status")),
		PaymentStatus: models.PaymentStatus(c.Query("payment_status")),
		From:          q.From,
		To:            q.To,
		Page:          q.Page,
		PageSize:      q.PageSize,
		SortBy:        q.SortBy,
		SortOrder:     q.SortOrder,
	}
	enrollments, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// Get godoc
// @Summary Get enrollment detail
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.enrollments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Create godoc
// @Summary Create enrollment with derived pricing
// @Tags Enrollments
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// RecordPayment godoc
// @Summary Record a payment against an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/payments [post]
func (h *EnrollmentHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.RecordPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Transition godoc
// @Summary Apply an enrollment status transition
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/transition [post]
func (h *EnrollmentHandler) Transition(c *gin.Context) {
	var req enrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, changed, err := h.enrollments.Transition(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil, changedMeta(changed))
}

// OverrideStatus godoc
// @Summary Set enrollment status directly (admin override)
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/status [put]
func (h *EnrollmentHandler) OverrideStatus(c *gin.Context) {
	var req service.OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.OverrideStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Import godoc
// @Summary Bulk import enrollments from CSV text
// @Tags Enrollments
// @Accept plain
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /enrollments/import [post]
func (h *EnrollmentHandler) Import(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "empty import payload"))
		return
	}
	result, err := h.enrollments.ImportCSV(c.Request.Context(), string(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
