package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/service"
	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
	"github.com/oneinflu/nsaconsole-api/pkg/response"
)

// OrderHandler exposes order endpoints.
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderRequest struct {
	EnrollmentID string `json:"enrollment_id"`
}

// List godoc
// @Summary List orders
// @Tags Orders
// @Produce json
// @Param search query string false "Search by student or order number"
// @Param status query string false "Filter by status, All passes everything"
// @Param from query int false "Created-at lower bound (millis)"
// @Param to query int false "Created-at upper bound (millis)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	q := parseListQuery(c)
	filter := models.OrderFilter{
		Search:    q.Search,
		Status:    models.OrderStatus(c.Query("status")),
		From:      q.From,
		To:        q.To,
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	orders, pagination, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders, pagination)
}

// Get godoc
// @Summary Get order detail with timeline
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	detail, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create an order from an enrollment pricing snapshot
// @Tags Orders
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.EnrollmentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "enrollment_id is required"))
		return
	}
	order, err := h.orders.CreateForEnrollment(c.Request.Context(), req.EnrollmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// MarkPaid godoc
// @Summary Settle an order in full
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Router /orders/{id}/paid [post]
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	var req service.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	order, changed, err := h.orders.MarkPaid(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil, changedMeta(changed))
}

// RecordPartial godoc
// @Summary Record a partial payment
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Router /orders/{id}/partial [post]
func (h *OrderHandler) RecordPartial(c *gin.Context) {
	var req service.PartialPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	order, changed, err := h.orders.RecordPartial(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil, changedMeta(changed))
}

// MarkFailed godoc
// @Summary Mark an order payment as failed
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Router /orders/{id}/failed [post]
func (h *OrderHandler) MarkFailed(c *gin.Context) {
	order, changed, err := h.orders.MarkFailed(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil, changedMeta(changed))
}

// MarkDisputed godoc
// @Summary Flag an order as disputed
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Router /orders/{id}/disputed [post]
func (h *OrderHandler) MarkDisputed(c *gin.Context) {
	order, changed, err := h.orders.MarkDisputed(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil, changedMeta(changed))
}

// Refund godoc
// @Summary Refund a paid or disputed order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Router /orders/{id}/refund [post]
func (h *OrderHandler) Refund(c *gin.Context) {
	order, changed, err := h.orders.Refund(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil, changedMeta(changed))
}
