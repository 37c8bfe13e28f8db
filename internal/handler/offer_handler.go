package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/service"
	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
	"github.com/oneinflu/nsaconsole-api/pkg/response"
)

// OfferHandler exposes offer endpoints.
type OfferHandler struct {
	offers *service.OfferService
}

// NewOfferHandler constructs OfferHandler.
func NewOfferHandler(offers *service.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

// List godoc
// @Summary List offers with effective status
// @Tags Offers
// @Produce json
// @Param search query string false "Search by name or code"
// @Param scope query string false "Filter by scope"
// @Param status query string false "Filter by effective status, All passes everything"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /offers [get]
func (h *OfferHandler) List(c *gin.Context) {
	q := parseListQuery(c)
	filter := models.OfferFilter{
		Search:    q.Search,
		Scope:     models.OfferScope(c.Query("scope")),
		Status:    models.OfferStatus(c.Query("status")),
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	offers, pagination, err := h.offers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offers, pagination)
}

// Get godoc
// @Summary Get offer detail
// @Tags Offers
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} response.Envelope
// @Router /offers/{id} [get]
func (h *OfferHandler) Get(c *gin.Context) {
	offer, err := h.offers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offer, nil)
}

// Create godoc
// @Summary Create offer
// @Tags Offers
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /offers [post]
func (h *OfferHandler) Create(c *gin.Context) {
	var req service.OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	offer, err := h.offers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, offer)
}

// Update godoc
// @Summary Update offer
// @Tags Offers
// @Accept json
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} response.Envelope
// @Router /offers/{id} [put]
func (h *OfferHandler) Update(c *gin.Context) {
	var req service.OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	offer, err := h.offers.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offer, nil)
}

// Toggle godoc
// @Summary Toggle offer between Active and Paused
// @Tags Offers
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} response.Envelope
// @Router /offers/{id}/toggle [post]
func (h *OfferHandler) Toggle(c *gin.Context) {
	offer, changed, err := h.offers.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offer, nil, changedMeta(changed))
}

// RecordUse godoc
// @Summary Count a redemption against the offer usage limit
// @Tags Offers
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} response.Envelope
// @Router /offers/{id}/use [post]
func (h *OfferHandler) RecordUse(c *gin.Context) {
	offer, err := h.offers.RecordUse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offer, nil)
}

// Delete godoc
// @Summary Delete offer
// @Tags Offers
// @Param id path string true "Offer ID"
// @Param confirm query bool true "Must be true"
// @Success 204
// @Router /offers/{id} [delete]
func (h *OfferHandler) Delete(c *gin.Context) {
	if err := requireConfirm(c); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.offers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
