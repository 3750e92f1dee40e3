package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightclass/results-api/internal/service"
	appErrors "github.com/brightclass/results-api/pkg/errors"
	"github.com/brightclass/results-api/pkg/response"
)

// RolloverHandler exposes term-transition and promotion endpoints.
type RolloverHandler struct {
	rollovers *service.RolloverService
}

// NewRolloverHandler constructs handler.
func NewRolloverHandler(rollovers *service.RolloverService) *RolloverHandler {
	return &RolloverHandler{rollovers: rollovers}
}

// Rollover godoc
// @Summary Move the school to a new term
// @Tags Rollover
// @Accept json
// @Produce json
// @Param payload body service.RolloverRequest true "Target term"
// @Success 200 {object} response.Envelope
// @Router /rollover [post]
func (h *RolloverHandler) Rollover(c *gin.Context) {
	var req service.RolloverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.rollovers.Rollover(c.Request.Context(), schoolFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Promote godoc
// @Summary Apply year-end promotion decisions
// @Tags Rollover
// @Accept json
// @Produce json
// @Param payload body []service.PromotionDecision true "Decisions"
// @Success 200 {object} response.Envelope
// @Router /rollover/promotions [post]
func (h *RolloverHandler) Promote(c *gin.Context) {
	var decisions []service.PromotionDecision
	if err := c.ShouldBindJSON(&decisions); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.rollovers.Promote(c.Request.Context(), schoolFromContext(c), decisions)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
