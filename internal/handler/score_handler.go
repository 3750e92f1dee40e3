package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightclass/results-api/internal/models"
	"github.com/brightclass/results-api/internal/service"
	appErrors "github.com/brightclass/results-api/pkg/errors"
	"github.com/brightclass/results-api/pkg/response"
)

// ScoreHandler exposes working-record score entry endpoints.
type ScoreHandler struct {
	scores *service.ScoreService
}

// NewScoreHandler constructs handler.
func NewScoreHandler(scores *service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

// Save godoc
// @Summary Save one student's score sheet
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.SaveScoresRequest true "Score payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /scores [put]
func (h *ScoreHandler) Save(c *gin.Context) {
	var req service.SaveScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	// Only admins may push a published term back to draft by editing.
	allowReopen := false
	if claims := claimsFromContext(c); claims != nil {
		allowReopen = claims.Role == models.RoleAdmin
	}
	record, err := h.scores.SaveScores(c.Request.Context(), schoolFromContext(c), req, allowReopen)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Completeness godoc
// @Summary Publish-readiness report for a class
// @Tags Scores
// @Produce json
// @Param classname path string true "Class name"
// @Param term query string true "Term"
// @Success 200 {object} response.Envelope
// @Router /scores/classes/{classname}/completeness [get]
func (h *ScoreHandler) Completeness(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	report, err := h.scores.Completeness(c.Request.Context(), schoolFromContext(c), c.Param("classname"), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
