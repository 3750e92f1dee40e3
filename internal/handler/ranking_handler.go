package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightclass/results-api/internal/service"
	appErrors "github.com/brightclass/results-api/pkg/errors"
	"github.com/brightclass/results-api/pkg/response"
)

// RankingHandler exposes class and student ranking endpoints.
type RankingHandler struct {
	rankings *service.RankingService
}

// NewRankingHandler constructs handler.
func NewRankingHandler(rankings *service.RankingService) *RankingHandler {
	return &RankingHandler{rankings: rankings}
}

// ClassRanking godoc
// @Summary Rank a class for a term
// @Tags Rankings
// @Produce json
// @Param classname path string true "Class name"
// @Param term query string true "Term"
// @Param academicYear query string false "Academic year"
// @Param published query bool false "Rank the published snapshots instead of working records"
// @Success 200 {object} response.Envelope
// @Router /rankings/classes/{classname} [get]
func (h *RankingHandler) ClassRanking(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	fromSnapshot := c.Query("published") == "true"
	ranking, err := h.rankings.ClassRanking(c.Request.Context(), schoolFromContext(c), c.Param("classname"), term, c.Query("academicYear"), fromSnapshot)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranking, nil)
}

// StudentStanding godoc
// @Summary One student's class and per-subject positions
// @Tags Rankings
// @Produce json
// @Param studentId path string true "Student ID"
// @Param classname query string true "Class name"
// @Param term query string true "Term"
// @Param academicYear query string false "Academic year"
// @Success 200 {object} response.Envelope
// @Router /rankings/students/{studentId} [get]
func (h *RankingHandler) StudentStanding(c *gin.Context) {
	className := c.Query("classname")
	term := c.Query("term")
	if className == "" || term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classname and term required"))
		return
	}
	standing, err := h.rankings.StudentStanding(c.Request.Context(), schoolFromContext(c), c.Param("studentId"), className, term, c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, standing, nil)
}
