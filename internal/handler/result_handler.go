package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightclass/results-api/internal/models"
	"github.com/brightclass/results-api/internal/service"
	appErrors "github.com/brightclass/results-api/pkg/errors"
	"github.com/brightclass/results-api/pkg/response"
)

// ResultHandler exposes publication and published-result endpoints.
type ResultHandler struct {
	publications *service.PublicationService
}

// NewResultHandler constructs handler.
func NewResultHandler(publications *service.PublicationService) *ResultHandler {
	return &ResultHandler{publications: publications}
}

// Publish godoc
// @Summary Publish a class's results for a term
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body service.PublishRequest true "Publish scope"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /results/publish [post]
func (h *ResultHandler) Publish(c *gin.Context) {
	var req service.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil && req.TeacherID == "" {
		req.TeacherID = claims.UserID
		req.TeacherName = claims.FullName
	}
	result, err := h.publications.PublishClass(c.Request.Context(), schoolFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Unpublish godoc
// @Summary Reopen a published class for score edits
// @Tags Results
// @Produce json
// @Param classname query string true "Class name"
// @Param term query string true "Term"
// @Param academicYear query string false "Academic year"
// @Success 200 {object} response.Envelope
// @Router /results/unpublish [post]
func (h *ResultHandler) Unpublish(c *gin.Context) {
	className := c.Query("classname")
	term := c.Query("term")
	if className == "" || term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classname and term required"))
		return
	}
	if err := h.publications.Unpublish(c.Request.Context(), schoolFromContext(c), className, term, c.Query("academicYear")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "unpublished"}, nil)
}

// StudentResult godoc
// @Summary Fetch one student's published result
// @Tags Results
// @Produce json
// @Param studentId path string true "Student ID"
// @Param term query string false "Term token (year::term), defaults to latest"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /results/students/{studentId} [get]
func (h *ResultHandler) StudentResult(c *gin.Context) {
	snapshot, err := h.publications.StudentResult(c.Request.Context(), schoolFromContext(c), c.Param("studentId"), c.Query("term"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// StudentTerms godoc
// @Summary List a student's published terms
// @Tags Results
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /results/students/{studentId}/terms [get]
func (h *ResultHandler) StudentTerms(c *gin.Context) {
	terms, err := h.publications.PublishedTerms(c.Request.Context(), schoolFromContext(c), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, terms, nil)
}

// ClassResults godoc
// @Summary List a class's published result sheets
// @Tags Results
// @Produce json
// @Param classname path string true "Class name"
// @Param term query string true "Term"
// @Param academicYear query string false "Academic year"
// @Success 200 {object} response.Envelope
// @Router /results/classes/{classname} [get]
func (h *ResultHandler) ClassResults(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	snapshots, err := h.publications.ClassSnapshots(c.Request.Context(), schoolFromContext(c), c.Param("classname"), term, c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: 1, PageSize: len(snapshots), TotalCount: len(snapshots)}
	response.JSON(c, http.StatusOK, snapshots, pagination)
}

// Statuses godoc
// @Summary Publication dashboard for a term
// @Tags Results
// @Produce json
// @Param term query string true "Term"
// @Param academicYear query string false "Academic year"
// @Success 200 {object} response.Envelope
// @Router /results/status [get]
func (h *ResultHandler) Statuses(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	statuses, err := h.publications.Statuses(c.Request.Context(), schoolFromContext(c), term, c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, statuses, nil)
}
