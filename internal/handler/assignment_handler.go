package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightclass/results-api/internal/service"
	appErrors "github.com/brightclass/results-api/pkg/errors"
	"github.com/brightclass/results-api/pkg/response"
)

// AssignmentHandler exposes teacher-class assignment endpoints.
type AssignmentHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(assignments *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// Assign godoc
// @Summary Assign a teacher to a class for a term
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.AssignClassRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req service.AssignClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.assignments.Assign(c.Request.Context(), schoolFromContext(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"status": "assigned"})
}

// List godoc
// @Summary List assignments for a term
// @Tags Assignments
// @Produce json
// @Param term query string true "Term"
// @Param academicYear query string false "Academic year"
// @Param teacherId query string false "Filter by teacher"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	assignments, err := h.assignments.List(c.Request.Context(), schoolFromContext(c), term, c.Query("academicYear"), c.Query("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Remove godoc
// @Summary Remove a class assignment
// @Tags Assignments
// @Produce json
// @Param classname path string true "Class name"
// @Param term query string true "Term"
// @Param academicYear query string false "Academic year"
// @Success 204
// @Router /assignments/{classname} [delete]
func (h *AssignmentHandler) Remove(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	if err := h.assignments.Remove(c.Request.Context(), schoolFromContext(c), c.Param("classname"), term, c.Query("academicYear")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
