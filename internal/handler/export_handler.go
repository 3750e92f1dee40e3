package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightclass/results-api/internal/service"
	appErrors "github.com/brightclass/results-api/pkg/errors"
	"github.com/brightclass/results-api/pkg/response"
)

// ExportHandler streams published result sheets as downloadable files.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ClassResultSheet godoc
// @Summary Download the published result sheet for a class
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param classname path string true "Class name"
// @Param term query string true "Term"
// @Param academicYear query string false "Academic year"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /exports/classes/{classname} [get]
func (h *ExportHandler) ClassResultSheet(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	format := c.DefaultQuery("format", "csv")
	file, err := h.exports.ClassResultSheet(c.Request.Context(), schoolFromContext(c), c.Param("classname"), term, c.Query("academicYear"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}
