package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightclass/results-api/internal/service"
	appErrors "github.com/brightclass/results-api/pkg/errors"
	"github.com/brightclass/results-api/pkg/response"
)

// ConfigHandler exposes tenant grading, assessment and subject
// configuration endpoints.
type ConfigHandler struct {
	settings *service.SettingsService
	subjects *service.SubjectConfigService
}

// NewConfigHandler constructs handler.
func NewConfigHandler(settings *service.SettingsService, subjects *service.SubjectConfigService) *ConfigHandler {
	return &ConfigHandler{settings: settings, subjects: subjects}
}

// School godoc
// @Summary Tenant settings record
// @Tags Config
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /config/school [get]
func (h *ConfigHandler) School(c *gin.Context) {
	school, err := h.settings.School(c.Request.Context(), schoolFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// SaveThresholds godoc
// @Summary Set grade thresholds
// @Tags Config
// @Accept json
// @Produce json
// @Param payload body service.GradeThresholdsRequest true "Thresholds"
// @Success 200 {object} response.Envelope
// @Router /config/thresholds [put]
func (h *ConfigHandler) SaveThresholds(c *gin.Context) {
	var req service.GradeThresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	thresholds, err := h.settings.SaveGradeThresholds(c.Request.Context(), schoolFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, thresholds, nil)
}

// Assessment godoc
// @Summary Exam setup for one level
// @Tags Config
// @Produce json
// @Param level path string true "Level (primary, jss, ss)"
// @Success 200 {object} response.Envelope
// @Router /config/assessment/{level} [get]
func (h *ConfigHandler) Assessment(c *gin.Context) {
	config, err := h.settings.AssessmentConfig(c.Request.Context(), schoolFromContext(c), c.Param("level"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, config, nil)
}

// SaveAssessment godoc
// @Summary Set exam setup for one level
// @Tags Config
// @Accept json
// @Produce json
// @Param payload body service.AssessmentConfigRequest true "Assessment config"
// @Success 200 {object} response.Envelope
// @Router /config/assessment [put]
func (h *ConfigHandler) SaveAssessment(c *gin.Context) {
	var req service.AssessmentConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	config, err := h.settings.SaveAssessmentConfig(c.Request.Context(), schoolFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, config, nil)
}

// SubjectConfig godoc
// @Summary Subject buckets for a class
// @Tags Config
// @Produce json
// @Param classname path string true "Class name"
// @Success 200 {object} response.Envelope
// @Router /config/subjects/{classname} [get]
func (h *ConfigHandler) SubjectConfig(c *gin.Context) {
	config, err := h.subjects.Get(c.Request.Context(), schoolFromContext(c), c.Param("classname"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if config == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no subject configuration for this class"))
		return
	}
	response.JSON(c, http.StatusOK, config, nil)
}

// SaveSubjectConfig godoc
// @Summary Set subject buckets for a class
// @Tags Config
// @Accept json
// @Produce json
// @Param payload body service.SaveSubjectConfigRequest true "Subject config"
// @Success 200 {object} response.Envelope
// @Router /config/subjects [put]
func (h *ConfigHandler) SaveSubjectConfig(c *gin.Context) {
	var req service.SaveSubjectConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	config, err := h.subjects.Save(c.Request.Context(), schoolFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, config, nil)
}

// DeleteSubjectConfig godoc
// @Summary Remove subject buckets for a class
// @Tags Config
// @Produce json
// @Param classname path string true "Class name"
// @Success 204
// @Router /config/subjects/{classname} [delete]
func (h *ConfigHandler) DeleteSubjectConfig(c *gin.Context) {
	if err := h.subjects.Delete(c.Request.Context(), schoolFromContext(c), c.Param("classname")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SyncSubjects godoc
// @Summary Rebuild student subject lists after a config change
// @Tags Config
// @Produce json
// @Param classname path string true "Class name"
// @Param term query string true "Term"
// @Success 200 {object} response.Envelope
// @Router /config/subjects/{classname}/sync [post]
func (h *ConfigHandler) SyncSubjects(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	skipped, err := h.subjects.SyncStudentSubjects(c.Request.Context(), schoolFromContext(c), c.Param("classname"), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"skipped_students": skipped}, nil)
}
