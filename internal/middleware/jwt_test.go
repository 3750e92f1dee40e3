package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightclass/results-api/internal/models"
	"github.com/brightclass/results-api/internal/service"
)

func TestJWTSetsClaimsAndSchoolKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService("test-secret", time.Hour)
	token, _, err := tokens.IssueToken("usr-1", "sch-1", models.RoleTeacher, "Ada")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/results", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c.Request = req

	JWT(tokens)(c)
	assert.False(t, c.IsAborted())

	claims, ok := c.Get(ContextUserKey)
	require.True(t, ok)
	assert.Equal(t, "usr-1", claims.(*models.AuthClaims).UserID)
	// The tenant id is mirrored as a plain string for the request logger.
	assert.Equal(t, "sch-1", c.GetString(ContextSchoolKey))
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService("test-secret", time.Hour)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/results", nil)
	c.Request = req

	JWT(tokens)(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
