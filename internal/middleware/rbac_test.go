package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/brightclass/results-api/internal/models"
)

func rbacContext(t *testing.T, claims *models.AuthClaims, studentParam string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/results/students/"+studentParam, nil)
	c.Request = req
	if studentParam != "" {
		c.Params = gin.Params{{Key: "studentId", Value: studentParam}}
	}
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}
	return c, w
}

func TestRBACAllowsListedRole(t *testing.T) {
	c, w := rbacContext(t, &models.AuthClaims{UserID: "t-1", SchoolID: "s-1", Role: models.RoleTeacher}, "stu-9")

	RBAC(string(models.RoleTeacher))(c)
	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACRejectsOtherRole(t *testing.T) {
	c, w := rbacContext(t, &models.AuthClaims{UserID: "stu-1", SchoolID: "s-1", Role: models.RoleStudent}, "stu-9")

	RBAC(string(models.RoleAdmin))(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACSelfAccessOwnRecordOnly(t *testing.T) {
	c, _ := rbacContext(t, &models.AuthClaims{UserID: "stu-1", SchoolID: "s-1", Role: models.RoleStudent}, "stu-1")
	RBAC(string(models.RoleAdmin), "SELF")(c)
	assert.False(t, c.IsAborted())

	other, otherW := rbacContext(t, &models.AuthClaims{UserID: "stu-1", SchoolID: "s-1", Role: models.RoleStudent}, "stu-2")
	RBAC(string(models.RoleAdmin), "SELF")(other)
	assert.True(t, other.IsAborted())
	assert.Equal(t, http.StatusForbidden, otherW.Code)
}

func TestRBACMissingClaims(t *testing.T) {
	c, w := rbacContext(t, nil, "stu-1")

	RBAC(string(models.RoleAdmin))(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
