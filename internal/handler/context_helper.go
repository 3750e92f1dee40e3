package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/brightclass/results-api/internal/middleware"
	"github.com/brightclass/results-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.AuthClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// schoolFromContext returns the caller's tenant scope. Every handler
// resolves the school from the token, never from the request, so one
// tenant can never address another's data.
func schoolFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.SchoolID
}
