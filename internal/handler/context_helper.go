package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/relief-verification-api/internal/middleware"
	"github.com/noah-isme/relief-verification-api/internal/models"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
	"github.com/noah-isme/relief-verification-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.ClaimsFrom(c)
}

// bindJSON decodes the body and writes a 400 on failure.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message))
		return false
	}
	return true
}

// withCacheMeta merges the request metadata with the cache flag.
func withCacheMeta(c *gin.Context, hit bool) map[string]interface{} {
	middleware.SetCacheHit(c, hit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{"cache_hit": hit}
	}
	return meta
}

func invalidQuery(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters")
}
