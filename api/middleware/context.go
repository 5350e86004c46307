package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/rankforge/seoportal/internal/utils"
)

// CustomContextMiddleware adds custom context to all requests
func CustomContextMiddleware(appSource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.WithCustomContextFromGinRequest(c, appSource)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// IdentityHeadersMiddleware copies the caller identity headers into the gin
// context so CustomContextMiddleware can pick them up.
func IdentityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userId := c.GetHeader("X-USER-ID"); userId != "" {
			c.Set("UserId", userId)
		}
		if userEmail := c.GetHeader("X-USER-EMAIL"); userEmail != "" {
			c.Set("UserEmail", userEmail)
		}
		if tenantId := c.GetHeader("X-TENANT-ID"); tenantId != "" {
			c.Set("TenantId", tenantId)
		}
		c.Next()
	}
}
