package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rankforge/seoportal/config"
)

// CronAuthChecker authenticates the scheduler calling the publish endpoint.
type CronAuthChecker interface {
	Check(c *gin.Context) bool
}

// BasicAuthChecker expects HTTP Basic credentials.
type BasicAuthChecker struct {
	username string
	password string
}

func NewBasicAuthChecker(username, password string) *BasicAuthChecker {
	return &BasicAuthChecker{username: username, password: password}
}

func (a *BasicAuthChecker) Check(c *gin.Context) bool {
	if a.username == "" && a.password == "" {
		return false
	}
	username, password, ok := c.Request.BasicAuth()
	if !ok {
		return false
	}
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return usernameMatch && passwordMatch
}

// BearerAuthChecker expects a shared bearer secret.
type BearerAuthChecker struct {
	secret string
}

func NewBearerAuthChecker(secret string) *BearerAuthChecker {
	return &BearerAuthChecker{secret: secret}
}

func (a *BearerAuthChecker) Check(c *gin.Context) bool {
	if a.secret == "" {
		return false
	}
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.secret)) == 1
}

// NewCronAuthChecker picks the checker the deployment configured.
func NewCronAuthChecker(cfg *config.CronAuthConfig) CronAuthChecker {
	if cfg.Scheme == "bearer" {
		return NewBearerAuthChecker(cfg.BearerSecret)
	}
	return NewBasicAuthChecker(cfg.Username, cfg.Password)
}

// CronAuthMiddleware rejects unauthenticated scheduler calls before any
// request state is touched.
func CronAuthMiddleware(checker CronAuthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !checker.Check(c) {
			c.Header("WWW-Authenticate", `Basic realm="cron"`)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
