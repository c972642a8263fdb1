package app

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ozelders/ozelders-api/internal/assistant"
)

const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"

	ctxCallerKey = "caller"
)

// identityMiddleware reads the authenticated identity headers set by the
// reverse proxy and stores the caller on the request context. Requests
// without the headers pass through as anonymous.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerUserID))
		role := strings.TrimSpace(c.GetHeader(headerUserRole))
		if id != "" {
			c.Set(ctxCallerKey, assistant.Caller{ID: id, Role: role})
		}
		c.Next()
	}
}

// callerFrom returns the caller attached by identityMiddleware, if any.
func callerFrom(c *gin.Context) (assistant.Caller, bool) {
	v, ok := c.Get(ctxCallerKey)
	if !ok {
		return assistant.Caller{}, false
	}
	caller, ok := v.(assistant.Caller)
	return caller, ok
}

// requireUser rejects requests that carry no identity headers.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := callerFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// requireTeacher rejects requests whose caller is missing or not a teacher.
func requireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if caller.Role != assistant.RoleTeacher {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// metricsAuthMiddleware enforces HTTP basic auth on the metrics endpoint
// when enabled. Credential comparison is constant-time.
func metricsAuthMiddleware(enabled bool, username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="metrics"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
		if !userMatch || !passMatch {
			c.Header("WWW-Authenticate", `Basic realm="metrics"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		c.Next()
	}
}
