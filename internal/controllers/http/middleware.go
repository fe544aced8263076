package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	AdminKeyHeader = "X-Admin-Key"
	DeviceIDHeader = "X-Device-ID"

	deviceIDKey = "deviceID"
	claimsKey   = "claims"
)

func keyMatches(got, adminKey string) bool {
	if adminKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(adminKey)) == 1
}

func adminKeyMatches(c *gin.Context, adminKey string) bool {
	return keyMatches(c.GetHeader(AdminKeyHeader), adminKey)
}

// AdminGate rejects requests whose X-Admin-Key does not match. With no key
// configured every request is rejected.
func AdminGate(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !adminKeyMatches(c, adminKey) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or missing admin key"})
			return
		}
		c.Next()
	}
}

// DeviceID scopes carts and favorites. Clients without an id get a fresh one
// in the response header and are expected to send it back.
func DeviceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(DeviceIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(deviceIDKey, id)
		c.Header(DeviceIDHeader, id)
		c.Next()
	}
}

func deviceID(c *gin.Context) string {
	return c.GetString(deviceIDKey)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireUser accepts only requests carrying a valid bearer token.
func RequireUser(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}
		claims, err := auth.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalUser attaches the caller's claims when a valid token is present
// and lets anonymous requests through.
func OptionalUser(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := auth.ParseToken(token); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *services.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*services.Claims)
	return claims
}

func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		metrics.ObserveHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}
		switch {
		case status >= http.StatusInternalServerError:
			slog.Error("request", attrs...)
		case status >= http.StatusBadRequest:
			slog.Warn("request", attrs...)
		default:
			slog.Debug("request", attrs...)
		}
	}
}

// Recovery turns a panic in a handler into a logged 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic while handling request", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}
