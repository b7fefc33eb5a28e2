package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"simpletodos/internal/apperr"
	"simpletodos/internal/service/auth"
	"simpletodos/pkg/logger"
	"simpletodos/pkg/metrics"
	"simpletodos/pkg/trace"
	"simpletodos/pkg/util"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*util.Claims, error)
}

// TraceMiddleware reuses the caller's X-Trace-ID or generates one, and
// echoes it on the response.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := trace.FromHeader(c.GetHeader(trace.HeaderName))
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName, traceID)
		c.Next()
	}
}

func RequestLogMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), latency)

		logger.WithTrace(c.Request.Context(), log).Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// OptionalAuthMiddleware attaches claims when a bearer token is present.
// Requests without a token continue anonymously; a bad token is rejected.
func OptionalAuthMiddleware(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.Next()
			return
		}

		claims, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := apperr.HTTPStatus(err)
			msg := err.Error()
			if status == http.StatusInternalServerError {
				msg = "internal error"
			}
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// RequireAuthMiddleware must run after OptionalAuthMiddleware.
func RequireAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.ClaimsFromContext(c.Request.Context()) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		c.Next()
	}
}
