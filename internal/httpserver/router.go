package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"simpletodos/internal/graph"
	"simpletodos/internal/handler"
	"simpletodos/pkg/otel"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// EventsHealth reports whether the event publisher is connected. Nil when
// events are disabled.
type EventsHealth interface {
	IsConnected() bool
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	graphHandler *graph.Handler,
	authn Authenticator,
	store Pinger,
	events EventsHealth,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(otel.GinMiddleware())
	r.Use(RequestLogMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store_not_ready", "error": err.Error()})
			return
		}

		// events are best effort; report but stay ready
		mq := "disabled"
		if events != nil {
			mq = "connected"
			if !events.IsConnected() {
				mq = "disconnected"
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "mq": mq})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	withUser := r.Group("/")
	withUser.Use(OptionalAuthMiddleware(authn))
	{
		withUser.POST("/graphql", graphHandler.Serve)
		withUser.POST("/logout", RequireAuthMiddleware(), authHandler.Logout)
	}

	return &Router{Engine: r}
}

func (r *Router) Handler() http.Handler {
	return r.Engine
}
