package graph

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"

	"simpletodos/pkg/logger"
	"simpletodos/pkg/metrics"
)

type Handler struct {
	schema *graphql.Schema
	logger *zap.Logger
}

func NewHandler(schema *graphql.Schema, logger *zap.Logger) *Handler {
	return &Handler{schema: schema, logger: logger}
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Serve handles POST /graphql.
func (h *Handler) Serve(c *gin.Context) {
	var req request
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		metrics.IncrementGraphQLRequest("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid graphql request"})
		return
	}

	ctx := c.Request.Context()
	resp := h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)

	status := "ok"
	if len(resp.Errors) > 0 {
		status = "error"
		logger.WithTrace(ctx, h.logger).Debug("GraphQL request returned errors",
			zap.String("operation", req.OperationName),
			zap.Int("error_count", len(resp.Errors)),
			zap.String("first_error", resp.Errors[0].Message),
		)
	}
	metrics.IncrementGraphQLRequest(status)

	c.JSON(http.StatusOK, resp)
}
