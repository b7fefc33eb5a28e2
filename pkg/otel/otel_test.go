package otel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"simpletodos/pkg/config"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()

	rec := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
	})
	return rec
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(config.OtelConfig{Enabled: false}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shutdown == nil {
		t.Fatalf("expected a shutdown func")
	}
	shutdown()
}

func TestGinMiddleware_RecordsServerSpan(t *testing.T) {
	rec := recordSpans(t)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	const parent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	req := httptest.NewRequest(http.MethodGet, "/items/7", nil)
	req.Header.Set("traceparent", parent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("traceparent") == "" {
		t.Fatalf("expected traceparent in response headers")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	ok := spans[0]
	if ok.Name() != "GET /items/:id" {
		t.Fatalf("unexpected span name %q", ok.Name())
	}
	if ok.SpanKind() != trace.SpanKindServer {
		t.Fatalf("expected server span, got %v", ok.SpanKind())
	}
	if got := ok.Parent().TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("expected incoming trace to be continued, got %s", got)
	}
	if ok.Status().Code == codes.Error {
		t.Fatalf("200 response must not mark the span as error")
	}

	if spans[1].Status().Code != codes.Error {
		t.Fatalf("expected error status for 500, got %v", spans[1].Status().Code)
	}
}

func TestEndDBSpan(t *testing.T) {
	rec := recordSpans(t)
	ctx := context.Background()

	_, span := DBSpan(ctx, "select", "tasks", "SELECT 1")
	EndDBSpan(span, pgx.ErrNoRows)
	_, span = DBSpan(ctx, "update", "tasks", "UPDATE tasks")
	EndDBSpan(span, errors.New("connection reset"))

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != "db.select" || spans[0].Status().Code != codes.Ok {
		t.Fatalf("no rows should end ok, got %s %v", spans[0].Name(), spans[0].Status().Code)
	}
	if spans[1].Status().Code != codes.Error {
		t.Fatalf("expected error status, got %v", spans[1].Status().Code)
	}
	if len(spans[1].Events()) == 0 {
		t.Fatalf("expected the error to be recorded as an event")
	}
}

func TestMQHeaders_CarrySpanContext(t *testing.T) {
	recordSpans(t)

	ctx, span := MQPublishSpan(context.Background(), "task.created", "todos.events")
	defer span.End()

	headers := map[string]interface{}{"X-Trace-ID": "abc"}
	InjectMQHeaders(ctx, headers)
	if _, ok := headers["traceparent"]; !ok {
		t.Fatalf("expected traceparent header, got %v", headers)
	}
	if headers["X-Trace-ID"] != "abc" {
		t.Fatalf("existing headers must be kept")
	}

	extracted := otel.GetTextMapPropagator().Extract(context.Background(), NewMQHeaderCarrier(headers))
	got := trace.SpanContextFromContext(extracted)
	if got.TraceID() != span.SpanContext().TraceID() {
		t.Fatalf("expected trace %s, got %s", span.SpanContext().TraceID(), got.TraceID())
	}
}

func TestMQHeaderCarrier_IgnoresNonStringValues(t *testing.T) {
	c := NewMQHeaderCarrier(map[string]interface{}{"n": int32(3)})
	if c.Get("n") != "" {
		t.Fatalf("expected empty value for non-string header")
	}
	c.Set("k", "v")
	if c.Get("k") != "v" || len(c.Keys()) != 2 {
		t.Fatalf("unexpected carrier state: %v", c.Keys())
	}
}
