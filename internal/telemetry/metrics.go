package telemetry

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the business metrics for the service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal metric.Int64Counter
	HTTPDurationMs    metric.Float64Histogram

	// Business metrics
	PatientTotal      metric.Int64Counter
	OrdersTotal       metric.Int64Counter
	OrderItems        metric.Int64Histogram
	SimulationTicks   metric.Int64Counter
	DocumentsTotal    metric.Int64Counter
	DocumentDuration  metric.Float64Histogram
	CodeBlueTotal     metric.Int64Counter
	LoginsTotal       metric.Int64Counter
	ActiveSessions    metric.Int64Gauge

	// Auth metrics
	AuthFailuresTotal       metric.Int64Counter
	PermissionCheckDuration metric.Float64Histogram
}

type builder struct {
	meter metric.Meter
	err   error
}

func (b *builder) counter(name, desc, unit string) metric.Int64Counter {
	if b.err != nil {
		return nil
	}
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.err = err
	return c
}

func (b *builder) histogram(name, desc, unit string) metric.Float64Histogram {
	if b.err != nil {
		return nil
	}
	h, err := b.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.err = err
	return h
}

// InitMetrics registers every instrument on the global meter provider.
func InitMetrics(log logrus.FieldLogger) (*Metrics, error) {
	b := &builder{meter: otel.Meter("github.com/MedFlow-Health/operations-service")}

	m := &Metrics{
		HTTPRequestsTotal:       b.counter("http_server_requests_total", "Total number of HTTP requests", "{request}"),
		HTTPDurationMs:          b.histogram("http_server_duration_milliseconds", "HTTP request duration in milliseconds", "ms"),
		PatientTotal:            b.counter("patient_operations_total", "Total number of patient registry operations", "{operation}"),
		OrdersTotal:             b.counter("orders_placed_total", "Total number of lab and imaging orders", "{order}"),
		SimulationTicks:         b.counter("simulation_ticks_total", "Simulator mutations by kind", "{tick}"),
		DocumentsTotal:          b.counter("documents_analyzed_total", "Total number of analyzed documents", "{document}"),
		DocumentDuration:        b.histogram("document_analysis_duration_milliseconds", "Document analysis duration in milliseconds", "ms"),
		CodeBlueTotal:           b.counter("code_blue_total", "Code Blue activations and resolutions", "{event}"),
		LoginsTotal:             b.counter("logins_total", "Login attempts by role and outcome", "{attempt}"),
		AuthFailuresTotal:       b.counter("auth_failures_total", "Total number of authentication failures", "{failure}"),
		PermissionCheckDuration: b.histogram("permission_check_duration_ms", "Permission check duration in milliseconds", "ms"),
	}
	if b.err != nil {
		return nil, b.err
	}

	items, err := b.meter.Int64Histogram("order_items", metric.WithDescription("Items per order"), metric.WithUnit("{item}"))
	if err != nil {
		return nil, err
	}
	m.OrderItems = items

	active, err := b.meter.Int64Gauge("active_sessions", metric.WithDescription("Signed-in sessions"), metric.WithUnit("{session}"))
	if err != nil {
		return nil, err
	}
	m.ActiveSessions = active

	if log != nil {
		log.Info("Custom metrics initialized")
	}
	return m, nil
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPDurationMs.Record(ctx, durationMs, metric.WithAttributes(attrs...))
}

// RecordPatientOperation records a patient operation metric
func (m *Metrics) RecordPatientOperation(ctx context.Context, operation string) {
	m.PatientTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

func (m *Metrics) RecordOrderPlaced(ctx context.Context, priority string, items int) {
	attrs := metric.WithAttributes(attribute.String("priority", priority))
	m.OrdersTotal.Add(ctx, 1, attrs)
	m.OrderItems.Record(ctx, int64(items), attrs)
}

func (m *Metrics) RecordSimulationTick(ctx context.Context, kind string) {
	m.SimulationTicks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

func (m *Metrics) RecordDocumentAnalysis(ctx context.Context, source, severity string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("severity", severity),
	)
	m.DocumentsTotal.Add(ctx, 1, attrs)
	m.DocumentDuration.Record(ctx, float64(d.Microseconds())/1000, attrs)
}

func (m *Metrics) RecordCodeBlue(ctx context.Context, action string) {
	m.CodeBlueTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
	))
}

func (m *Metrics) RecordLogin(ctx context.Context, role string, success bool) {
	m.LoginsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", role),
		attribute.Bool("success", success),
	))
}

func (m *Metrics) RecordActiveSessions(ctx context.Context, n int) {
	m.ActiveSessions.Record(ctx, int64(n))
}

// RecordAuthFailure records an authentication failure metric
func (m *Metrics) RecordAuthFailure(ctx context.Context, reason string) {
	m.AuthFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordPermissionCheck records a permission check duration metric
func (m *Metrics) RecordPermissionCheck(ctx context.Context, permission string, durationMs float64, allowed bool) {
	m.PermissionCheckDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("permission", permission),
		attribute.Bool("allowed", allowed),
	))
}
