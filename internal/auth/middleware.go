package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

const principalKey ctxKey = "auth_principal"

var tracer = otel.Tracer("github.com/MedFlow-Health/operations-service/auth")

// MetricsRecorder interface for recording auth metrics
type MetricsRecorder interface {
	RecordAuthFailure(ctx context.Context, reason string)
}

// Middleware validates token, injects Principal into request context.
func Middleware(ver *Verifier) func(http.Handler) http.Handler {
	return MiddlewareWithMetrics(ver, nil)
}

// MiddlewareWithMetrics validates token with metrics recording
func MiddlewareWithMetrics(ver *Verifier, metrics MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx, span := tracer.Start(ctx, "auth.Middleware",
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			fail := func(reason, message string) {
				span.SetStatus(codes.Error, message)
				span.SetAttributes(attribute.String("error.type", reason))
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, reason)
				}
				respondError(w, http.StatusUnauthorized, "unauthenticated", message)
			}

			tok, ok := bearerToken(r)
			if !ok {
				fail("missing_authorization", "missing authorization")
				return
			}

			pr, err := ver.ParseAndVerifyToken(tok)
			if err != nil {
				logrus.WithError(err).Warn("token validation failed")
				fail("invalid_token", "invalid token")
				return
			}

			span.SetAttributes(
				attribute.String("user.id", pr.UserID),
				attribute.String("user.role", string(pr.Role)),
				attribute.String("session.id", pr.SessionID),
			)
			span.SetStatus(codes.Ok, "authentication successful")

			ctx = context.WithValue(ctx, principalKey, pr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the Authorization header. WebSocket upgrades from a
// browser cannot set headers, so a token query parameter is accepted too.
func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		if q := r.URL.Query().Get("token"); q != "" {
			return q, true
		}
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// PermissionMetricsRecorder interface for recording permission check metrics
type PermissionMetricsRecorder interface {
	RecordPermissionCheck(ctx context.Context, permission string, durationMs float64, allowed bool)
}

// RequireView returns middleware that ensures the principal's role may open view.
func RequireView(view View, perms Permissions) func(http.Handler) http.Handler {
	return RequireAnyViewWithMetrics(perms, nil, view)
}

// RequireAnyView allows the request when any of views is permitted.
func RequireAnyView(perms Permissions, views ...View) func(http.Handler) http.Handler {
	return RequireAnyViewWithMetrics(perms, nil, views...)
}

// RequireAnyViewWithMetrics returns middleware with metrics recording
func RequireAnyViewWithMetrics(perms Permissions, metrics PermissionMetricsRecorder, views ...View) func(http.Handler) http.Handler {
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = string(v)
	}
	required := strings.Join(names, "|")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			ctx, span := tracer.Start(ctx, "auth.RequireView",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attribute.String("view.required", required)),
			)
			defer span.End()

			pr, ok := FromContext(ctx)
			if !ok {
				span.SetStatus(codes.Error, "unauthenticated")
				if metrics != nil {
					metrics.RecordPermissionCheck(ctx, required, float64(time.Since(start).Milliseconds()), false)
				}
				respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
				return
			}

			allowed := false
			for _, v := range views {
				if perms.Allows(pr.Role, v) {
					allowed = true
					break
				}
			}

			span.SetAttributes(
				attribute.Bool("permission.allowed", allowed),
				attribute.String("user.id", pr.UserID),
				attribute.String("user.role", string(pr.Role)),
			)
			if metrics != nil {
				metrics.RecordPermissionCheck(ctx, required, float64(time.Since(start).Milliseconds()), allowed)
			}

			if !allowed {
				logrus.WithFields(logrus.Fields{
					"user": pr.UserID,
					"role": pr.Role,
					"view": required,
				}).Warn("access denied")
				span.SetStatus(codes.Error, "forbidden")
				respondError(w, http.StatusForbidden, "access_denied", DeniedMessage(pr.Role))
				return
			}

			span.SetStatus(codes.Ok, "permission granted")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DeniedMessage is the text shown on the Access Denied screen.
func DeniedMessage(role Role) string {
	return fmt.Sprintf("Your role (%s) does not have permission to view this page.", role)
}

// FromContext extracts Principal from context.
func FromContext(ctx context.Context) (*Principal, bool) {
	pr, ok := ctx.Value(principalKey).(*Principal)
	return pr, ok
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{
		Error:   errorType,
		Message: message,
	})
}
