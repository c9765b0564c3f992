package observability

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/projexhq/projex-server/internal/apperr"
)

// Audit records a successful security-relevant event.
func Audit(r *http.Request, event string, attrs ...any) {
	audit(r, slog.LevelInfo, event, "success", attrs)
}

// AuditFailure records a rejected event. Only the error kind is logged so
// client-supplied credentials never reach the audit trail.
func AuditFailure(r *http.Request, event string, err error, attrs ...any) {
	attrs = append(attrs, "error_kind", apperr.KindOf(err).String())
	audit(r, slog.LevelWarn, event, "failure", attrs)
}

func audit(r *http.Request, level slog.Level, event, outcome string, attrs []any) {
	ctx := r.Context()
	base := []any{
		"event", event,
		"outcome", outcome,
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"request_id", chimiddleware.GetReqID(ctx),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		base = append(base, "trace_id", sc.TraceID().String())
	}
	slog.Log(ctx, level, "audit", append(base, attrs...)...)
}
