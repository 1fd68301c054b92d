package runtime

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	configpkg "github.com/hasura/ndc-sdk-go/internal/runtime/config"
	idspkg "github.com/hasura/ndc-sdk-go/internal/runtime/ids"
	loggingpkg "github.com/hasura/ndc-sdk-go/internal/runtime/logging"
)

const tracerName = "github.com/hasura/ndc-sdk-go"

// requestIDHeader echoes the generated request identifier to the client.
const requestIDHeader = "X-Request-Id"

// Middleware is a plain net/http middleware, composed by the chi router.
type Middleware = func(http.Handler) http.Handler

// MiddlewareContext exposes the server internals a middleware builder may
// depend on.
type MiddlewareContext struct {
	Logger   loggingpkg.ServiceLogger
	Options  *configpkg.ServerOptions
	Versions VersionRange

	metrics *serverMetrics
}

// MiddlewareBuilder constructs a middleware from the server context. A nil
// middleware (with nil error) is skipped, which lets builders opt out based
// on configuration.
type MiddlewareBuilder func(*MiddlewareContext) (Middleware, error)

// MiddlewareRegistration captures how a middleware is registered on the
// router. Either Middleware or Builder must be set.
type MiddlewareRegistration struct {
	Name       string
	Middleware Middleware
	Builder    MiddlewareBuilder
}

// DefaultMiddlewares returns the standard chain applied by the server
// constructor, outermost first.
func DefaultMiddlewares() []MiddlewareRegistration {
	return []MiddlewareRegistration{
		RequestIDMiddleware(),
		TracerMiddleware(),
		MetricsMiddleware(),
		LogRequestsMiddleware(nil),
		RecovererMiddleware(),
		AuthMiddleware(),
		VersionGateMiddleware(),
		BodyLimitMiddleware(),
	}
}

type contextKey int

const (
	requestIDKey contextKey = iota
	outcomeKey
)

// requestOutcome records the error kind of a response, if any, so the
// tracing and metrics middlewares can annotate completions without parsing
// response bodies. The holder is injected by the server for every request.
type requestOutcome struct {
	kind string
}

func withOutcome(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), outcomeKey, &requestOutcome{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func outcomeFromContext(ctx context.Context) *requestOutcome {
	outcome, _ := ctx.Value(outcomeKey).(*requestOutcome)
	return outcome
}

// RequestIDFromContext returns the ULID assigned to the request, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RequestIDMiddleware assigns a ULID to each request and echoes it in the
// response headers.
func RequestIDMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "request_id",
		Middleware: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id := idspkg.NewRequestID()
				w.Header().Set(requestIDHeader, id)
				ctx := context.WithValue(r.Context(), requestIDKey, id)
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		},
	}
}

// TracerMiddleware opens one span per request, continuing any trace context
// supplied in the inbound headers.
func TracerMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "tracer",
		Middleware: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

				tracer := otel.Tracer(tracerName)
				ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
					trace.WithSpanKind(trace.SpanKindServer),
					trace.WithAttributes(
						attribute.String("http.request.method", r.Method),
						attribute.String("url.path", r.URL.Path),
					),
				)
				defer span.End()

				ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
				next.ServeHTTP(ww, r.WithContext(ctx))

				span.SetAttributes(attribute.Int("http.response.status_code", ww.Status()))
				if outcome := outcomeFromContext(ctx); outcome != nil && outcome.kind != "" {
					span.SetAttributes(attribute.String("error.kind", outcome.kind))
					span.SetStatus(codes.Error, outcome.kind)
				}
			})
		},
	}
}

// MetricsMiddleware counts requests and failures and observes latency, per
// route.
func MetricsMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "metrics",
		Builder: func(mc *MiddlewareContext) (Middleware, error) {
			metrics := mc.metrics
			if metrics == nil {
				return nil, nil
			}
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					start := time.Now()
					ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
					next.ServeHTTP(ww, r)

					kind := ""
					if outcome := outcomeFromContext(r.Context()); outcome != nil {
						kind = outcome.kind
					}
					metrics.observe(routePattern(r), kind, time.Since(start))
				})
			}, nil
		},
	}
}

// LogRequestsMiddleware logs each completed request. A nil logger falls back
// to the server's.
func LogRequestsMiddleware(logger loggingpkg.ServiceLogger) MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "log_requests",
		Builder: func(mc *MiddlewareContext) (Middleware, error) {
			log := logger
			if log == nil {
				log = mc.Logger
			}
			if log == nil {
				return nil, errors.New("request logging middleware requires a logger")
			}
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					start := time.Now()
					ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
					next.ServeHTTP(ww, r)

					fields := loggingpkg.LogFields{
						"method":     r.Method,
						"path":       r.URL.Path,
						"status":     ww.Status(),
						"elapsed_ms": time.Since(start).Milliseconds(),
						"request_id": RequestIDFromContext(r.Context()),
					}
					if ww.Status() >= http.StatusInternalServerError {
						log.Error("request failed", nil, fields)
					} else {
						log.Debug("request completed", fields)
					}
				})
			}, nil
		},
	}
}

// RecovererMiddleware converts handler panics into internal-fault responses
// so a defect in connector code cannot take the process down.
func RecovererMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "recoverer",
		Builder: func(mc *MiddlewareContext) (Middleware, error) {
			log := mc.Logger
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					defer func() {
						if rec := recover(); rec != nil {
							if rec == http.ErrAbortHandler {
								panic(rec)
							}
							if log != nil {
								log.Error("panic while handling request", nil, loggingpkg.LogFields{
									"panic":      rec,
									"stack":      string(debug.Stack()),
									"path":       r.URL.Path,
									"request_id": RequestIDFromContext(r.Context()),
								})
							}
							writeError(w, r, log, NewInternalError(nil))
						}
					}()
					next.ServeHTTP(w, r)
				})
			}, nil
		},
	}
}

// AuthMiddleware validates the service token bearer header on every route
// except the health check. It is a no-op when no token is configured.
func AuthMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "auth",
		Builder: func(mc *MiddlewareContext) (Middleware, error) {
			if mc.Options == nil || mc.Options.ServiceTokenSecret == "" {
				return nil, nil
			}
			expected := []byte("Bearer " + mc.Options.ServiceTokenSecret)
			log := mc.Logger
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if r.URL.Path == healthRoute {
						next.ServeHTTP(w, r)
						return
					}
					header := []byte(r.Header.Get("Authorization"))
					if subtle.ConstantTimeCompare(header, expected) != 1 {
						writeError(w, r, log, newError(KindUnauthorized, "bearer token does not match"))
						return
					}
					next.ServeHTTP(w, r)
				})
			}, nil
		},
	}
}

// VersionGateMiddleware rejects clients declaring a protocol version outside
// the runtime's supported range, before any connector code executes. The
// health and metrics routes are exempt; they are operational surfaces, not
// protocol endpoints.
func VersionGateMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "version_gate",
		Builder: func(mc *MiddlewareContext) (Middleware, error) {
			versions := mc.Versions
			log := mc.Logger
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if r.URL.Path == healthRoute || r.URL.Path == metricsRoute {
						next.ServeHTTP(w, r)
						return
					}
					if connErr := versions.Check(r.Header.Get(versionHeader)); connErr != nil {
						writeError(w, r, log, connErr)
						return
					}
					next.ServeHTTP(w, r)
				})
			}, nil
		},
	}
}

// BodyLimitMiddleware caps request body size at the transport layer, before
// deserialization, so hostile payloads cannot exhaust memory.
func BodyLimitMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "body_limit",
		Builder: func(mc *MiddlewareContext) (Middleware, error) {
			if mc.Options == nil || mc.Options.MaxBodySize < 0 {
				return nil, nil
			}
			limit := mc.Options.MaxBodySize
			if limit == 0 {
				limit = configpkg.DefaultMaxBodySize
			}
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if r.Body != nil {
						r.Body = http.MaxBytesReader(w, r.Body, limit)
					}
					next.ServeHTTP(w, r)
				})
			}, nil
		},
	}
}

// routePattern names the route for metrics, preferring the matched chi
// pattern over the raw path so label cardinality stays bounded.
func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
