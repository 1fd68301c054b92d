package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	configpkg "github.com/hasura/ndc-sdk-go/internal/runtime/config"
	"github.com/hasura/ndc-sdk-go/internal/runtime/jsoncodec"
	loggingpkg "github.com/hasura/ndc-sdk-go/internal/runtime/logging"
	"github.com/hasura/ndc-sdk-go/schema"
)

// Protocol routes. Paths and methods are fixed by the wire protocol.
const (
	capabilitiesRoute    = "/capabilities"
	schemaRoute          = "/schema"
	queryRoute           = "/query"
	queryExplainRoute    = "/query/explain"
	mutationRoute        = "/mutation"
	mutationExplainRoute = "/mutation/explain"
	healthRoute          = "/health"
	metricsRoute         = "/metrics"
)

const versionHeader = schema.VersionHeader

const shutdownTimeout = 30 * time.Second

// ServerDependencies holds the optional collaborators a Server can use.
// Leave fields zero to get the defaults.
type ServerDependencies struct {
	Logger loggingpkg.ServiceLogger
	// Registry receives both the runtime's request metrics and whatever the
	// connector registers during state initialization.
	Registry *prometheus.Registry
	// Middlewares are appended after the default chain.
	Middlewares []MiddlewareRegistration
	// DisableDefaultMiddlewares skips the default chain when true.
	DisableDefaultMiddlewares bool
}

// Server turns a Connector into a conformant protocol HTTP service. It owns
// the router, the middleware chain, and the lazily-initialized server state.
type Server[Configuration, State any] struct {
	connector Connector[Configuration, State]
	options   configpkg.ServerOptions
	logger    loggingpkg.ServiceLogger
	state     *ServerState[Configuration, State]
	versions  VersionRange
	metrics   *serverMetrics

	router         chi.Router
	metricsEncoder http.Handler
}

// NewServer constructs a Server or panics. See TryNewServer.
func NewServer[Configuration, State any](
	ctx context.Context,
	connector Connector[Configuration, State],
	options configpkg.ServerOptions,
	deps ServerDependencies,
) *Server[Configuration, State] {
	server, err := TryNewServer(ctx, connector, options, deps)
	if err != nil {
		panic(err)
	}
	return server
}

// TryNewServer parses the connector configuration and wires the router and
// middleware chain. Connector state is not initialized here; the first
// state-requiring request does that.
func TryNewServer[Configuration, State any](
	ctx context.Context,
	connector Connector[Configuration, State],
	options configpkg.ServerOptions,
	deps ServerDependencies,
) (*Server[Configuration, State], error) {
	if connector == nil {
		return nil, errors.New("ndc: connector is required")
	}

	options = options.WithDefaults()
	if err := options.Validate(); err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = loggingpkg.NewDefaultLogger()
	}

	versions := DefaultVersionRange()
	if options.MinProtocolVersion != "" {
		var err error
		versions, err = NewVersionRange(options.MinProtocolVersion, options.MaxProtocolVersion)
		if err != nil {
			return nil, err
		}
	}

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics, err := newServerMetrics(registry)
	if err != nil {
		return nil, err
	}

	configuration, err := connector.ParseConfiguration(ctx, options.ConfigurationDir)
	if err != nil {
		return nil, fmt.Errorf("ndc: parsing configuration: %w", err)
	}

	s := &Server[Configuration, State]{
		connector: connector,
		options:   options,
		logger:    logger,
		versions:  versions,
		metrics:   metrics,
		state: NewServerState(configuration, registry, func(ctx context.Context) (*State, error) {
			return connector.TryInitState(ctx, configuration, registry)
		}),
		metricsEncoder: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	if err := s.buildRouter(deps); err != nil {
		return nil, err
	}
	return s, nil
}

// Router returns the HTTP handler, for embedding or tests.
func (s *Server[Configuration, State]) Router() http.Handler {
	return s.router
}

// ServerState exposes the configuration/state holder, mainly for tests and
// embedding connectors into larger processes.
func (s *Server[Configuration, State]) ServerState() *ServerState[Configuration, State] {
	return s.state
}

// ListenAndServe serves until the context is cancelled, then drains in-flight
// requests before returning.
func (s *Server[Configuration, State]) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.options.ListenAddress(),
		Handler: s.router,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", err, nil)
		}
	}()

	s.logger.Info("starting server", loggingpkg.LogFields{"address": httpServer.Addr})
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server[Configuration, State]) buildRouter(deps ServerDependencies) error {
	mc := &MiddlewareContext{
		Logger:   s.logger,
		Options:  &s.options,
		Versions: s.versions,
		metrics:  s.metrics,
	}

	var registrations []MiddlewareRegistration
	if !deps.DisableDefaultMiddlewares {
		registrations = DefaultMiddlewares()
	}
	registrations = append(registrations, deps.Middlewares...)

	router := chi.NewRouter()
	router.Use(withOutcome)
	for _, reg := range registrations {
		mw := reg.Middleware
		if mw == nil && reg.Builder != nil {
			var err error
			mw, err = reg.Builder(mc)
			if err != nil {
				name := reg.Name
				if name == "" {
					name = "anonymous_middleware"
				}
				return fmt.Errorf("ndc: building middleware %s: %w", name, err)
			}
		}
		if mw == nil {
			continue
		}
		router.Use(mw)
	}

	router.Get(capabilitiesRoute, s.handleCapabilities)
	router.Get(schemaRoute, s.handleSchema)
	router.Get(healthRoute, s.handleHealth)
	router.Get(metricsRoute, s.handleMetrics)
	router.Post(queryRoute, func(w http.ResponseWriter, r *http.Request) {
		dispatch(s, w, r, s.connector.Query)
	})
	router.Post(queryExplainRoute, func(w http.ResponseWriter, r *http.Request) {
		dispatch(s, w, r, s.connector.QueryExplain)
	})
	router.Post(mutationRoute, func(w http.ResponseWriter, r *http.Request) {
		dispatch(s, w, r, s.connector.Mutation)
	})
	router.Post(mutationExplainRoute, func(w http.ResponseWriter, r *http.Request) {
		dispatch(s, w, r, s.connector.MutationExplain)
	})

	s.router = router
	return nil
}

func (s *Server[Configuration, State]) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	response := schema.CapabilitiesResponse{
		Version:      schema.Version,
		Capabilities: s.connector.GetCapabilities(s.state.Configuration()),
	}
	writeJSON(w, s.logger, http.StatusOK, &response)
}

func (s *Server[Configuration, State]) handleSchema(w http.ResponseWriter, r *http.Request) {
	response, err := s.connector.GetSchema(r.Context(), s.state.Configuration())
	if err != nil {
		writeError(w, r, s.logger, asConnectorError(err))
		return
	}
	writeJSON(w, s.logger, http.StatusOK, response)
}

// handleHealth reports the runtime's own readiness. It never initializes
// connector state and the connector contract forbids outbound I/O here, so a
// slow downstream cannot fail the probe.
func (s *Server[Configuration, State]) handleHealth(w http.ResponseWriter, r *http.Request) {
	err := s.connector.HealthCheck(r.Context(), s.state.Configuration(), s.state.Peek())
	if err != nil {
		var connErr *ConnectorError
		if !errors.As(err, &connErr) {
			connErr = &ConnectorError{Kind: KindUnhealthy, Message: "health check failed", cause: err}
		}
		writeError(w, r, s.logger, connErr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMetrics polls the connector's indirect gauges, then serves the
// gathered registry in the exposition format.
func (s *Server[Configuration, State]) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if state := s.state.Peek(); state != nil {
		if err := s.connector.FetchMetrics(r.Context(), s.state.Configuration(), state); err != nil {
			writeError(w, r, s.logger, asConnectorError(err))
			return
		}
	}
	s.metricsEncoder.ServeHTTP(w, r)
}

// dispatch runs a state-requiring operation: it acquires (or initializes)
// connector state, decodes the request body, invokes the operation, and
// translates the outcome to the wire format.
func dispatch[Configuration, State, Request, Response any](
	s *Server[Configuration, State],
	w http.ResponseWriter,
	r *http.Request,
	invoke func(ctx context.Context, configuration *Configuration, state *State, request *Request) (*schema.Response[Response], error),
) {
	ctx := r.Context()

	state, err := s.state.State(ctx)
	if err != nil {
		writeError(w, r, s.logger, &ConnectorError{
			Kind:    KindStateInitializationFailed,
			Message: "failed to initialize connector state",
			cause:   err,
		})
		return
	}

	var request Request
	if connErr := decodeRequest(r, &request); connErr != nil {
		writeError(w, r, s.logger, connErr)
		return
	}

	response, err := invoke(ctx, s.state.Configuration(), state, &request)
	if err != nil {
		writeError(w, r, s.logger, asConnectorError(err))
		return
	}
	writeJSON(w, s.logger, http.StatusOK, response)
}

// decodeRequest reads the (size-limited) body and unmarshals it. Exceeding
// the transport limit surfaces as payload_too_large, anything else the codec
// rejects as malformed_request.
func decodeRequest[Request any](r *http.Request, into *Request) *ConnectorError {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return newError(KindPayloadTooLarge,
				fmt.Sprintf("request body exceeds the configured limit of %d bytes", maxBytesErr.Limit))
		}
		return &ConnectorError{Kind: KindMalformedRequest, Message: "failed to read request body", cause: err}
	}
	if err := jsoncodec.Unmarshal(body, into); err != nil {
		return newError(KindMalformedRequest, fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, log loggingpkg.ServiceLogger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := jsoncodec.Encode(w, v); err != nil && log != nil {
		// The status line is already out; all we can do is log.
		log.Error("failed to encode response body", err, nil)
	}
}

// writeError downgrades an internal error to the wire envelope. The richer
// context (wrapped cause) is logged here for 5xx-class errors before it is
// dropped from the response.
func writeError(w http.ResponseWriter, r *http.Request, log loggingpkg.ServiceLogger, connErr *ConnectorError) {
	if outcome := outcomeFromContext(r.Context()); outcome != nil {
		outcome.kind = string(connErr.Kind)
	}

	status := connErr.Kind.Status()
	if log != nil && status >= http.StatusInternalServerError {
		log.Error("request failed", connErr.cause, loggingpkg.LogFields{
			"kind":       string(connErr.Kind),
			"message":    connErr.Message,
			"path":       r.URL.Path,
			"request_id": RequestIDFromContext(r.Context()),
		})
	}

	envelope := connErr.Envelope()
	writeJSON(w, log, status, &envelope)
}
