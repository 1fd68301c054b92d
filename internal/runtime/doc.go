/*
Package runtime implements the connector runtime: the request-handling state
machine between the generic HTTP surface of the NDC protocol and a
connector's business logic.

# Architecture Overview

The runtime is generic over the Connector interface. It owns everything the
protocol does not prescribe: version compatibility gating, lazy single-flight
state initialization, request body size limits, the structured error
envelope, and per-request tracing and metrics.

# Package Structure

## Server (server.go)

The Server struct wires the chi router, the middleware chain, and the route
handlers. State-requiring routes dispatch through a shared generic path that
acquires connector state, decodes the body, invokes the operation, and
translates the outcome to the wire format.

## State (state.go)

ServerState holds the immutable configuration, the metrics registry, and a
lazily-initialized state cell. The cell collapses concurrent first callers
into one initialization attempt, broadcasts the shared outcome, and resets on
failure so the next request retries.

## Middleware (middleware.go)

Composable request processing stages, registered by name:
  - RequestID: ULID per request for log and trace correlation
  - Tracer: OpenTelemetry span per request with inbound context propagation
  - Metrics: Prometheus request/failure counters and latency histogram
  - LogRequests: structured completion logging
  - Recoverer: panic recovery into internal-fault envelopes
  - Auth: optional service token validation
  - VersionGate: protocol version compatibility check
  - BodyLimit: transport-level request body cap

## Errors (errors.go)

The closed ConnectorError taxonomy: runtime kinds (malformed_request,
unsupported_version, payload_too_large, state_initialization_failed,
internal) and connector kinds passed through unreinterpreted.

## Entrypoints (cli.go, telemetry.go, checkhealth.go)

Cobra serve/check-health subcommands with environment fallbacks, OTLP trace
export setup, and the client-side health probe.

# Sub-packages

  - config/: server options with validation and secret redaction
  - ids/: ULID generation for request IDs
  - jsoncodec/: JSON codec shared by all wire bodies
  - logging/: logger interface and slog adapter
*/
package runtime
