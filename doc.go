// Package ndc turns a Connector implementation into a complete HTTP service
// speaking the Native Data Connector protocol. It owns the router, the
// protocol version gate, lazy connector state initialization, request body
// limits, structured error envelopes, and the default middleware chain for
// request IDs, tracing, metrics, logging, panic recovery, and service token
// authentication.
//
// A connector author implements the generic Connector interface for their
// Configuration and State types and hands it to the runtime; parsing the
// configuration directory, constructing shared state exactly once across
// concurrent first requests, and mapping connector errors to wire responses
// are all handled here. A minimal setup is therefore implementing Connector
// and calling DefaultMain; see examples/reference for a runnable connector.
//
// # Routes
//
// The server exposes the full protocol surface:
//   - GET /capabilities: protocol version and supported feature leaves
//   - GET /schema: collections, functions, procedures, scalar and object types
//   - POST /query and /query/explain: query execution and plan inspection
//   - POST /mutation and /mutation/explain: procedure execution and plan inspection
//   - GET /health: service health, never touches downstream systems
//   - GET /metrics: Prometheus exposition including connector-registered collectors
//
// # Middleware
//
// The default chain injects a ULID request ID, opens an OpenTelemetry span
// with inbound context propagation, records Prometheus request counters and
// latency, logs request completion, recovers panics into internal-fault
// responses, validates the optional service token, gates the declared
// protocol version, and caps request body size. Custom middleware can be
// added or the chain replaced via ServerDependencies.Middlewares.
//
// # Error envelope
//
// Every failure is serialized as a single envelope carrying a stable kind, a
// human-readable message, and optional structured details. Wrapped causes are
// logged server-side and never leave the process.
package ndc
