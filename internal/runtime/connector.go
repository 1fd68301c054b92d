package runtime

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hasura/ndc-sdk-go/schema"
)

// Connector is the capability contract every data connector must satisfy.
// The runtime is generic over this interface and assumes nothing beyond it.
//
// Configuration is the validated, immutable value parsed once at process
// start. State holds the unserializable runtime resources built from it:
// connection pools, prepared statements, caches. State is constructed lazily
// on the first request that needs it and then shared by every concurrent
// request handler; the connector is responsible for whatever internal
// synchronization its state requires.
type Connector[Configuration, State any] interface {
	// ParseConfiguration validates the user-supplied configuration
	// directory. It runs once at startup; failures abort the process.
	ParseConfiguration(ctx context.Context, configurationDir string) (*Configuration, error)

	// TryInitState builds the connector state. It may perform I/O (for
	// example opening a connection pool) and must be safe to retry: the
	// runtime re-invokes it on the next state-requiring request after a
	// failure. Connector-specific collectors should be registered on the
	// supplied registry here.
	TryInitState(ctx context.Context, configuration *Configuration, metrics *prometheus.Registry) (*State, error)

	// FetchMetrics polls gauges that cannot be updated directly, such as
	// the idle-connection count of a pool. It runs on every scrape of the
	// metrics route, before the registry is gathered.
	FetchMetrics(ctx context.Context, configuration *Configuration, state *State) error

	// HealthCheck reports whether the connector is in a servable condition.
	// It must not reach out to downstream systems; only in-process
	// invariants may be validated. state is nil when no request has needed
	// state yet, and that is not a failure condition.
	HealthCheck(ctx context.Context, configuration *Configuration, state *State) error

	// GetCapabilities advertises the protocol features the connector
	// supports. Static per connector version.
	GetCapabilities(configuration *Configuration) schema.Capabilities

	// GetSchema describes the collections, functions, and procedures the
	// connector exposes.
	GetSchema(ctx context.Context, configuration *Configuration) (*schema.Response[schema.SchemaResponse], error)

	// Query executes a query request.
	Query(ctx context.Context, configuration *Configuration, state *State, request *schema.QueryRequest) (*schema.Response[schema.QueryResponse], error)

	// QueryExplain produces an execution plan for a query request.
	QueryExplain(ctx context.Context, configuration *Configuration, state *State, request *schema.QueryRequest) (*schema.Response[schema.ExplainResponse], error)

	// Mutation executes a mutation request.
	Mutation(ctx context.Context, configuration *Configuration, state *State, request *schema.MutationRequest) (*schema.Response[schema.MutationResponse], error)

	// MutationExplain produces an execution plan for a mutation request.
	MutationExplain(ctx context.Context, configuration *Configuration, state *State, request *schema.MutationRequest) (*schema.Response[schema.ExplainResponse], error)
}
