package ndc

import (
	"context"

	"github.com/spf13/cobra"

	runtimepkg "github.com/hasura/ndc-sdk-go/internal/runtime"
	configpkg "github.com/hasura/ndc-sdk-go/internal/runtime/config"
	jsoncodec "github.com/hasura/ndc-sdk-go/internal/runtime/jsoncodec"
	loggingpkg "github.com/hasura/ndc-sdk-go/internal/runtime/logging"
)

type (
	Connector[Configuration, State any]   = runtimepkg.Connector[Configuration, State]
	Server[Configuration, State any]      = runtimepkg.Server[Configuration, State]
	ServerState[Configuration, State any] = runtimepkg.ServerState[Configuration, State]
	ServerOptions                         = configpkg.ServerOptions
	ServerDependencies                    = runtimepkg.ServerDependencies

	Middleware             = runtimepkg.Middleware
	MiddlewareContext      = runtimepkg.MiddlewareContext
	MiddlewareBuilder      = runtimepkg.MiddlewareBuilder
	MiddlewareRegistration = runtimepkg.MiddlewareRegistration

	ErrorKind      = runtimepkg.ErrorKind
	ConnectorError = runtimepkg.ConnectorError

	VersionRange = runtimepkg.VersionRange

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger
)

// Error kinds owned by the runtime.
const (
	KindMalformedRequest          = runtimepkg.KindMalformedRequest
	KindUnsupportedVersion        = runtimepkg.KindUnsupportedVersion
	KindPayloadTooLarge           = runtimepkg.KindPayloadTooLarge
	KindStateInitializationFailed = runtimepkg.KindStateInitializationFailed
	KindInternal                  = runtimepkg.KindInternal
	KindUnauthorized              = runtimepkg.KindUnauthorized
)

// Error kinds raised by connector logic.
const (
	KindInvalidRequest       = runtimepkg.KindInvalidRequest
	KindUnprocessableContent = runtimepkg.KindUnprocessableContent
	KindUnsupportedOperation = runtimepkg.KindUnsupportedOperation
	KindConflict             = runtimepkg.KindConflict
	KindConstraintNotMet     = runtimepkg.KindConstraintNotMet
	KindUnhealthy            = runtimepkg.KindUnhealthy
)

const (
	DefaultMaxBodySize = configpkg.DefaultMaxBodySize
	DefaultPort        = configpkg.DefaultPort
)

var (
	NewVersionRange     = runtimepkg.NewVersionRange
	DefaultVersionRange = runtimepkg.DefaultVersionRange

	NewInvalidRequest       = runtimepkg.NewInvalidRequest
	NewUnprocessableContent = runtimepkg.NewUnprocessableContent
	NewUnsupportedOperation = runtimepkg.NewUnsupportedOperation
	NewConflict             = runtimepkg.NewConflict
	NewConstraintNotMet     = runtimepkg.NewConstraintNotMet
	NewUnhealthy            = runtimepkg.NewUnhealthy
	NewInternalError        = runtimepkg.NewInternalError

	DefaultMiddlewares    = runtimepkg.DefaultMiddlewares
	RequestIDMiddleware   = runtimepkg.RequestIDMiddleware
	TracerMiddleware      = runtimepkg.TracerMiddleware
	MetricsMiddleware     = runtimepkg.MetricsMiddleware
	LogRequestsMiddleware = runtimepkg.LogRequestsMiddleware
	RecovererMiddleware   = runtimepkg.RecovererMiddleware
	AuthMiddleware        = runtimepkg.AuthMiddleware
	VersionGateMiddleware = runtimepkg.VersionGateMiddleware
	BodyLimitMiddleware   = runtimepkg.BodyLimitMiddleware

	RequestIDFromContext = runtimepkg.RequestIDFromContext

	SetupTelemetry = runtimepkg.SetupTelemetry
	CheckHealth    = runtimepkg.CheckHealth

	Marshal   = jsoncodec.Marshal
	Unmarshal = jsoncodec.Unmarshal
	Encode    = jsoncodec.Encode
	Decode    = jsoncodec.Decode

	NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger
	NewDefaultLogger     = loggingpkg.NewDefaultLogger
)

func NewServer[Configuration, State any](
	ctx context.Context,
	connector Connector[Configuration, State],
	options ServerOptions,
	deps ServerDependencies,
) *Server[Configuration, State] {
	return runtimepkg.NewServer(ctx, connector, options, deps)
}

func TryNewServer[Configuration, State any](
	ctx context.Context,
	connector Connector[Configuration, State],
	options ServerOptions,
	deps ServerDependencies,
) (*Server[Configuration, State], error) {
	return runtimepkg.TryNewServer(ctx, connector, options, deps)
}

// Serve runs the connector server until the context is cancelled or a
// termination signal arrives.
func Serve[Configuration, State any](
	ctx context.Context,
	connector Connector[Configuration, State],
	options ServerOptions,
	deps ServerDependencies,
) error {
	return runtimepkg.Serve(ctx, connector, options, deps)
}

// NewCommand builds the connector CLI with serve and check-health subcommands.
func NewCommand[Configuration, State any](connector Connector[Configuration, State]) *cobra.Command {
	return runtimepkg.NewCommand(connector)
}

// DefaultMain parses the CLI and runs the connector. It is the usual
// entrypoint for a connector's main function.
func DefaultMain[Configuration, State any](connector Connector[Configuration, State]) error {
	return runtimepkg.DefaultMain(connector)
}
