package runtime

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	configpkg "github.com/hasura/ndc-sdk-go/internal/runtime/config"
)

const telemetryFlushTimeout = 10 * time.Second

// DefaultMain parses the standard connector command line and runs the
// selected subcommand. It is intended to replace a connector's main function
// entirely:
//
//	func main() {
//		if err := ndc.DefaultMain(&MyConnector{}); err != nil {
//			log.Fatal(err)
//		}
//	}
func DefaultMain[Configuration, State any](connector Connector[Configuration, State]) error {
	return NewCommand(connector).Execute()
}

// NewCommand builds the connector command tree: serve and check-health.
// Every flag falls back to the conventional environment variable so the
// binary runs unchanged inside the platform's deployment harness.
func NewCommand[Configuration, State any](connector Connector[Configuration, State]) *cobra.Command {
	root := &cobra.Command{
		Use:           "connector",
		Short:         "Hasura data connector",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCommand(connector), newCheckHealthCommand())
	return root
}

func newServeCommand[Configuration, State any](connector Connector[Configuration, State]) *cobra.Command {
	var options configpkg.ServerOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the connector over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Serve(cmd.Context(), connector, options, ServerDependencies{})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&options.ConfigurationDir, "configuration",
		os.Getenv("HASURA_CONFIGURATION_DIRECTORY"), "connector configuration directory")
	flags.StringVar(&options.Host, "host",
		os.Getenv("HASURA_CONNECTOR_HOST"), "listen address, empty for all interfaces")
	flags.IntVar(&options.Port, "port",
		envInt("HASURA_CONNECTOR_PORT", configpkg.DefaultPort), "listen port")
	flags.StringVar(&options.ServiceTokenSecret, "service-token-secret",
		os.Getenv("HASURA_SERVICE_TOKEN_SECRET"), "bearer token required on protocol routes")
	flags.StringVar(&options.ServiceName, "service-name",
		os.Getenv("OTEL_SERVICE_NAME"), "service name reported in traces")
	flags.StringVar(&options.OTLPEndpoint, "otlp-endpoint",
		os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), "OTLP collector endpoint, empty disables export")

	return cmd
}

func newCheckHealthCommand() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "check-health",
		Short: "Probe a running connector's health route",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := CheckHealth(cmd.Context(), host, port); err != nil {
				cmd.PrintErrln("Health check failed.")
				return err
			}
			cmd.Println("Health check succeeded.")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "connector host, defaults to localhost")
	cmd.Flags().IntVar(&port, "port", envInt("HASURA_CONNECTOR_PORT", configpkg.DefaultPort), "connector port")

	return cmd
}

// Serve runs the connector service until the context is cancelled or the
// process receives SIGINT/SIGTERM, then flushes telemetry and drains
// in-flight requests.
func Serve[Configuration, State any](
	ctx context.Context,
	connector Connector[Configuration, State],
	options configpkg.ServerOptions,
	deps ServerDependencies,
) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := SetupTelemetry(ctx, options.ServiceName, options.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		_ = shutdownTelemetry(flushCtx)
	}()

	server, err := TryNewServer(ctx, connector, options, deps)
	if err != nil {
		return err
	}
	return server.ListenAndServe(ctx)
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
