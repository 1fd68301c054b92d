// Package config holds the server options consumed by the connector runtime.
package config

import (
	"errors"
	"fmt"
)

// DefaultMaxBodySize bounds request bodies at 100 MiB unless overridden.
const DefaultMaxBodySize int64 = 100 * 1024 * 1024

// DefaultPort is the conventional connector port.
const DefaultPort = 8080

// ServerOptions groups everything the runtime needs to serve a connector.
// The value is loaded once at process start and never mutated afterwards.
type ServerOptions struct {
	// ConfigurationDir is the directory handed to the connector's
	// configuration parser.
	ConfigurationDir string

	// Host is the listen address. Empty listens on all interfaces.
	Host string
	// Port is the listen port. Zero falls back to DefaultPort.
	Port int

	// ServiceTokenSecret, when set, requires clients to present it as a
	// bearer token on every route except the health check.
	ServiceTokenSecret string

	// ServiceName identifies the connector in traces and logs.
	ServiceName string
	// OTLPEndpoint enables trace export when non-empty.
	OTLPEndpoint string

	// MaxBodySize bounds request bodies in bytes. Zero falls back to
	// DefaultMaxBodySize; negative disables the limit.
	MaxBodySize int64

	// MinProtocolVersion and MaxProtocolVersion bound the protocol versions
	// accepted from clients. Empty values fall back to the range the SDK
	// ships with.
	MinProtocolVersion string
	MaxProtocolVersion string
}

// WithDefaults returns a copy with zero values replaced by defaults.
func (o ServerOptions) WithDefaults() ServerOptions {
	if o.Port == 0 {
		o.Port = DefaultPort
	}
	if o.MaxBodySize == 0 {
		o.MaxBodySize = DefaultMaxBodySize
	}
	return o
}

// ListenAddress renders the host/port pair for net.Listen.
func (o *ServerOptions) ListenAddress() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// Validate checks the options for values the runtime cannot serve with.
func (o *ServerOptions) Validate() error {
	var errs []error

	if o.Port < 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("server: invalid port %d", o.Port))
	}
	if (o.MinProtocolVersion == "") != (o.MaxProtocolVersion == "") {
		errs = append(errs, errors.New("server: protocol version bounds must be set together"))
	}

	return errors.Join(errs...)
}

func (o ServerOptions) String() string {
	// Redact the token so option dumps are safe to log.
	copied := o
	if copied.ServiceTokenSecret != "" {
		copied.ServiceTokenSecret = "***REDACTED***"
	}
	type optionsAlias ServerOptions
	return fmt.Sprintf("%+v", optionsAlias(copied))
}
