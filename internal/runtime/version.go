package runtime

import (
	"fmt"

	"github.com/Masterminds/semver"

	"github.com/hasura/ndc-sdk-go/schema"
)

// VersionRange is the closed [min, max] interval of protocol versions the
// runtime accepts from clients. Comparison is pure; the range is fixed at
// startup.
type VersionRange struct {
	min *semver.Version
	max *semver.Version
}

// NewVersionRange parses the bounds of a version range.
func NewVersionRange(minVersion, maxVersion string) (VersionRange, error) {
	lower, err := semver.NewVersion(minVersion)
	if err != nil {
		return VersionRange{}, fmt.Errorf("invalid minimum protocol version %q: %w", minVersion, err)
	}
	upper, err := semver.NewVersion(maxVersion)
	if err != nil {
		return VersionRange{}, fmt.Errorf("invalid maximum protocol version %q: %w", maxVersion, err)
	}
	if upper.LessThan(lower) {
		return VersionRange{}, fmt.Errorf("protocol version range [%s, %s] is empty", minVersion, maxVersion)
	}
	return VersionRange{min: lower, max: upper}, nil
}

// DefaultVersionRange accepts every protocol version up to the one this SDK
// ships with.
func DefaultVersionRange() VersionRange {
	versions, err := NewVersionRange("0.1.0", schema.Version)
	if err != nil {
		// The bounds are compile-time constants.
		panic(err)
	}
	return versions
}

func (r VersionRange) String() string {
	return fmt.Sprintf("[%s, %s]", r.min, r.max)
}

// Check gates a client-declared protocol version. An absent header passes:
// compatibility is assumed when the client declares nothing. A version that
// fails to parse or falls outside the range is rejected before any connector
// code runs.
func (r VersionRange) Check(header string) *ConnectorError {
	if header == "" {
		return nil
	}
	requested, err := semver.NewVersion(header)
	if err != nil {
		return newError(KindUnsupportedVersion,
			fmt.Sprintf("invalid protocol version %q", header)).
			WithDetails(map[string]any{"supported_range": r.String()})
	}
	if requested.LessThan(r.min) || requested.GreaterThan(r.max) {
		return newError(KindUnsupportedVersion,
			fmt.Sprintf("protocol version %s is not supported, expected a version in %s", requested, r)).
			WithDetails(map[string]any{"supported_range": r.String(), "requested": requested.String()})
	}
	return nil
}
