// Package schema contains the wire types of the NDC protocol: capabilities,
// schema, query and mutation requests and responses, and the error envelope.
//
// The types mirror the protocol specification and are treated as an opaque,
// versioned data contract. Fields whose shape the runtime never inspects are
// kept as raw JSON so connectors can exchange them without the SDK chasing
// every revision of the specification.
package schema

import "encoding/json"

// Version is the protocol specification version this SDK implements.
const Version = "0.1.6"

// VersionHeader carries the client's declared protocol version, if any.
const VersionHeader = "X-Hasura-NDC-Version"

// Type is an opaque protocol type expression (named, nullable, array, or
// predicate). Connectors produce it; the runtime never interprets it.
type Type = json.RawMessage

// LeafCapability marks a capability as supported. Absence means unsupported.
type LeafCapability struct{}

// CapabilitiesResponse is served on the capabilities route.
type CapabilitiesResponse struct {
	Version      string       `json:"version"`
	Capabilities Capabilities `json:"capabilities"`
}

// Capabilities advertises the optional protocol features a connector supports.
type Capabilities struct {
	Query         QueryCapabilities    `json:"query"`
	Mutation      MutationCapabilities `json:"mutation"`
	Relationships *LeafCapability      `json:"relationships,omitempty"`
}

// QueryCapabilities advertises optional query features.
type QueryCapabilities struct {
	Aggregates   *LeafCapability `json:"aggregates,omitempty"`
	Variables    *LeafCapability `json:"variables,omitempty"`
	Explain      *LeafCapability `json:"explain,omitempty"`
	NestedFields *LeafCapability `json:"nested_fields,omitempty"`
}

// MutationCapabilities advertises optional mutation features.
type MutationCapabilities struct {
	Transactional *LeafCapability `json:"transactional,omitempty"`
	Explain       *LeafCapability `json:"explain,omitempty"`
}

// SchemaResponse is served on the schema route.
type SchemaResponse struct {
	ScalarTypes map[string]ScalarType `json:"scalar_types"`
	ObjectTypes map[string]ObjectType `json:"object_types"`
	Collections []CollectionInfo      `json:"collections"`
	Functions   []FunctionInfo        `json:"functions"`
	Procedures  []ProcedureInfo       `json:"procedures"`
}

// ScalarType describes a scalar exposed by a connector.
type ScalarType struct {
	Representation      json.RawMessage            `json:"representation,omitempty"`
	AggregateFunctions  map[string]json.RawMessage `json:"aggregate_functions"`
	ComparisonOperators map[string]json.RawMessage `json:"comparison_operators"`
}

// ObjectType describes a named row or document shape.
type ObjectType struct {
	Description string                 `json:"description,omitempty"`
	Fields      map[string]ObjectField `json:"fields"`
}

// ObjectField is a single field of an object type.
type ObjectField struct {
	Description string `json:"description,omitempty"`
	Type        Type   `json:"type"`
}

// CollectionInfo describes a queryable collection.
type CollectionInfo struct {
	Name                  string                     `json:"name"`
	Description           string                     `json:"description,omitempty"`
	Type                  string                     `json:"type"`
	Arguments             map[string]ArgumentInfo    `json:"arguments"`
	UniquenessConstraints map[string]json.RawMessage `json:"uniqueness_constraints"`
	ForeignKeys           map[string]json.RawMessage `json:"foreign_keys"`
}

// FunctionInfo describes a read-only function.
type FunctionInfo struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Arguments   map[string]ArgumentInfo `json:"arguments"`
	ResultType  Type                    `json:"result_type"`
}

// ProcedureInfo describes a procedure invoked through the mutation route.
type ProcedureInfo struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Arguments   map[string]ArgumentInfo `json:"arguments"`
	ResultType  Type                    `json:"result_type"`
}

// ArgumentInfo describes a named argument.
type ArgumentInfo struct {
	Description string `json:"description,omitempty"`
	Type        Type   `json:"type"`
}
