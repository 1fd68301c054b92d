package schema

import "encoding/json"

// QueryRequest is the body of the query and query/explain routes.
type QueryRequest struct {
	Collection              string                     `json:"collection"`
	Query                   Query                      `json:"query"`
	Arguments               map[string]json.RawMessage `json:"arguments"`
	CollectionRelationships map[string]json.RawMessage `json:"collection_relationships"`
	Variables               []json.RawMessage          `json:"variables,omitempty"`
}

// Query describes the fields, aggregates, ordering, and predicate applied to
// a collection. The runtime passes it through to the connector untouched.
type Query struct {
	Aggregates map[string]json.RawMessage `json:"aggregates,omitempty"`
	Fields     map[string]json.RawMessage `json:"fields,omitempty"`
	Limit      *uint32                    `json:"limit,omitempty"`
	Offset     *uint32                    `json:"offset,omitempty"`
	OrderBy    json.RawMessage            `json:"order_by,omitempty"`
	Predicate  json.RawMessage            `json:"predicate,omitempty"`
}

// QueryResponse is one row set per query variable set.
type QueryResponse []RowSet

// RowSet holds the rows and aggregate values produced for one variable set.
type RowSet struct {
	Aggregates map[string]any   `json:"aggregates,omitempty"`
	Rows       []map[string]any `json:"rows,omitempty"`
}

// ExplainResponse is the body of the query/explain and mutation/explain
// routes: free-form key/value details of the connector's execution plan.
type ExplainResponse struct {
	Details map[string]string `json:"details"`
}
