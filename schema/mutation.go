package schema

import "encoding/json"

// MutationRequest is the body of the mutation and mutation/explain routes.
type MutationRequest struct {
	Operations              []MutationOperation        `json:"operations"`
	CollectionRelationships map[string]json.RawMessage `json:"collection_relationships"`
}

// MutationOperationType discriminates mutation operations. The current
// protocol version defines procedures only.
type MutationOperationType string

const MutationOperationProcedure MutationOperationType = "procedure"

// MutationOperation is a single operation within a mutation request.
type MutationOperation struct {
	Type      MutationOperationType `json:"type"`
	Name      string                `json:"name"`
	Arguments json.RawMessage       `json:"arguments,omitempty"`
	Fields    json.RawMessage       `json:"fields,omitempty"`
}

// MutationResponse carries one result per requested operation, in order.
type MutationResponse struct {
	OperationResults []MutationOperationResults `json:"operation_results"`
}

// MutationOperationResults is the outcome of a single mutation operation.
type MutationOperationResults struct {
	Type   MutationOperationType `json:"type"`
	Result any                   `json:"result,omitempty"`
}
