package schema

// ErrorResponse is the wire-level error envelope. Every error leaving the
// runtime carries a stable machine-readable kind, a human-readable message,
// and optional structured details. Internal context (stack traces, wrapped
// causes) is logged server-side and never serialized here.
type ErrorResponse struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
