package executor

// GraphQLError is one entry of the response errors list. Path is empty for
// request-level failures such as an unknown operation.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string { return e.Message }

// ExecutionResult holds partial data next to the errors raised while
// producing it. Data is nil when a Non-Null violation reached the root.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
