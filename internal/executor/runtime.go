package executor

import "context"

// Runtime connects the executor to the data behind the schema.
//
// Per depth the executor calls ResolveSync for every projection it reaches and
// then BatchResolveAsync once with every remote field it queued. ResolveSync is
// never called for a remote field, and BatchResolveAsync is never called with
// an empty task list. Tasks under a path already nulled by a Non-Null
// violation are dropped before the call.
//
// Identifiers are GraphQL names: objectType is the parent type ("Query" for
// root fields, "Form" for Form.detail), source is the parent value (nil at
// the root) and args are already coerced. Implementations must not modify
// source or args and must be safe for concurrent operations.
//
// Any returned error becomes a GraphQL error at the field's path. Errors with
// an Extensions() map[string]any method keep their extensions.
type Runtime interface {
	// ResolveSync returns the raw value of a projection. (nil, nil) is null.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves one depth of remote fields. It returns
	// exactly one result per task, in task order, and a failing task must not
	// fail its siblings.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// ResolveType names the concrete object type of a value returned for an
	// interface or union field.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeafValue turns a scalar or enum value into a JSON-safe Go
	// value: int for Int, float64 for Float, string for String, ID and enums,
	// bool for Boolean.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

// AsyncResolveTask is one queued remote field.
type AsyncResolveTask struct {
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
}

// AsyncResolveResult is the outcome of one task. Value is the raw value
// before completion.
type AsyncResolveResult struct {
	Value any
	Error error
}
