// Package executor implements a breadth-first GraphQL executor that batches
// remote field resolution per depth.
//
// # Model
//
// Fields are either projections (schema.Field.Async == false) or remote
// (Async == true). Projections are resolved immediately through
// Runtime.ResolveSync and never add depth. Remote fields found while expanding
// a depth are queued and resolved together in one Runtime.BatchResolveAsync
// call; their completed values may expose further remote fields, which are
// queued for the next batch. For a query whose remote nesting is d levels deep,
// BatchResolveAsync is called exactly d times.
//
// Only fields present in the collected selection set create work. A remote
// field that the client did not select is never handed to the runtime, which
// is what keeps nested fetches lazy.
//
// # Collection
//
// collectFields merges fields by response name in query order, evaluates
// @skip and @include, and applies fragments whose type condition is the
// object type itself or an interface or union that includes it.
//
// # Completion
//
//   - Non-Null: complete the inner type; a null result records an error and
//     the null moves to the nearest nullable ancestor.
//   - List: complete each item with an index path. A null item in a
//     [T!] list nullifies the list.
//   - Scalar and Enum: Runtime.SerializeLeafValue.
//   - Interface and Union: Runtime.ResolveType, checked against the possible
//     types, then completed as an object.
//   - Object: collect sub-fields and continue as above.
//
// When a Non-Null violation is raised by a remote field, the executor records
// the nearest nullable ancestor of that field when the task is queued, writes
// null there, and drops every queued task below it before the next batch. If
// no nullable ancestor exists the whole data entry becomes null.
//
// # Errors
//
// Errors carry the message, the response path and, when the error implements
// Extensions() map[string]any, its extensions. Batch results are independent,
// so one failing task never fails its siblings.
package executor
