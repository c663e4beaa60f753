package executor

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	language "github.com/hanpama/pokegraph/internal/language"
	schema "github.com/hanpama/pokegraph/internal/schema"
)

// executionState holds the state of a single operation.
type executionState struct {
	runtime        Runtime
	schema         *schema.Schema
	document       *language.QueryDocument
	variableValues map[string]any
	context        context.Context
	pending        []asyncTask
	errors         []GraphQLError
	// response paths set to null by Non-Null propagation; work below them is dropped
	nullified map[string]struct{}
	// set when a Non-Null violation reaches the operation root
	dataNull bool
}

// asyncTask is a remote field waiting for the next batch flush.
type asyncTask struct {
	Task         AsyncResolveTask
	ResponsePath Path
	// Boundary is the nearest nullable position at or above ResponsePath.
	// An empty boundary means the violation nullifies the whole response.
	Boundary  Path
	FieldType *schema.TypeRef
	Fields    []*language.Field
}

// asyncPending is written into the response tree until the task completes.
type asyncPending struct{}

type Executor struct {
	runtime Runtime
	schema  *schema.Schema
}

func NewExecutor(runtime Runtime, schema *schema.Schema) *Executor {
	return &Executor{runtime: runtime, schema: schema}
}

// Schema returns the schema the executor was built with.
func (e *Executor) Schema() *schema.Schema { return e.schema }

func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation := getOperation(document, operationName)
	if operation == nil {
		if operationName != "" {
			return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("unknown operation named %q", operationName)}}}
		}
		return &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}}
	}

	coercedVariableValues, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	case language.Subscription:
		rootType = e.schema.GetSubscriptionType()
	default:
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("unsupported operation type: %s", operation.Operation)}}}
	}
	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)}}}
	}

	state := &executionState{
		runtime:        e.runtime,
		schema:         e.schema,
		document:       document,
		variableValues: coercedVariableValues,
		context:        ctx,
		errors:         []GraphQLError{},
		nullified:      make(map[string]struct{}),
	}

	responseRoot := executeSelectionSet(state, rootType, operation.SelectionSet, initialValue, Path{}, Path{})
	if responseRoot == nil {
		return &ExecutionResult{Data: nil, Errors: state.errors}
	}

	// One batch per depth until no remote work remains.
	for len(state.pending) > 0 && !state.dataNull {
		live, results := flushAsyncTasks(state)
		for i, r := range results {
			completeAsyncField(state, live[i], r, responseRoot)
			if state.dataNull {
				break
			}
		}
	}
	if state.dataNull {
		return &ExecutionResult{Data: nil, Errors: state.errors}
	}
	return &ExecutionResult{Data: responseRoot, Errors: state.errors}
}

// executeSelectionSet resolves sync fields in place and queues async ones.
// It returns nil when a Non-Null child produced null, so the caller can
// propagate the null further up.
func executeSelectionSet(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path, boundary Path) *Object {
	groupedFields := collectFields(state, objectType, selectionSet)
	resultMap := newObject(len(groupedFields.orderedFields()))

	for _, collected := range groupedFields.orderedFields() {
		responseName := collected.ResponseName
		fields := collected.Fields
		fieldPath := path.with(responseName)

		if fields[0].Name == "__typename" {
			resultMap.Set(responseName, objectType.Name)
			continue
		}

		fieldDef := objectType.FieldByName(fields[0].Name)
		if fieldDef == nil {
			state.addError(fmt.Sprintf("Cannot query field '%s' on type '%s'", fields[0].Name, objectType.Name), fieldPath)
			continue
		}

		fieldBoundary := boundary
		if !schema.IsNonNull(fieldDef.Type) {
			fieldBoundary = fieldPath
		}
		fieldResult := executeField(state, objectType, fieldDef, objectValue, fields, fieldPath, fieldBoundary)

		if _, queued := fieldResult.(asyncPending); queued {
			resultMap.Set(responseName, fieldResult)
			continue
		}
		if isNullish(fieldResult) {
			if schema.IsNonNull(fieldDef.Type) {
				return nil
			}
			resultMap.Set(responseName, nil)
			continue
		}
		resultMap.Set(responseName, fieldResult)
	}

	return resultMap
}

func executeField(state *executionState, objectType *schema.Type, fieldDef *schema.Field, objectValue any, fields []*language.Field, path, boundary Path) any {
	argumentValues, ok := coerceArgumentValues(fieldDef, fields[0].Arguments, state.variableValues, state, path)
	if !ok {
		return nil
	}

	if !fieldDef.Async {
		value, err := state.runtime.ResolveSync(state.context, objectType.Name, fieldDef.Name, objectValue, argumentValues)
		if err != nil {
			state.addLocatedError(err, path)
			return nil
		}
		return completeValue(state, fieldDef.Type, fields, value, path, boundary)
	}

	state.pending = append(state.pending, asyncTask{
		Task: AsyncResolveTask{
			ObjectType: objectType.Name,
			Field:      fieldDef.Name,
			Source:     objectValue,
			Args:       argumentValues,
		},
		ResponsePath: path,
		Boundary:     boundary,
		FieldType:    fieldDef.Type,
		Fields:       fields,
	})
	return asyncPending{}
}

// flushAsyncTasks drops tasks under nullified paths and resolves the rest in
// one runtime call.
func flushAsyncTasks(state *executionState) ([]asyncTask, []AsyncResolveResult) {
	live := make([]asyncTask, 0, len(state.pending))
	for _, at := range state.pending {
		if state.isNullified(at.ResponsePath) {
			continue
		}
		live = append(live, at)
	}
	state.pending = nil
	if len(live) == 0 {
		return nil, nil
	}

	tasks := make([]AsyncResolveTask, len(live))
	for i, at := range live {
		tasks[i] = at.Task
	}
	results := state.runtime.BatchResolveAsync(state.context, tasks)
	if len(results) != len(tasks) {
		fixed := make([]AsyncResolveResult, len(tasks))
		for i := range fixed {
			if i < len(results) {
				fixed[i] = results[i]
			} else {
				fixed[i] = AsyncResolveResult{Error: fmt.Errorf("runtime returned %d results for %d tasks", len(results), len(tasks))}
			}
		}
		results = fixed
	}
	return live, results
}

func completeAsyncField(state *executionState, at asyncTask, res AsyncResolveResult, responseRoot *Object) {
	path := at.ResponsePath
	if state.isNullified(path) {
		return
	}

	if res.Error != nil {
		state.addLocatedError(res.Error, path)
		if schema.IsNonNull(at.FieldType) {
			state.propagateNull(responseRoot, at.Boundary)
			return
		}
		setValueAtPath(responseRoot, path, nil)
		return
	}

	completed := completeValue(state, at.FieldType, at.Fields, res.Value, path, at.Boundary)
	if isNullish(completed) {
		if schema.IsNonNull(at.FieldType) {
			state.propagateNull(responseRoot, at.Boundary)
			return
		}
		setValueAtPath(responseRoot, path, nil)
		return
	}
	setValueAtPath(responseRoot, path, completed)
}

// propagateNull writes null at the boundary and prunes pending work below it.
func (state *executionState) propagateNull(responseRoot *Object, boundary Path) {
	if len(boundary) == 0 {
		state.dataNull = true
		return
	}
	setValueAtPath(responseRoot, boundary, nil)
	state.nullified[boundary.key()] = struct{}{}
}

func completeValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path, boundary Path) any {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			if !state.hasErrorAtPath(path) {
				state.addError(fmt.Sprintf("Cannot return null for non-nullable field %s", path.String()), path)
			}
			return nil
		}
		return completeValue(state, schema.Unwrap(fieldType), fields, result, path, boundary)
	}

	if isNullish(result) {
		return nil
	}

	if schema.IsList(fieldType) {
		return completeListValue(state, fieldType, fields, result, path, boundary)
	}

	namedType := schema.GetNamedType(fieldType)
	typeObj := state.schema.Types[namedType]
	if typeObj == nil {
		state.addError(fmt.Sprintf("Unknown type: %s", namedType), path)
		return nil
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := state.runtime.SerializeLeafValue(state.context, namedType, result)
		if err != nil {
			state.addLocatedError(err, path)
			return nil
		}
		return serialized
	case schema.TypeKindObject:
		return completeObjectValue(state, typeObj, fields, result, path, boundary)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return completeAbstractValue(state, typeObj, fields, result, path, boundary)
	default:
		state.addError(fmt.Sprintf("Cannot complete value of unexpected type: %s", typeObj.Kind), path)
		return nil
	}
}

func completeListValue(state *executionState, listType *schema.TypeRef, fields []*language.Field, result any, path, boundary Path) any {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			state.addError(fmt.Sprintf("Expected list value, got %T", result), path)
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	completed := make([]any, len(items))
	for i, item := range items {
		itemPath := path.with(i)
		itemBoundary := boundary
		if !schema.IsNonNull(inner) {
			itemBoundary = itemPath
		}
		v := completeValue(state, inner, fields, item, itemPath, itemBoundary)
		if isNullish(v) {
			if schema.IsNonNull(inner) {
				return nil
			}
			v = nil
		}
		completed[i] = v
	}
	return completed
}

func completeObjectValue(state *executionState, objectType *schema.Type, fields []*language.Field, result any, path, boundary Path) any {
	sub := mergeSelectionSets(fields)
	m := executeSelectionSet(state, objectType, sub, result, path, boundary)
	if m == nil {
		return nil
	}
	return m
}

func completeAbstractValue(state *executionState, abstractType *schema.Type, fields []*language.Field, result any, path, boundary Path) any {
	typeName, err := state.runtime.ResolveType(state.context, abstractType.Name, result)
	if err != nil {
		state.addLocatedError(err, path)
		return nil
	}
	objectType := state.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject || !abstractType.HasPossibleType(typeName) {
		state.addError(fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime. Got: %s", abstractType.Name, typeName), path)
		return nil
	}
	return completeObjectValue(state, objectType, fields, result, path, boundary)
}

func (state *executionState) isNullified(p Path) bool {
	if len(state.nullified) == 0 {
		return false
	}
	for i := 1; i <= len(p); i++ {
		if _, ok := state.nullified[p[:i].key()]; ok {
			return true
		}
	}
	return false
}

// getOperation retrieves the operation from the document
func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" {
		if len(document.Operations) == 1 {
			return document.Operations[0]
		}
		return nil
	}
	return document.Operations.ForName(operationName)
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return schema.NonNullType(typeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return schema.NamedType(t.NamedType)
	}
	if t.Elem != nil {
		return schema.ListType(typeRefFromAST(t.Elem))
	}
	return nil
}

func (state *executionState) addError(message string, path Path) {
	state.errors = append(state.errors, GraphQLError{Message: message, Path: path})
}

// addLocatedError records err at path, carrying extensions when err (or
// anything it wraps) provides them.
func (state *executionState) addLocatedError(err error, path Path) {
	ge := GraphQLError{Message: err.Error(), Path: path}
	var ext interface{ Extensions() map[string]any }
	if errors.As(err, &ext) {
		ge.Extensions = ext.Extensions()
	}
	state.errors = append(state.errors, ge)
}

func (state *executionState) hasErrorAtPath(path Path) bool {
	for _, err := range state.errors {
		if reflect.DeepEqual(err.Path, path) {
			return true
		}
	}
	return false
}

// mergeSelectionSets merges selection sets from multiple fields
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
