package restrt

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/hanpama/pokegraph/internal/executor"
)

// Projector is implemented by decoded upstream values. Field returns the value
// of a schema field and whether the value carries it.
type Projector interface {
	Field(name string) (any, bool)
}

// Typer is implemented by values of abstract GraphQL types.
type Typer interface {
	TypeName() string
}

// Runtime implements executor.Runtime over a Registry of REST-backed resolvers.
//   - ResolveSync only projects fields off the parent value and never does I/O.
//   - BatchResolveAsync runs every task of a depth concurrently, bounded by
//     the configured limit, and writes each result into its task's slot.
//   - A failing task never affects its siblings.
type Runtime struct {
	reg            *Registry
	maxConcurrency int
}

var _ executor.Runtime = (*Runtime)(nil)

// Option configures a Runtime.
type Option func(*Runtime)

// WithMaxConcurrency bounds the number of resolvers running at once within one
// batch. Zero or less means unbounded.
func WithMaxConcurrency(n int) Option { return func(r *Runtime) { r.maxConcurrency = n } }

func NewRuntime(registry *Registry, opts ...Option) *Runtime {
	r := &Runtime{reg: registry, maxConcurrency: 8}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ResolveSync projects field from source. Missing fields resolve to null.
func (r *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	switch src := source.(type) {
	case nil:
		return nil, nil
	case Projector:
		v, ok := src.Field(field)
		if !ok {
			return nil, nil
		}
		return v, nil
	case map[string]any:
		return src[field], nil
	default:
		return nil, fmt.Errorf("restrt: cannot project %s.%s from %T", objectType, field, source)
	}
}

// BatchResolveAsync runs the registered resolver of each task.
func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if len(tasks) == 1 {
		results[0] = r.run(ctx, tasks[0])
		return results
	}

	var g errgroup.Group
	if r.maxConcurrency > 0 {
		g.SetLimit(r.maxConcurrency)
	}
	for i, task := range tasks {
		g.Go(func() error {
			results[i] = r.run(ctx, task)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Runtime) run(ctx context.Context, task executor.AsyncResolveTask) (res executor.AsyncResolveResult) {
	fn := r.reg.Lookup(task.ObjectType, task.Field)
	if fn == nil {
		return executor.AsyncResolveResult{Error: fmt.Errorf("restrt: no resolver registered for %s.%s", task.ObjectType, task.Field)}
	}
	if err := ctx.Err(); err != nil {
		return executor.AsyncResolveResult{Error: err}
	}
	defer func() {
		if p := recover(); p != nil {
			res = executor.AsyncResolveResult{Error: fmt.Errorf("restrt: resolver %s.%s panicked: %v", task.ObjectType, task.Field, p)}
		}
	}()
	v, err := fn(ctx, task.Source, task.Args)
	if err != nil {
		return executor.AsyncResolveResult{Error: err}
	}
	return executor.AsyncResolveResult{Value: v}
}

// ResolveType reads the concrete type name off a Typer or a "__typename" key.
func (r *Runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	switch v := value.(type) {
	case Typer:
		return v.TypeName(), nil
	case map[string]any:
		if name, ok := v["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("restrt: cannot determine concrete type of %s from %T", abstractType, value)
}

// SerializeLeafValue coerces built-in scalars to their JSON form. Pointers are
// dereferenced; a nil pointer is null. Enums and custom scalars pass through.
func (r *Runtime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	value = deref(value)
	if value == nil {
		return nil, nil
	}
	switch scalarOrEnumTypeName {
	case "Int":
		return serializeInt(value)
	case "Float":
		return serializeFloat(value)
	case "String":
		if s, ok := value.(string); ok {
			return s, nil
		}
	case "Boolean":
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case "ID":
		switch v := value.(type) {
		case string:
			return v, nil
		default:
			if n, err := serializeInt(v); err == nil {
				return strconv.Itoa(n.(int)), nil
			}
		}
	default:
		return value, nil
	}
	return nil, fmt.Errorf("%s cannot represent value: %v", scalarOrEnumTypeName, value)
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func serializeInt(v any) (any, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case float64:
		if x != math.Trunc(x) {
			return nil, fmt.Errorf("Int cannot represent non-integer value: %v", x)
		}
		n = int64(x)
	default:
		return nil, fmt.Errorf("Int cannot represent value: %v", v)
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %d", n)
	}
	return int(n), nil
}

func serializeFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return nil, fmt.Errorf("Float cannot represent value: %v", v)
}
