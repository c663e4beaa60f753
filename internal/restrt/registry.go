package restrt

import (
	"context"
	"errors"
	"fmt"
	"sort"

	schema "github.com/hanpama/pokegraph/internal/schema"
)

// ResolverFunc resolves one remote field for one parent value. source is nil
// for root fields; args are already coerced.
type ResolverFunc func(ctx context.Context, source any, args map[string]any) (any, error)

// Registry maps "Type.field" keys to resolvers. It is filled once at startup
// and read concurrently afterwards.
type Registry struct {
	resolvers map[string]ResolverFunc
}

func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[string]ResolverFunc)}
}

func key(objectType, field string) string { return objectType + "." + field }

// Register adds fn for objectType.field. Registering the same key twice is a
// programming error and panics.
func (r *Registry) Register(objectType, field string, fn ResolverFunc) *Registry {
	k := key(objectType, field)
	if _, dup := r.resolvers[k]; dup {
		panic(fmt.Sprintf("restrt: resolver for %s registered twice", k))
	}
	r.resolvers[k] = fn
	return r
}

// Lookup returns the resolver for objectType.field or nil.
func (r *Registry) Lookup(objectType, field string) ResolverFunc {
	return r.resolvers[key(objectType, field)]
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.resolvers))
	for k := range r.resolvers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Check verifies that every async field of s has a resolver and that every
// resolver belongs to an async field.
func (r *Registry) Check(s *schema.Schema) error {
	var errs []error
	wanted := make(map[string]bool)
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := s.Types[name]
		if t.Kind != schema.TypeKindObject {
			continue
		}
		for _, f := range t.Fields {
			if !f.Async {
				continue
			}
			k := key(t.Name, f.Name)
			wanted[k] = true
			if r.resolvers[k] == nil {
				errs = append(errs, fmt.Errorf("no resolver registered for %s", k))
			}
		}
	}
	for _, k := range r.Keys() {
		if !wanted[k] {
			errs = append(errs, fmt.Errorf("resolver %s does not match a remote field", k))
		}
	}
	return errors.Join(errs...)
}
