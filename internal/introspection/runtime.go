package introspection

import (
	"context"
	"sort"

	executor "github.com/hanpama/pokegraph/internal/executor"
	schema "github.com/hanpama/pokegraph/internal/schema"
)

// Wrapped pairs a runtime that answers introspection fields with the schema
// extended by __schema and __type.
type Wrapped struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap returns base extended with introspection. The original schema is not
// modified and is the one reported to clients.
func Wrap(base executor.Runtime, sch *schema.Schema) *Wrapped {
	extended := extendSchemaWithIntrospection(sch)
	return &Wrapped{
		Runtime: &runtime{base: base, queryType: sch.QueryType, reported: sch},
		Schema:  extended,
	}
}

type runtime struct {
	base      executor.Runtime
	queryType string
	reported  *schema.Schema
}

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if objectType == r.queryType {
		switch field {
		case "__schema":
			return r.reported, nil
		case "__type":
			name, _ := args["name"].(string)
			if t := r.reported.Types[name]; t != nil {
				return t, nil
			}
			return nil, nil
		}
	}
	if v, ok := r.resolveMeta(source, field, args); ok {
		return v, nil
	}
	return r.base.ResolveSync(ctx, objectType, field, source, args)
}

func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	return r.base.BatchResolveAsync(ctx, tasks)
}

func (r *runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	return r.base.ResolveType(ctx, abstractType, value)
}

func (r *runtime) SerializeLeafValue(ctx context.Context, typ string, value any) (any, error) {
	switch typ {
	case "__TypeKind", "__DirectiveLocation":
		switch v := value.(type) {
		case schema.TypeKind:
			return string(v), nil
		case schema.TypeRefKind:
			return string(v), nil
		}
	}
	return r.base.SerializeLeafValue(ctx, typ, value)
}

// resolveMeta projects fields of the schema model onto the introspection
// types. It reports false for sources that are not part of the model.
func (r *runtime) resolveMeta(source any, field string, args map[string]any) (any, bool) {
	sch := r.reported
	switch src := source.(type) {
	case *schema.Schema:
		return schemaField(sch, src, field)
	case *schema.Type:
		return typeField(sch, src, field, args)
	case *schema.TypeRef:
		return typeRefField(sch, src, field, args)
	case *schema.Field:
		return fieldField(src, field, args)
	case *schema.InputValue:
		return inputValueField(src, field)
	case *schema.EnumValue:
		return enumValueField(src, field)
	case *schema.Directive:
		return directiveField(src, field, args)
	}
	return nil, false
}

func schemaField(sch, src *schema.Schema, field string) (any, bool) {
	switch field {
	case "types":
		out := make([]*schema.Type, 0, len(src.Types))
		for _, t := range src.Types {
			out = append(out, t)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out, true
	case "queryType":
		return src.GetQueryType(), true
	case "mutationType":
		return src.GetMutationType(), true
	case "subscriptionType":
		return src.GetSubscriptionType(), true
	case "directives":
		out := make([]*schema.Directive, 0, len(src.Directives))
		for _, d := range src.Directives {
			out = append(out, d)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out, true
	case "description":
		return optional(src.Description), true
	}
	return nil, false
}

func typeField(sch *schema.Schema, t *schema.Type, field string, args map[string]any) (any, bool) {
	includeDeprecated := boolArg(args, "includeDeprecated")
	switch field {
	case "kind":
		return t.Kind, true
	case "name":
		return t.Name, true
	case "description":
		return optional(t.Description), true
	case "specifiedByURL":
		return t.SpecifiedByURL, true
	case "isOneOf":
		if t.Kind != schema.TypeKindInputObject {
			return nil, true
		}
		return t.OneOf, true
	case "ofType":
		return nil, true
	case "fields":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, true
		}
		out := []*schema.Field{}
		for _, f := range t.GetOrderedFields() {
			if includeDeprecated || !f.IsDeprecated {
				out = append(out, f)
			}
		}
		return out, true
	case "interfaces":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, true
		}
		return lookupTypes(sch, t.Interfaces), true
	case "possibleTypes":
		if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
			return nil, true
		}
		return lookupTypes(sch, t.PossibleTypes), true
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil, true
		}
		out := []*schema.EnumValue{}
		for _, ev := range t.EnumValues {
			if includeDeprecated || !ev.IsDeprecated {
				out = append(out, ev)
			}
		}
		return out, true
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil, true
		}
		return filterInputValues(t.GetOrderedInputFields(), includeDeprecated), true
	}
	return nil, false
}

// typeRefField serves __Type for wrapped references. Named references are
// answered by the named type itself.
func typeRefField(sch *schema.Schema, tr *schema.TypeRef, field string, args map[string]any) (any, bool) {
	if tr.Kind == schema.TypeRefKindNonNull || tr.Kind == schema.TypeRefKindList {
		switch field {
		case "kind":
			return tr.Kind, true
		case "ofType":
			return tr.OfType, true
		}
		return nil, true
	}
	def := sch.Types[tr.Named]
	if def == nil {
		return nil, true
	}
	return typeField(sch, def, field, args)
}

func fieldField(f *schema.Field, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return f.Name, true
	case "description":
		return optional(f.Description), true
	case "args":
		return filterInputValues(f.GetOrderedArguments(), boolArg(args, "includeDeprecated")), true
	case "type":
		return f.Type, true
	case "isDeprecated":
		return f.IsDeprecated, true
	case "deprecationReason":
		return deprecation(f.IsDeprecated, f.DeprecationReason), true
	}
	return nil, false
}

func inputValueField(a *schema.InputValue, field string) (any, bool) {
	switch field {
	case "name":
		return a.Name, true
	case "description":
		return optional(a.Description), true
	case "type":
		return a.Type, true
	case "defaultValue":
		if a.DefaultValue == nil {
			return nil, true
		}
		return schema.RenderValue(a.DefaultValue), true
	case "isDeprecated":
		return a.IsDeprecated, true
	case "deprecationReason":
		return deprecation(a.IsDeprecated, a.DeprecationReason), true
	}
	return nil, false
}

func enumValueField(ev *schema.EnumValue, field string) (any, bool) {
	switch field {
	case "name":
		return ev.Name, true
	case "description":
		return optional(ev.Description), true
	case "isDeprecated":
		return ev.IsDeprecated, true
	case "deprecationReason":
		return deprecation(ev.IsDeprecated, ev.DeprecationReason), true
	}
	return nil, false
}

func directiveField(d *schema.Directive, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return d.Name, true
	case "description":
		return optional(d.Description), true
	case "isRepeatable":
		return d.IsRepeatable, true
	case "locations":
		return append([]string(nil), d.Locations...), true
	case "args":
		return filterInputValues(d.Arguments, boolArg(args, "includeDeprecated")), true
	}
	return nil, false
}

func lookupTypes(sch *schema.Schema, names []string) []*schema.Type {
	out := make([]*schema.Type, 0, len(names))
	for _, name := range names {
		if def := sch.Types[name]; def != nil {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func filterInputValues(in []*schema.InputValue, includeDeprecated bool) []*schema.InputValue {
	out := []*schema.InputValue{}
	for _, a := range in {
		if includeDeprecated || !a.IsDeprecated {
			out = append(out, a)
		}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deprecation(deprecated bool, reason string) *string {
	if !deprecated {
		return nil
	}
	return &reason
}

func boolArg(args map[string]any, name string) bool {
	b, _ := args[name].(bool)
	return b
}
