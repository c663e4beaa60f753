package executor

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	language "github.com/hanpama/pokegraph/internal/language"
	schema "github.com/hanpama/pokegraph/internal/schema"
)

// coerceVariableValues applies defaults and input coercion to the variables
// declared by operation. Undeclared variables are dropped.
func coerceVariableValues(s *schema.Schema, operation *language.OperationDefinition, provided map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(operation.VariableDefinitions))
	for _, def := range operation.VariableDefinitions {
		name, typ := def.Variable, def.Type
		val, ok := lookupVariable(provided, name)
		switch {
		case !ok && def.DefaultValue != nil:
			val = astValueToGo(def.DefaultValue)
		case !ok && typ.NonNull:
			return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, typ.String())
		case !ok:
			continue
		case val == nil && typ.NonNull:
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, typ.String())
		}
		cv, err := coerceValue(s, val, typeRefFromAST(typ))
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %w", name, typ.String(), err)
		}
		out[name] = cv
	}
	return out, nil
}

// lookupVariable accepts names with or without the leading "$".
func lookupVariable(vars map[string]any, name string) (any, bool) {
	if v, ok := vars[name]; ok {
		return v, true
	}
	v, ok := vars[strings.TrimPrefix(name, "$")]
	return v, ok
}

// coerceArgumentValues coerces the arguments of one field. Failures are
// recorded at path and reported as false; the field then resolves to null.
func coerceArgumentValues(fieldDef *schema.Field, arguments language.ArgumentList, variableValues map[string]any, state *executionState, path Path) (map[string]any, bool) {
	out := make(map[string]any, len(fieldDef.Arguments))
	ok := true
	for _, def := range fieldDef.Arguments {
		arg := arguments.ForName(def.Name)
		if arg == nil {
			switch {
			case def.DefaultValue != nil:
				out[def.Name] = def.DefaultValue
			case schema.IsNonNull(def.Type):
				state.addError(fmt.Sprintf("argument '%s' of required type was not provided", def.Name), path)
				ok = false
			}
			continue
		}
		cv, err := coerceValue(state.schema, valueFromASTWithVars(arg.Value, variableValues), def.Type)
		if err != nil {
			state.addError(fmt.Sprintf("argument '%s' cannot be coerced: %v", def.Name, err), path)
			ok = false
			continue
		}
		out[def.Name] = cv
	}
	return out, ok
}

// valueFromASTWithVars converts an argument literal, substituting variables at
// any depth.
func valueFromASTWithVars(value *language.Value, variableValues map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		v, _ := lookupVariable(variableValues, value.Raw)
		return v
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromASTWithVars(c.Value, variableValues)
		}
		return out
	case language.ObjectValue:
		out := make(map[string]any, len(value.Children))
		for _, c := range value.Children {
			out[c.Name] = valueFromASTWithVars(c.Value, variableValues)
		}
		return out
	}
	return astValueToGo(value)
}

// astValueToGo converts a constant literal.
func astValueToGo(value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.IntValue:
		n, _ := strconv.Atoi(value.Raw)
		return n
	case language.FloatValue:
		f, _ := strconv.ParseFloat(value.Raw, 64)
		return f
	case language.BooleanValue:
		return value.Raw == "true"
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw
	case language.ListValue, language.ObjectValue:
		return valueFromASTWithVars(value, nil)
	}
	return nil
}

// coerceValue applies input coercion for target. A single value given for a
// list type becomes a one-element list.
func coerceValue(s *schema.Schema, value any, target *schema.TypeRef) (any, error) {
	if target.IsNonNull() {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type")
		}
		return coerceValue(s, value, target.Unwrap())
	}
	if value == nil {
		return nil, nil
	}
	if target.IsList() {
		inner := target.Unwrap()
		items, ok := value.([]any)
		if !ok {
			item, err := coerceValue(s, value, inner)
			if err != nil {
				return nil, err
			}
			return []any{item}, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			cv, err := coerceValue(s, item, inner)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	}

	name := target.GetNamedType()
	if coerce, ok := builtinScalarInput[name]; ok {
		cv, err := coerce(value)
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %v (%T) to %s", value, value, name)
		}
		return cv, nil
	}

	var t *schema.Type
	if s != nil {
		t = s.Types[name]
	}
	switch {
	case t == nil:
		return value, nil
	case t.Kind == schema.TypeKindInputObject:
		return coerceInputObject(s, value, t)
	case t.Kind == schema.TypeKindEnum:
		return coerceEnum(value, t)
	}
	// custom scalars pass through
	return value, nil
}

func coerceEnum(value any, t *schema.Type) (any, error) {
	name, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("enum %s expects a name, got %T", t.Name, value)
	}
	for _, ev := range t.EnumValues {
		if ev.Name == name {
			return name, nil
		}
	}
	return nil, fmt.Errorf("value %q does not exist in enum %s", name, t.Name)
}

func coerceInputObject(s *schema.Schema, value any, t *schema.Type) (any, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("input object %s expects an object, got %T", t.Name, value)
	}
	defs := make(map[string]*schema.InputValue, len(t.InputFields))
	for _, f := range t.InputFields {
		defs[f.Name] = f
	}
	for name := range fields {
		if defs[name] == nil {
			return nil, fmt.Errorf("field '%s' is not defined by type %s", name, t.Name)
		}
	}

	out := make(map[string]any, len(t.InputFields))
	for _, f := range t.InputFields {
		raw, present := fields[f.Name]
		if !present {
			if f.DefaultValue != nil {
				out[f.Name] = f.DefaultValue
			} else if f.Type.IsNonNull() {
				return nil, fmt.Errorf("required field '%s' of type %s was not provided", f.Name, t.Name)
			}
			continue
		}
		cv, err := coerceValue(s, raw, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field '%s': %w", f.Name, err)
		}
		out[f.Name] = cv
	}
	if t.OneOf && len(out) != 1 {
		return nil, fmt.Errorf("oneOf input %s requires exactly one field", t.Name)
	}
	return out, nil
}

var errNotCoercible = errors.New("not coercible")

// builtinScalarInput coerces variable and argument values of the built-in
// scalars. JSON numbers arrive as float64.
var builtinScalarInput = map[string]func(any) (any, error){
	"Int": func(v any) (any, error) {
		if f, ok := v.(float64); ok {
			if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
				return nil, errNotCoercible
			}
			return int(f), nil
		}
		if n, ok := asInt64(v); ok {
			return int(n), nil
		}
		return nil, errNotCoercible
	},
	"Float": func(v any) (any, error) {
		switch f := v.(type) {
		case float64:
			return f, nil
		case float32:
			return float64(f), nil
		}
		if n, ok := asInt64(v); ok {
			return float64(n), nil
		}
		return nil, errNotCoercible
	},
	"String": func(v any) (any, error) {
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, errNotCoercible
	},
	"Boolean": func(v any) (any, error) {
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return nil, errNotCoercible
	},
	"ID": func(v any) (any, error) {
		if s, ok := v.(string); ok {
			return s, nil
		}
		if f, ok := v.(float64); ok && f == math.Trunc(f) {
			return strconv.FormatInt(int64(f), 10), nil
		}
		if n, ok := asInt64(v); ok {
			return strconv.FormatInt(n, 10), nil
		}
		return nil, errNotCoercible
	},
}

// asInt64 accepts any signed integer kind.
func asInt64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	}
	return 0, false
}
