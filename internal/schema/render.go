package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render prints s as SDL for clients. Types and directives are sorted by
// name; fields, arguments and enum values keep declaration order. Built-in
// scalars and directives are omitted, and so is @resolve.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	w := &sdlWriter{}
	for _, name := range sortedKeys(s.Types) {
		t := s.Types[name]
		if isBuiltinType(t) {
			continue
		}
		w.typeDef(t)
	}
	for _, name := range sortedKeys(s.Directives) {
		d := s.Directives[name]
		if isBuiltinDirective(d) {
			continue
		}
		w.directiveDef(d)
	}
	return strings.TrimRight(w.String(), "\n") + "\n"
}

// String renders the reference in SDL notation, e.g. [Form!]!.
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindList:
		return "[" + t.OfType.String() + "]"
	case TypeRefKindNonNull:
		return t.OfType.String() + "!"
	default:
		return t.Named
	}
}

type sdlWriter struct{ strings.Builder }

func (w *sdlWriter) description(desc, indent string) {
	if desc == "" {
		return
	}
	w.WriteString(indent + `"""` + "\n")
	for _, line := range strings.Split(strings.ReplaceAll(desc, `"""`, `\"""`), "\n") {
		w.WriteString(indent + line + "\n")
	}
	w.WriteString(indent + `"""` + "\n")
}

func (w *sdlWriter) deprecated(isDeprecated bool, reason string) {
	if !isDeprecated {
		return
	}
	w.WriteString(" @deprecated")
	if reason != "" {
		w.WriteString("(reason: " + strconv.Quote(reason) + ")")
	}
}

func (w *sdlWriter) inputValue(v *InputValue) {
	w.WriteString(v.Name + ": " + v.Type.String())
	if v.DefaultValue != nil {
		w.WriteString(" = " + renderValue(v.DefaultValue))
	}
	w.deprecated(v.IsDeprecated, v.DeprecationReason)
}

func (w *sdlWriter) arguments(args []*InputValue) {
	if len(args) == 0 {
		return
	}
	w.WriteString("(")
	for i, a := range args {
		if i > 0 {
			w.WriteString(", ")
		}
		w.inputValue(a)
	}
	w.WriteString(")")
}

func (w *sdlWriter) typeDef(t *Type) {
	w.description(t.Description, "")
	switch t.Kind {
	case TypeKindScalar:
		w.WriteString("scalar " + t.Name)
		if t.SpecifiedByURL != nil {
			w.WriteString(" @specifiedBy(url: " + strconv.Quote(*t.SpecifiedByURL) + ")")
		}
		w.WriteString("\n\n")
		return
	case TypeKindUnion:
		w.WriteString("union " + t.Name + " = " + strings.Join(t.PossibleTypes, " | ") + "\n\n")
		return
	case TypeKindObject:
		w.WriteString("type " + t.Name)
	case TypeKindInterface:
		w.WriteString("interface " + t.Name)
	case TypeKindEnum:
		w.WriteString("enum " + t.Name)
	case TypeKindInputObject:
		w.WriteString("input " + t.Name)
		if t.OneOf {
			w.WriteString(" @oneOf")
		}
	}
	if len(t.Interfaces) > 0 {
		w.WriteString(" implements " + strings.Join(t.Interfaces, " & "))
	}
	w.WriteString(" {\n")
	for _, f := range t.Fields {
		w.description(f.Description, "  ")
		w.WriteString("  " + f.Name)
		w.arguments(f.Arguments)
		w.WriteString(": " + f.Type.String())
		w.deprecated(f.IsDeprecated, f.DeprecationReason)
		w.WriteString("\n")
	}
	for _, v := range t.EnumValues {
		w.description(v.Description, "  ")
		w.WriteString("  " + v.Name)
		w.deprecated(v.IsDeprecated, v.DeprecationReason)
		w.WriteString("\n")
	}
	for _, v := range t.InputFields {
		w.description(v.Description, "  ")
		w.WriteString("  ")
		w.inputValue(v)
		w.WriteString("\n")
	}
	w.WriteString("}\n\n")
}

func (w *sdlWriter) directiveDef(d *Directive) {
	w.description(d.Description, "")
	w.WriteString("directive @" + d.Name)
	w.arguments(d.Arguments)
	if d.IsRepeatable {
		w.WriteString(" repeatable")
	}
	w.WriteString(" on " + strings.Join(d.Locations, " | ") + "\n\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RenderValue renders value as a GraphQL literal.
func RenderValue(value any) string { return renderValue(value) }

func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = renderValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		parts := make([]string, 0, len(v))
		for _, k := range sortedKeys(v) {
			parts = append(parts, k+": "+renderValue(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}
