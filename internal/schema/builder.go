package schema

import (
	"fmt"
	"strings"

	language "github.com/hanpama/pokegraph/internal/language"
	"github.com/vektah/gqlparser/v2/ast"
)

// ResolveDirective marks a field whose value comes from a registered resolver
// rather than from the parent object. Such fields are built with Async=true.
const ResolveDirective = "resolve"

const resolveDirectiveSDL = "directive @" + ResolveDirective + " on FIELD_DEFINITION\n"

// BuildFromSDL parses and validates SDL and returns the corresponding Schema.
// The @resolve directive is declared automatically when the source omits it.
func BuildFromSDL(sdl string) (*Schema, error) {
	return BuildFromNamedSDL("schema.graphql", sdl)
}

// BuildFromNamedSDL is BuildFromSDL with a source name used in error positions.
func BuildFromNamedSDL(name, sdl string) (*Schema, error) {
	if !strings.Contains(sdl, "directive @"+ResolveDirective) {
		sdl = resolveDirectiveSDL + sdl
	}
	validated, err := language.LoadSchema(name, sdl)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	return buildFromValidated(validated), nil
}

func buildFromValidated(v *ast.Schema) *Schema {
	s := NewSchema(v.Description)
	s.Validated = v
	if v.Query != nil {
		s.SetQueryType(v.Query.Name)
	}
	if v.Mutation != nil {
		s.SetMutationType(v.Mutation.Name)
	}
	if v.Subscription != nil {
		s.SetSubscriptionType(v.Subscription.Name)
	}
	s.AddType(stringType).
		AddType(intType).
		AddType(floatType).
		AddType(booleanType).
		AddType(idType)
	s.AddDirective(includeDirective).
		AddDirective(skipDirective)

	for name, def := range v.Types {
		if strings.HasPrefix(name, "__") || def.BuiltIn {
			continue
		}
		switch def.Kind {
		case ast.Object:
			s.AddType(buildObject(def))
		case ast.Interface:
			t := buildObject(def)
			t.Kind = TypeKindInterface
			for _, pt := range v.PossibleTypes[name] {
				t.AddPossibleType(pt.Name)
			}
			s.AddType(t)
		case ast.Union:
			t := NewType(def.Name, TypeKindUnion, def.Description)
			for _, member := range def.Types {
				t.AddPossibleType(member)
			}
			s.AddType(t)
		case ast.Enum:
			t := NewType(def.Name, TypeKindEnum, def.Description)
			for _, ev := range def.EnumValues {
				e := NewEnumValue(ev.Name, ev.Description)
				if reason, ok := deprecation(ev.Directives); ok {
					e.Deprecate(reason)
				}
				t.AddEnumValue(e)
			}
			s.AddType(t)
		case ast.InputObject:
			t := NewType(def.Name, TypeKindInputObject, def.Description).
				SetOneOf(def.Directives.ForName("oneOf") != nil)
			for _, f := range def.Fields {
				t.AddInputField(buildInputValue(f.Name, f.Description, f.Type, f.DefaultValue, f.Directives))
			}
			s.AddType(t)
		case ast.Scalar:
			t := NewType(def.Name, TypeKindScalar, def.Description)
			if sb := def.Directives.ForName("specifiedBy"); sb != nil {
				if arg := sb.Arguments.ForName("url"); arg != nil && arg.Value != nil {
					url := arg.Value.Raw
					t.SpecifiedByURL = &url
				}
			}
			s.AddType(t)
		}
	}

	for name, dir := range v.Directives {
		if isPreludeDirective(dir) || name == ResolveDirective {
			continue
		}
		d := NewDirective(dir.Name, dir.Description).SetRepeatable(dir.IsRepeatable)
		for _, loc := range dir.Locations {
			d.Locations = append(d.Locations, string(loc))
		}
		for _, a := range dir.Arguments {
			d.AddArgument(buildInputValue(a.Name, a.Description, a.Type, a.DefaultValue, a.Directives))
		}
		s.AddDirective(d)
	}
	return s
}

func buildObject(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindObject, def.Description)
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	for _, fd := range def.Fields {
		if strings.HasPrefix(fd.Name, "__") {
			continue
		}
		f := NewField(fd.Name, fd.Description, buildTypeRef(fd.Type)).
			SetAsync(fd.Directives.ForName(ResolveDirective) != nil)
		if reason, ok := deprecation(fd.Directives); ok {
			f.Deprecate(reason)
		}
		for _, a := range fd.Arguments {
			f.AddArgument(buildInputValue(a.Name, a.Description, a.Type, a.DefaultValue, a.Directives))
		}
		t.AddField(f)
	}
	return t
}

func buildInputValue(name, desc string, typ *ast.Type, def *ast.Value, dirs ast.DirectiveList) *InputValue {
	in := NewInputValue(name, desc, buildTypeRef(typ))
	if def != nil {
		if v, err := def.Value(nil); err == nil {
			in.SetDefault(v)
		}
	}
	if reason, ok := deprecation(dirs); ok {
		in.Deprecate(reason)
	}
	return in
}

func buildTypeRef(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		return NonNullType(buildTypeRef(&inner))
	}
	if t.Elem != nil {
		return ListType(buildTypeRef(t.Elem))
	}
	return NamedType(t.NamedType)
}

func deprecation(dirs ast.DirectiveList) (string, bool) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "No longer supported", true
}

func isPreludeDirective(d *ast.DirectiveDefinition) bool {
	return d.Position != nil && d.Position.Src != nil && d.Position.Src.BuiltIn
}

// ----- constructors -----

func NewSchema(description string) *Schema {
	return &Schema{
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

func (s *Schema) AddType(t *Type) *Schema {
	s.Types[t.Name] = t
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	s.Directives[d.Name] = d
	return s
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type              { t.Fields = append(t.Fields, f); return t }
func (t *Type) AddInterface(name string) *Type       { t.Interfaces = append(t.Interfaces, name); return t }
func (t *Type) AddPossibleType(name string) *Type    { t.PossibleTypes = append(t.PossibleTypes, name); return t }
func (t *Type) AddEnumValue(v *EnumValue) *Type      { t.EnumValues = append(t.EnumValues, v); return t }
func (t *Type) AddInputField(v *InputValue) *Type    { t.InputFields = append(t.InputFields, v); return t }
func (t *Type) SetOneOf(oneOf bool) *Type            { t.OneOf = oneOf; return t }
func (t *Type) GetOrderedFields() []*Field           { return t.Fields }
func (t *Type) GetOrderedInputFields() []*InputValue { return t.InputFields }

// FieldByName returns the named field or nil.
func (t *Type) FieldByName(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// HasPossibleType reports whether name is a possible concrete type of t.
func (t *Type) HasPossibleType(name string) bool {
	for _, pt := range t.PossibleTypes {
		if pt == name {
			return true
		}
	}
	return false
}

// NewFieldMap returns fields in declaration order.
func NewFieldMap(fields ...*Field) []*Field { return fields }

func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

func (f *Field) SetAsync(async bool) *Field { f.Async = async; return f }

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

func (f *Field) AddArgument(a *InputValue) *Field {
	f.Arguments = append(f.Arguments, a)
	return f
}

func (f *Field) GetOrderedArguments() []*InputValue { return f.Arguments }

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (e *EnumValue) Deprecate(reason string) *EnumValue {
	e.IsDeprecated = true
	e.DeprecationReason = reason
	return e
}

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (v *InputValue) SetDefault(value any) *InputValue { v.DefaultValue = value; return v }

func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(repeatable bool) *Directive { d.IsRepeatable = repeatable; return d }

func (d *Directive) AddArgument(a *InputValue) *Directive {
	d.Arguments = append(d.Arguments, a)
	return d
}
