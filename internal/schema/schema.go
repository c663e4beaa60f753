// Package schema holds the executable model of a GraphQL schema: named types,
// their fields and arguments, and which fields are remote. It is built from
// SDL by BuildFromSDL and consumed by the executor and introspection.
package schema

import language "github.com/hanpama/pokegraph/internal/language"

type Schema struct {
	Description      string
	QueryType        string
	MutationType     string
	SubscriptionType string

	Types      map[string]*Type
	Directives map[string]*Directive

	// Validated is the gqlparser schema the model was built from. Queries are
	// validated against it before execution. Nil for hand-assembled schemas.
	Validated *language.ValidatedSchema `json:"-"`
}

func (s *Schema) GetQueryType() *Type        { return s.rootType(s.QueryType) }
func (s *Schema) GetMutationType() *Type     { return s.rootType(s.MutationType) }
func (s *Schema) GetSubscriptionType() *Type { return s.rootType(s.SubscriptionType) }

func (s *Schema) rootType(name string) *Type {
	if name == "" {
		return nil
	}
	return s.Types[name]
}

type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// Type is a named type. Which slices are populated depends on Kind:
// Fields and Interfaces for objects and interfaces, PossibleTypes for
// abstract types, EnumValues for enums and InputFields for input objects.
type Type struct {
	Name           string
	Kind           TypeKind
	Description    string
	Fields         []*Field
	Interfaces     []string
	PossibleTypes  []string
	EnumValues     []*EnumValue
	InputFields    []*InputValue
	SpecifiedByURL *string
	OneOf          bool
}

type Field struct {
	Name        string
	Description string
	Type        *TypeRef
	Arguments   []*InputValue

	// Async marks a remote field. The executor never resolves it inline;
	// it is queued and handed to the runtime with the rest of its depth.
	Async bool

	IsDeprecated      bool
	DeprecationReason string
}

type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}
