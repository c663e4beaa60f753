package introspection

import (
	schema "github.com/hanpama/pokegraph/internal/schema"
)

// extendSchemaWithIntrospection returns a copy of original with the
// introspection types added and __schema/__type on the query type.
func extendSchemaWithIntrospection(original *schema.Schema) *schema.Schema {
	extended := schema.NewSchema(original.Description)
	extended.QueryType = original.QueryType
	extended.MutationType = original.MutationType
	extended.SubscriptionType = original.SubscriptionType
	extended.Directives = original.Directives
	extended.Validated = original.Validated
	for name, typ := range original.Types {
		extended.Types[name] = typ
	}
	for _, t := range introspectionTypes() {
		extended.AddType(t)
	}

	if q := original.GetQueryType(); q != nil {
		qc := *q
		qc.Fields = append(append([]*schema.Field(nil), q.Fields...),
			schema.NewField("__schema", "Access the current type schema of this server.", nonNull("__Schema")),
			schema.NewField("__type", "Request the type information of a single type.", named("__Type")).
				AddArgument(schema.NewInputValue("name", "", nonNull("String"))),
		)
		extended.Types[q.Name] = &qc
	}
	return extended
}

func named(name string) *schema.TypeRef   { return schema.NamedType(name) }
func nonNull(name string) *schema.TypeRef { return schema.NonNullType(schema.NamedType(name)) }

// listOf returns [name!]!.
func listOf(name string) *schema.TypeRef {
	return schema.NonNullType(schema.ListType(nonNull(name)))
}

// nullableListOf returns [name!].
func nullableListOf(name string) *schema.TypeRef {
	return schema.ListType(nonNull(name))
}

func includeDeprecated() *schema.InputValue {
	return schema.NewInputValue("includeDeprecated", "", named("Boolean")).SetDefault(false)
}

func object(name, description string, fields ...*schema.Field) *schema.Type {
	t := schema.NewType(name, schema.TypeKindObject, description)
	for _, f := range fields {
		t.AddField(f)
	}
	return t
}

func enum(name string, values ...string) *schema.Type {
	t := schema.NewType(name, schema.TypeKindEnum, "")
	for _, v := range values {
		t.AddEnumValue(schema.NewEnumValue(v, ""))
	}
	return t
}

func introspectionTypes() []*schema.Type {
	f := schema.NewField
	return []*schema.Type{
		object("__Schema", "A GraphQL Schema defines the capabilities of a GraphQL server.",
			f("description", "", named("String")),
			f("types", "A list of all types supported by this server.", listOf("__Type")),
			f("queryType", "The type that query operations will be rooted at.", nonNull("__Type")),
			f("mutationType", "", named("__Type")),
			f("subscriptionType", "", named("__Type")),
			f("directives", "A list of all directives supported by this server.", listOf("__Directive")),
		),
		object("__Type", "",
			f("kind", "", nonNull("__TypeKind")),
			f("name", "", named("String")),
			f("description", "", named("String")),
			f("specifiedByURL", "", named("String")),
			f("fields", "", nullableListOf("__Field")).AddArgument(includeDeprecated()),
			f("interfaces", "", nullableListOf("__Type")),
			f("possibleTypes", "", nullableListOf("__Type")),
			f("enumValues", "", nullableListOf("__EnumValue")).AddArgument(includeDeprecated()),
			f("inputFields", "", nullableListOf("__InputValue")).AddArgument(includeDeprecated()),
			f("ofType", "", named("__Type")),
			f("isOneOf", "", named("Boolean")),
		),
		object("__Field", "",
			f("name", "", nonNull("String")),
			f("description", "", named("String")),
			f("args", "", listOf("__InputValue")).AddArgument(includeDeprecated()),
			f("type", "", nonNull("__Type")),
			f("isDeprecated", "", nonNull("Boolean")),
			f("deprecationReason", "", named("String")),
		),
		object("__InputValue", "",
			f("name", "", nonNull("String")),
			f("description", "", named("String")),
			f("type", "", nonNull("__Type")),
			f("defaultValue", "", named("String")),
			f("isDeprecated", "", nonNull("Boolean")),
			f("deprecationReason", "", named("String")),
		),
		object("__EnumValue", "",
			f("name", "", nonNull("String")),
			f("description", "", named("String")),
			f("isDeprecated", "", nonNull("Boolean")),
			f("deprecationReason", "", named("String")),
		),
		object("__Directive", "",
			f("name", "", nonNull("String")),
			f("description", "", named("String")),
			f("isRepeatable", "", nonNull("Boolean")),
			f("locations", "", listOf("__DirectiveLocation")),
			f("args", "", listOf("__InputValue")).AddArgument(includeDeprecated()),
		),
		enum("__TypeKind", "SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL"),
		enum("__DirectiveLocation",
			"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION", "FRAGMENT_SPREAD",
			"INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA", "SCALAR", "OBJECT", "FIELD_DEFINITION",
			"ARGUMENT_DEFINITION", "INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
			"INPUT_FIELD_DEFINITION"),
	}
}
