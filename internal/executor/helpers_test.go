package executor

import (
	"context"
	"testing"

	language "github.com/hanpama/pokegraph/internal/language"
	schema "github.com/hanpama/pokegraph/internal/schema"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

func newSchemaWithQueryType(query *schema.Type, additional ...*schema.Type) *schema.Schema {
	sch := schema.NewSchema("")
	sch.SetQueryType(query.Name)
	sch.AddType(query)
	for _, name := range []string{"String", "Int", "Boolean"} {
		sch.AddType(schema.NewType(name, schema.TypeKindScalar, ""))
	}
	for _, t := range additional {
		sch.AddType(t)
	}
	return sch
}

func newObjectType(name string, fields ...*schema.Field) *schema.Type {
	t := schema.NewType(name, schema.TypeKindObject, "")
	for _, field := range fields {
		t.AddField(field)
	}
	return t
}

func field(name string, typ *schema.TypeRef) *schema.Field {
	return schema.NewField(name, "", typ)
}

func remote(name string, typ *schema.TypeRef) *schema.Field {
	return schema.NewField(name, "", typ).SetAsync(true)
}

// project reads a key off a map source, the way a DTO projection would.
func project(key string) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return source.(map[string]any)[key], nil
	}
}

// pokedexSchema mirrors the gateway's shape:
//
//	type Query    { pokemon(name: String!): Pokemon @resolve }
//	type Pokemon  { name: String  forms: [Form] }
//	type Form     { name: String  url: String  detail: FormDetail @resolve }
//	type FormDetail { id: Int }
func pokedexSchema(detailType *schema.TypeRef) *schema.Schema {
	pokemonField := remote("pokemon", schema.NamedType("Pokemon"))
	pokemonField.AddArgument(schema.NewInputValue("name", "", schema.NonNullType(schema.NamedType("String"))))
	return newSchemaWithQueryType(
		newObjectType("Query", pokemonField),
		newObjectType("Pokemon",
			field("name", schema.NamedType("String")),
			field("forms", schema.ListType(schema.NamedType("Form"))),
		),
		newObjectType("Form",
			field("name", schema.NamedType("String")),
			field("url", schema.NamedType("String")),
			remote("detail", detailType),
		),
		newObjectType("FormDetail", field("id", schema.NamedType("Int"))),
	)
}

func pikachu() map[string]any {
	return map[string]any{
		"name": "pikachu",
		"forms": []any{
			map[string]any{"name": "pikachu", "url": "/form/25"},
			map[string]any{"name": "pikachu-cap", "url": "/form/10094"},
		},
	}
}

func pokedexResolvers() map[string]MockResolver {
	return map[string]MockResolver{
		"Query.pokemon": func(ctx context.Context, source any, args map[string]any) (any, error) {
			return pikachu(), nil
		},
		"Pokemon.name":  project("name"),
		"Pokemon.forms": project("forms"),
		"Form.name":     project("name"),
		"Form.url":      project("url"),
		"Form.detail": func(ctx context.Context, source any, args map[string]any) (any, error) {
			return map[string]any{"id": len(source.(map[string]any)["url"].(string))}, nil
		},
		"FormDetail.id": project("id"),
	}
}

func countCalls(calls []Call, objectType, field string) int {
	n := 0
	for _, c := range calls {
		if c.ObjectType == objectType && c.Field == field {
			n++
		}
	}
	return n
}

// plainResult swaps ordered response objects for maps so results compare
// against map literals.
func plainResult(res *ExecutionResult) *ExecutionResult {
	if res == nil {
		return nil
	}
	return &ExecutionResult{Data: Plain(res.Data), Errors: res.Errors}
}
