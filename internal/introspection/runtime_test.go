package introspection

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/pokegraph/internal/executor"
	language "github.com/hanpama/pokegraph/internal/language"
	"github.com/hanpama/pokegraph/internal/restrt"
	schema "github.com/hanpama/pokegraph/internal/schema"
)

func buildSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.BuildFromSDL(`
"""Entry point."""
type Query {
  pokemon(name: String!, limit: Int = 3): Pokemon @resolve
  legacy: String @deprecated(reason: "use pokemon")
}
type Pokemon { name: String forms: [Form!]! }
type Form { name: String }
`)
	require.NoError(t, err)
	return sch
}

func run(t *testing.T, w *Wrapped, query string) string {
	t.Helper()
	doc, errs := language.LoadQuery(w.Schema.Validated, query)
	require.Empty(t, errs)
	res := executor.NewExecutor(w.Runtime, w.Schema).ExecuteRequest(context.Background(), doc, "", nil, nil)
	require.Empty(t, res.Errors)
	b, err := json.Marshal(res.Data)
	require.NoError(t, err)
	return string(b)
}

func TestSchemaRoot(t *testing.T) {
	w := Wrap(restrt.NewRuntime(restrt.NewRegistry()), buildSchema(t))
	got := run(t, w, `{ __schema { description queryType { name kind } mutationType { name } } }`)
	require.JSONEq(t, `{"__schema":{"description":null,"queryType":{"name":"Query","kind":"OBJECT"},"mutationType":null}}`, got)
}

func TestTypeLookup(t *testing.T) {
	w := Wrap(restrt.NewRuntime(restrt.NewRegistry()), buildSchema(t))
	got := run(t, w, `{
  __type(name: "Query") {
    description
    fields {
      name
      args { name defaultValue type { kind name ofType { name } } }
      type { kind name }
    }
  }
  missing: __type(name: "Nope") { name }
}`)
	require.JSONEq(t, `{
  "__type": {
    "description": "Entry point.",
    "fields": [{
      "name": "pokemon",
      "args": [
        {"name": "name", "defaultValue": null, "type": {"kind": "NON_NULL", "name": null, "ofType": {"name": "String"}}},
        {"name": "limit", "defaultValue": "3", "type": {"kind": "SCALAR", "name": "Int", "ofType": null}}
      ],
      "type": {"kind": "OBJECT", "name": "Pokemon"}
    }]
  },
  "missing": null
}`, got)
}

func TestWrappedTypeRefs(t *testing.T) {
	w := Wrap(restrt.NewRuntime(restrt.NewRegistry()), buildSchema(t))
	got := run(t, w, `{ __type(name: "Pokemon") { fields(includeDeprecated: true) { name type { kind ofType { kind ofType { kind ofType { name kind } } } } } } }`)
	require.JSONEq(t, `{"__type":{"fields":[
  {"name":"name","type":{"kind":"SCALAR","ofType":null}},
  {"name":"forms","type":{"kind":"NON_NULL","ofType":{"kind":"LIST","ofType":{"kind":"NON_NULL","ofType":{"name":"Form","kind":"OBJECT"}}}}}
]}}`, got)
}

func TestDeprecatedFields(t *testing.T) {
	w := Wrap(restrt.NewRuntime(restrt.NewRegistry()), buildSchema(t))
	got := run(t, w, `{ __type(name: "Query") { fields(includeDeprecated: true) { name isDeprecated deprecationReason } } }`)
	require.JSONEq(t, `{"__type":{"fields":[
  {"name":"pokemon","isDeprecated":false,"deprecationReason":null},
  {"name":"legacy","isDeprecated":true,"deprecationReason":"use pokemon"}
]}}`, got)
}

func TestOriginalSchemaUntouched(t *testing.T) {
	sch := buildSchema(t)
	w := Wrap(restrt.NewRuntime(restrt.NewRegistry()), sch)
	require.Nil(t, sch.GetQueryType().FieldByName("__schema"))
	require.NotNil(t, w.Schema.GetQueryType().FieldByName("__schema"))
	require.Nil(t, sch.Types["__Type"])
	require.Same(t, sch.Validated, w.Schema.Validated)
}

func TestTypenameField(t *testing.T) {
	sch := buildSchema(t)
	doc, err := language.ParseQuery("{__typename}")
	require.NoError(t, err)
	res := executor.NewExecutor(restrt.NewRuntime(restrt.NewRegistry()), sch).ExecuteRequest(context.Background(), doc, "", nil, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"__typename": "Query"}, executor.Plain(res.Data))
}
