package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	schema "github.com/hanpama/pokegraph/internal/schema"
)

type codedError struct {
	msg  string
	code string
}

func (e *codedError) Error() string { return e.msg }

func (e *codedError) Extensions() map[string]any { return map[string]any{"code": e.code} }

// Pattern: Calls comparison + Result comparison
func TestRouting_SyncVsAsync_Calls(t *testing.T) {
	rt := NewMockRuntime(pokedexResolvers())
	exec := NewExecutor(rt, pokedexSchema(schema.NamedType("FormDetail")))
	doc := mustParseQuery(t, `{ pokemon(name: "pikachu") { name forms { name } } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
	gotCalls := rt.GetCalls()

	wantRes := &ExecutionResult{
		Data: map[string]any{
			"pokemon": map[string]any{
				"name": "pikachu",
				"forms": []any{
					map[string]any{"name": "pikachu"},
					map[string]any{"name": "pikachu-cap"},
				},
			},
		},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, plainResult(gotRes)); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	forms := pikachu()["forms"].([]any)
	wantCalls := []Call{
		{Kind: "async", ObjectType: "Query", Field: "pokemon", Source: nil, Args: map[string]any{"name": "pikachu"}, BatchID: 1},
		{Kind: "sync", ObjectType: "Pokemon", Field: "name", Source: pikachu(), Args: map[string]any{}, BatchID: 0},
		{Kind: "sync", ObjectType: "Pokemon", Field: "forms", Source: pikachu(), Args: map[string]any{}, BatchID: 0},
		{Kind: "sync", ObjectType: "Form", Field: "name", Source: forms[0], Args: map[string]any{}, BatchID: 0},
		{Kind: "sync", ObjectType: "Form", Field: "name", Source: forms[1], Args: map[string]any{}, BatchID: 0},
	}
	if diff := cmp.Diff(wantCalls, gotCalls); diff != "" {
		t.Fatalf("Runtime calls mismatch (-want +got):\n%s", diff)
	}
}

func TestLazyNestedResolution(t *testing.T) {
	t.Run("Unselected remote field is never resolved", func(t *testing.T) {
		rt := NewMockRuntime(pokedexResolvers())
		exec := NewExecutor(rt, pokedexSchema(schema.NamedType("FormDetail")))
		doc := mustParseQuery(t, `{ pokemon(name: "pikachu") { forms { name url } } }`)

		res := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
		require.Empty(t, res.Errors)
		require.Zero(t, countCalls(rt.GetCalls(), "Form", "detail"))
	})

	t.Run("Selected remote field resolves once per parent in one batch", func(t *testing.T) {
		rt := NewMockRuntime(pokedexResolvers())
		exec := NewExecutor(rt, pokedexSchema(schema.NamedType("FormDetail")))
		doc := mustParseQuery(t, `{ pokemon(name: "pikachu") { forms { name detail { id } } } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data: map[string]any{
				"pokemon": map[string]any{
					"forms": []any{
						map[string]any{"name": "pikachu", "detail": map[string]any{"id": 8}},
						map[string]any{"name": "pikachu-cap", "detail": map[string]any{"id": 11}},
					},
				},
			},
			Errors: []GraphQLError{},
		}
		if diff := cmp.Diff(wantRes, plainResult(gotRes)); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}

		var batches []int
		for _, c := range rt.GetCalls() {
			if c.Kind == CallKindAsync {
				batches = append(batches, c.BatchID)
			}
		}
		// pokemon, then both details together
		if diff := cmp.Diff([]int{1, 2, 2}, batches); diff != "" {
			t.Fatalf("batch ids mismatch (-want +got):\n%s", diff)
		}
	})
}

// Pattern: Result comparison
func TestErrors_LocatedPaths_Result(t *testing.T) {
	t.Run("Field error keeps siblings and extensions", func(t *testing.T) {
		resolvers := pokedexResolvers()
		resolvers["Form.detail"] = func(ctx context.Context, source any, args map[string]any) (any, error) {
			if source.(map[string]any)["url"] == "/form/10094" {
				return nil, fmt.Errorf("fetch form: %w", &codedError{msg: "not found", code: "NOT_FOUND"})
			}
			return map[string]any{"id": 8}, nil
		}
		rt := NewMockRuntime(resolvers)
		exec := NewExecutor(rt, pokedexSchema(schema.NamedType("FormDetail")))
		doc := mustParseQuery(t, `{ pokemon(name: "pikachu") { forms { name detail { id } } } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data: map[string]any{
				"pokemon": map[string]any{
					"forms": []any{
						map[string]any{"name": "pikachu", "detail": map[string]any{"id": 8}},
						map[string]any{"name": "pikachu-cap", "detail": nil},
					},
				},
			},
			Errors: []GraphQLError{{
				Message:    "fetch form: not found",
				Path:       Path{"pokemon", "forms", 1, "detail"},
				Extensions: map[string]any{"code": "NOT_FOUND"},
			}},
		}
		if diff := cmp.Diff(wantRes, plainResult(gotRes)); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Root error", func(t *testing.T) {
		rt := NewMockRuntime(pokedexResolvers())
		rt.SetResolver("Query", "pokemon", NewMockErrorResolver(errors.New(`Pokémon "missingno" not found`)))
		exec := NewExecutor(rt, pokedexSchema(schema.NamedType("FormDetail")))
		doc := mustParseQuery(t, `{ pokemon(name: "missingno") { name } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data:   map[string]any{"pokemon": nil},
			Errors: []GraphQLError{{Message: `Pokémon "missingno" not found`, Path: Path{"pokemon"}}},
		}
		if diff := cmp.Diff(wantRes, plainResult(gotRes)); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Missing required argument", func(t *testing.T) {
		rt := NewMockRuntime(pokedexResolvers())
		exec := NewExecutor(rt, pokedexSchema(schema.NamedType("FormDetail")))
		doc := mustParseQuery(t, `{ pokemon { name } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data:   map[string]any{"pokemon": nil},
			Errors: []GraphQLError{{Message: "argument 'name' of required type was not provided", Path: Path{"pokemon"}}},
		}
		if diff := cmp.Diff(wantRes, plainResult(gotRes)); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
		require.Empty(t, rt.GetCalls())
	})
}

// Pattern: Result comparison
func TestCompleteValue_NonNull_Propagation_Result(t *testing.T) {
	failSecondForm := func(ctx context.Context, source any, args map[string]any) (any, error) {
		if source.(map[string]any)["url"] == "/form/10094" {
			return nil, errors.New("boom")
		}
		return map[string]any{"id": 8}, nil
	}

	t.Run("Sync null nullifies parent object", func(t *testing.T) {
		sch := pokedexSchema(schema.NamedType("FormDetail"))
		sch.Types["Pokemon"].FieldByName("name").Type = schema.NonNullType(schema.NamedType("String"))
		rt := NewMockRuntime(pokedexResolvers())
		rt.SetResolver("Pokemon", "name", NewMockValueResolver(nil))
		exec := NewExecutor(rt, sch)
		doc := mustParseQuery(t, `{ pokemon(name: "pikachu") { name } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data: map[string]any{"pokemon": nil},
			Errors: []GraphQLError{{
				Message: "Cannot return null for non-nullable field pokemon.name",
				Path:    Path{"pokemon", "name"},
			}},
		}
		if diff := cmp.Diff(wantRes, plainResult(gotRes)); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Async error nullifies nearest nullable list item", func(t *testing.T) {
		rt := NewMockRuntime(pokedexResolvers())
		rt.SetResolver("Form", "detail", failSecondForm)
		exec := NewExecutor(rt, pokedexSchema(schema.NonNullType(schema.NamedType("FormDetail"))))
		doc := mustParseQuery(t, `{ pokemon(name: "pikachu") { forms { name detail { id } } } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data: map[string]any{
				"pokemon": map[string]any{
					"forms": []any{
						map[string]any{"name": "pikachu", "detail": map[string]any{"id": 8}},
						nil,
					},
				},
			},
			Errors: []GraphQLError{{Message: "boom", Path: Path{"pokemon", "forms", 1, "detail"}}},
		}
		if diff := cmp.Diff(wantRes, plainResult(gotRes)); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Queued work under a nullified path is dropped", func(t *testing.T) {
		sch := pokedexSchema(schema.NonNullType(schema.NamedType("FormDetail")))
		sch.Types["Form"].AddField(remote("sprite", schema.NamedType("Sprite")))
		sch.AddType(newObjectType("Sprite", remote("url", schema.NamedType("String"))))

		rt := NewMockRuntime(pokedexResolvers())
		rt.SetResolver("Form", "detail", failSecondForm)
		rt.SetResolver("Form", "sprite", NewMockValueResolver(map[string]any{}))
		rt.SetResolver("Sprite", "url", NewMockValueResolver("front.png"))
		exec := NewExecutor(rt, sch)
		doc := mustParseQuery(t, `{ pokemon(name: "pikachu") { forms { sprite { url } detail { id } } } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data: map[string]any{
				"pokemon": map[string]any{
					"forms": []any{
						map[string]any{"sprite": map[string]any{"url": "front.png"}, "detail": map[string]any{"id": 8}},
						nil,
					},
				},
			},
			Errors: []GraphQLError{{Message: "boom", Path: Path{"pokemon", "forms", 1, "detail"}}},
		}
		if diff := cmp.Diff(wantRes, plainResult(gotRes)); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
		require.Equal(t, 1, countCalls(rt.GetCalls(), "Sprite", "url"))
	})

	t.Run("Non-null root field nullifies data", func(t *testing.T) {
		sch := pokedexSchema(schema.NamedType("FormDetail"))
		sch.Types["Query"].FieldByName("pokemon").Type = schema.NonNullType(schema.NamedType("Pokemon"))
		rt := NewMockRuntime(pokedexResolvers())
		rt.SetResolver("Query", "pokemon", NewMockErrorResolver(errors.New("boom")))
		exec := NewExecutor(rt, sch)
		doc := mustParseQuery(t, `{ pokemon(name: "pikachu") { name } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data:   nil,
			Errors: []GraphQLError{{Message: "boom", Path: Path{"pokemon"}}},
		}
		if diff := cmp.Diff(wantRes, plainResult(gotRes)); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})
}

// Pattern: Result comparison
func TestCompleteValue_AbstractTypes_Result(t *testing.T) {
	named := schema.NewType("Named", schema.TypeKindInterface, "").
		AddField(field("name", schema.NamedType("String"))).
		AddPossibleType("Pokemon")
	entry := schema.NewType("Entry", schema.TypeKindUnion, "").
		AddPossibleType("Pokemon").
		AddPossibleType("Form")

	sch := pokedexSchema(schema.NamedType("FormDetail"))
	sch.Types["Pokemon"].AddInterface("Named")
	sch.Types["Query"].AddField(field("named", schema.NamedType("Named"))).
		AddField(field("entry", schema.NamedType("Entry")))
	sch.AddType(named).AddType(entry)

	resolvers := pokedexResolvers()
	resolvers["Query.named"] = func(ctx context.Context, source any, args map[string]any) (any, error) {
		p := pikachu()
		p["__typename"] = "Pokemon"
		return p, nil
	}
	resolvers["Query.entry"] = NewMockValueResolver(map[string]any{"__typename": "Form", "name": "pikachu", "url": "/form/25"})
	rt := NewMockRuntime(resolvers)
	exec := NewExecutor(rt, sch)

	doc := mustParseQuery(t, `{
		named {
			... on Named { name }
			... on Pokemon { forms { name } }
			...FormURL
		}
		entry {
			... on Entry { __typename }
			... on Form { url }
			... on Pokemon { name }
		}
	}
	fragment FormURL on Form { url }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{
			"named": map[string]any{
				"name": "pikachu",
				"forms": []any{
					map[string]any{"name": "pikachu"},
					map[string]any{"name": "pikachu-cap"},
				},
			},
			"entry": map[string]any{"__typename": "Form", "url": "/form/25"},
		},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, plainResult(gotRes)); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	t.Run("ResolveType outside possible types", func(t *testing.T) {
		rt.SetTypeResolver(func(value any) (string, error) { return "FormDetail", nil })
		doc := mustParseQuery(t, `{ entry { __typename } }`)

		gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

		wantRes := &ExecutionResult{
			Data: map[string]any{"entry": nil},
			Errors: []GraphQLError{{
				Message: "Abstract type Entry must resolve to an Object type at runtime. Got: FormDetail",
				Path:    Path{"entry"},
			}},
		}
		if diff := cmp.Diff(wantRes, plainResult(gotRes)); diff != "" {
			t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
		}
	})
}

// Pattern: Result comparison
func TestCompleteValue_Leaf_Serialization_Result(t *testing.T) {
	rt := NewMockRuntime(pokedexResolvers())
	rt.SetSerializer(func(typeName string, val any) (any, error) {
		if typeName == "Int" {
			return nil, fmt.Errorf("Int cannot represent %v", val)
		}
		return val, nil
	})
	exec := NewExecutor(rt, pokedexSchema(schema.NamedType("FormDetail")))
	doc := mustParseQuery(t, `{ pokemon(name: "pikachu") { name forms { detail { id } } } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{
			"pokemon": map[string]any{
				"name": "pikachu",
				"forms": []any{
					map[string]any{"detail": map[string]any{"id": nil}},
					map[string]any{"detail": map[string]any{"id": nil}},
				},
			},
		},
		Errors: []GraphQLError{
			{Message: "Int cannot represent 8", Path: Path{"pokemon", "forms", 0, "detail", "id"}},
			{Message: "Int cannot represent 11", Path: Path{"pokemon", "forms", 1, "detail", "id"}},
		},
	}
	if diff := cmp.Diff(wantRes, plainResult(gotRes)); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestContext_OperationSelection_Result(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		operation string
		variables map[string]any
		want      *ExecutionResult
	}{
		{
			name:  "Single named operation without name",
			query: `query Lookup { pokemon(name: "pikachu") { name } }`,
			want:  &ExecutionResult{Data: map[string]any{"pokemon": map[string]any{"name": "pikachu"}}, Errors: []GraphQLError{}},
		},
		{
			name:      "Named operation provided",
			query:     `query A { pokemon(name: "a") { name } } query B { pokemon(name: "b") { forms { name } } }`,
			operation: "A",
			want:      &ExecutionResult{Data: map[string]any{"pokemon": map[string]any{"name": "pikachu"}}, Errors: []GraphQLError{}},
		},
		{
			name:      "Variable provided",
			query:     `query($n: String!) { pokemon(name: $n) { name } }`,
			variables: map[string]any{"n": "pikachu"},
			want:      &ExecutionResult{Data: map[string]any{"pokemon": map[string]any{"name": "pikachu"}}, Errors: []GraphQLError{}},
		},
		{
			name:  "No operation",
			query: `fragment F on Pokemon { name }`,
			want:  &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}},
		},
		{
			name:  "No name with multiple operations",
			query: `query A { pokemon(name: "a") { name } } query B { pokemon(name: "b") { name } }`,
			want:  &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}},
		},
		{
			name:      "Unknown operation name",
			query:     `query A { pokemon(name: "a") { name } }`,
			operation: "Z",
			want:      &ExecutionResult{Errors: []GraphQLError{{Message: `unknown operation named "Z"`}}},
		},
		{
			name:  "Missing required variable",
			query: `query($n: String!) { pokemon(name: $n) { name } }`,
			want:  &ExecutionResult{Errors: []GraphQLError{{Message: "variable $n of required type String! was not provided"}}},
		},
		{
			name:      "Null for non-null variable",
			query:     `query($n: String!) { pokemon(name: $n) { name } }`,
			variables: map[string]any{"n": nil},
			want:      &ExecutionResult{Errors: []GraphQLError{{Message: "variable $n of type String! cannot be null"}}},
		},
		{
			name:      "Skip and include with variables",
			query:     `query($withName: Boolean!) { pokemon(name: "pikachu") { name @include(if: $withName) forms @skip(if: true) { name } } }`,
			variables: map[string]any{"withName": false},
			want:      &ExecutionResult{Data: map[string]any{"pokemon": map[string]any{}}, Errors: []GraphQLError{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := NewExecutor(NewMockRuntime(pokedexResolvers()), pokedexSchema(schema.NamedType("FormDetail")))
			got := exec.ExecuteRequest(context.Background(), mustParseQuery(t, tt.query), tt.operation, tt.variables, nil)
			if diff := cmp.Diff(tt.want, plainResult(got)); diff != "" {
				t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRuntimeContract_ShortBatchIsReported(t *testing.T) {
	exec := NewExecutor(shortRuntime{NewMockRuntime(pokedexResolvers())}, pokedexSchema(schema.NamedType("FormDetail")))
	doc := mustParseQuery(t, `{ pokemon(name: "pikachu") { name } }`)

	res := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	require.Equal(t, map[string]any{"pokemon": nil}, Plain(res.Data))
	require.Len(t, res.Errors, 1)
	require.Equal(t, "runtime returned 0 results for 1 tasks", res.Errors[0].Message)
}

// shortRuntime drops every batch result.
type shortRuntime struct{ *MockRuntime }

func (shortRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	return nil
}

func TestObjectMarshalsInSelectionOrder(t *testing.T) {
	o := newObject(3)
	o.Set("zubat", 41)
	o.Set("abra", 63)
	o.Set("mew", nil)
	o.Set("zubat", 42)

	b, err := json.Marshal(o)
	require.NoError(t, err)
	require.Equal(t, `{"zubat":42,"abra":63,"mew":null}`, string(b))
	require.Equal(t, []string{"zubat", "abra", "mew"}, o.Keys())

	root := newObject(1)
	root.Set("pokemon", []any{o})
	setValueAtPath(root, Path{"pokemon", 0, "abra"}, 64)
	setValueAtPath(root, Path{"missing", "abra"}, 1)
	require.Equal(t, map[string]any{"pokemon": []any{map[string]any{"zubat": 42, "abra": 64, "mew": nil}}}, Plain(root))
}
