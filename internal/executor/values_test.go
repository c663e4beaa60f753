package executor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/hanpama/pokegraph/internal/language"
	schema "github.com/hanpama/pokegraph/internal/schema"
)

func variableOp(name string, typ *ast.Type) *language.OperationDefinition {
	return &language.OperationDefinition{
		Operation: language.Query,
		VariableDefinitions: ast.VariableDefinitionList{
			&ast.VariableDefinition{Variable: name, Type: typ},
		},
	}
}

func TestCoerceVariableValues_InputObjectValidation(t *testing.T) {
	sch := schema.NewSchema("")
	input := schema.NewType("LookupInput", schema.TypeKindInputObject, "")
	input.AddInputField(schema.NewInputValue("name", "", schema.NonNullType(schema.NamedType("String"))))
	input.AddInputField(schema.NewInputValue("limit", "", schema.NamedType("Int")).SetDefault(20))
	sch.AddType(input)
	op := variableOp("input", &ast.Type{NamedType: "LookupInput", NonNull: true})

	_, err := coerceVariableValues(sch, op, map[string]any{"input": map[string]any{"limit": 10}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "required field 'name'")

	_, err = coerceVariableValues(sch, op, map[string]any{"input": map[string]any{"name": "eevee", "extra": true}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "'extra' is not defined")

	got, err := coerceVariableValues(sch, op, map[string]any{"input": map[string]any{"name": "eevee"}})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"input": map[string]any{"name": "eevee", "limit": 20}}, got)
}

func TestCoerceVariableValues_Scalars(t *testing.T) {
	sch := schema.NewSchema("")
	intOp := variableOp("id", &ast.Type{NamedType: "Int", NonNull: true})

	_, err := coerceVariableValues(sch, intOp, map[string]any{"id": "25"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot coerce")

	// JSON numbers decode as float64
	got, err := coerceVariableValues(sch, intOp, map[string]any{"id": float64(25)})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": 25}, got)

	_, err = coerceVariableValues(sch, intOp, map[string]any{"id": 2.5})
	require.Error(t, err)

	idOp := variableOp("id", &ast.Type{NamedType: "ID"})
	got, err = coerceVariableValues(sch, idOp, map[string]any{"id": float64(133)})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": "133"}, got)

	listOp := variableOp("names", &ast.Type{Elem: &ast.Type{NamedType: "String", NonNull: true}})
	got, err = coerceVariableValues(sch, listOp, map[string]any{"names": "pikachu"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"names": []any{"pikachu"}}, got)
}
