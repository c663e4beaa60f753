package executor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/hanpama/pokegraph/internal/language"
	schema "github.com/hanpama/pokegraph/internal/schema"
)

// Pattern: Result comparison
func TestCollectFields_FragmentMerging(t *testing.T) {
	sch := pokedexSchema(schema.NamedType("FormDetail"))
	doc := mustParseQuery(t, `{
		name
		...A
		... @include(if: true) { forms { name } }
		... on Pokemon @skip(if: true) { skipped: name }
	}
	fragment A on Pokemon { name __typename }`)
	state := &executionState{schema: sch, document: doc, variableValues: map[string]any{}}

	got := collectFields(state, sch.Types["Pokemon"], doc.Operations[0].SelectionSet).orderedFields()

	opSel := doc.Operations[0].SelectionSet
	frag := doc.Fragments.ForName("A").SelectionSet
	inline := opSel[2].(*language.InlineFragment)
	want := []collectedField{
		{ResponseName: "name", Fields: []*language.Field{opSel[0].(*language.Field), frag[0].(*language.Field)}},
		{ResponseName: "__typename", Fields: []*language.Field{frag[1].(*language.Field)}},
		{ResponseName: "forms", Fields: []*language.Field{inline.SelectionSet[0].(*language.Field)}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("collected fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDoesFragmentTypeApply(t *testing.T) {
	sch := pokedexSchema(schema.NamedType("FormDetail"))
	sch.Types["Pokemon"].AddInterface("Named")
	sch.AddType(schema.NewType("Named", schema.TypeKindInterface, "").AddPossibleType("Pokemon"))
	sch.AddType(schema.NewType("Entry", schema.TypeKindUnion, "").AddPossibleType("Form"))

	pokemon := sch.Types["Pokemon"]
	tests := []struct {
		condition string
		want      bool
	}{
		{"", true},
		{"Pokemon", true},
		{"Named", true},
		{"Form", false},
		{"Entry", false},
		{"Unknown", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, doesFragmentTypeApply(sch, pokemon, tt.condition), "condition %q", tt.condition)
	}
	require.True(t, doesFragmentTypeApply(sch, sch.Types["Form"], "Entry"))
}
