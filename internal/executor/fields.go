package executor

import (
	"slices"

	language "github.com/hanpama/pokegraph/internal/language"
	schema "github.com/hanpama/pokegraph/internal/schema"
)

// collectedField is every selection sharing one response name, in query order.
type collectedField struct {
	ResponseName string
	Fields       []*language.Field
}

type fieldCollector struct {
	state   *executionState
	object  *schema.Type
	fields  []collectedField
	byName  map[string]int
	visited map[string]struct{}
}

type collectedFields struct{ fields []collectedField }

func (c collectedFields) orderedFields() []collectedField { return c.fields }

// collectFields groups the selections that apply to objectType by response name.
func collectFields(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet) collectedFields {
	c := &fieldCollector{
		state:   state,
		object:  objectType,
		byName:  make(map[string]int),
		visited: make(map[string]struct{}),
	}
	c.walk(selectionSet)
	return collectedFields{fields: c.fields}
}

func (c *fieldCollector) walk(selectionSet language.SelectionSet) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if c.included(sel.Directives) {
				c.add(sel)
			}
		case *language.InlineFragment:
			if c.included(sel.Directives) && doesFragmentTypeApply(c.state.schema, c.object, sel.TypeCondition) {
				c.walk(sel.SelectionSet)
			}
		case *language.FragmentSpread:
			if !c.included(sel.Directives) {
				continue
			}
			if _, seen := c.visited[sel.Name]; seen {
				continue
			}
			c.visited[sel.Name] = struct{}{}
			def := c.state.document.Fragments.ForName(sel.Name)
			if def == nil || !c.included(def.Directives) || !doesFragmentTypeApply(c.state.schema, c.object, def.TypeCondition) {
				continue
			}
			c.walk(def.SelectionSet)
		}
	}
}

func (c *fieldCollector) add(f *language.Field) {
	name := f.Alias
	if name == "" {
		name = f.Name
	}
	if i, ok := c.byName[name]; ok {
		c.fields[i].Fields = append(c.fields[i].Fields, f)
		return
	}
	c.byName[name] = len(c.fields)
	c.fields = append(c.fields, collectedField{ResponseName: name, Fields: []*language.Field{f}})
}

// included evaluates @skip and @include. A condition that is not a boolean
// leaves the selection in.
func (c *fieldCollector) included(directives language.DirectiveList) bool {
	if skip, ok := c.condition(directives, "skip"); ok && skip {
		return false
	}
	if include, ok := c.condition(directives, "include"); ok && !include {
		return false
	}
	return true
}

func (c *fieldCollector) condition(directives language.DirectiveList, name string) (value, ok bool) {
	d := directives.ForName(name)
	if d == nil {
		return false, false
	}
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	v, ok := valueFromASTWithVars(arg.Value, c.state.variableValues).(bool)
	return v, ok
}

// doesFragmentTypeApply reports whether a fragment with the given type
// condition selects fields on objectType. An empty condition always applies.
func doesFragmentTypeApply(s *schema.Schema, objectType *schema.Type, typeCondition string) bool {
	if typeCondition == "" || typeCondition == objectType.Name {
		return true
	}
	cond := s.Types[typeCondition]
	if cond == nil || (cond.Kind != schema.TypeKindInterface && cond.Kind != schema.TypeKindUnion) {
		return false
	}
	return cond.HasPossibleType(objectType.Name) || slices.Contains(objectType.Interfaces, typeCondition)
}
