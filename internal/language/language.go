// Package language is the narrow window onto gqlparser used by the rest of
// the module: the query AST the executor walks, parsing, and validation.
package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// Documents and selections.
type (
	QueryDocument       = ast.QueryDocument
	OperationDefinition = ast.OperationDefinition
	SelectionSet        = ast.SelectionSet
	Field               = ast.Field
	InlineFragment      = ast.InlineFragment
	FragmentSpread      = ast.FragmentSpread
	FragmentDefinition  = ast.FragmentDefinition
	DirectiveList       = ast.DirectiveList
	Directive           = ast.Directive
	ArgumentList        = ast.ArgumentList
	Type                = ast.Type
)

type Operation = ast.Operation

const (
	Query        = ast.Query
	Mutation     = ast.Mutation
	Subscription = ast.Subscription
)

// Input values. Raw holds the literal text; lists and objects keep their
// items in Children.
type (
	Value     = ast.Value
	ValueKind = ast.ValueKind
)

const (
	Variable     = ast.Variable
	IntValue     = ast.IntValue
	FloatValue   = ast.FloatValue
	StringValue  = ast.StringValue
	BlockValue   = ast.BlockValue
	BooleanValue = ast.BooleanValue
	NullValue    = ast.NullValue
	EnumValue    = ast.EnumValue
	ListValue    = ast.ListValue
	ObjectValue  = ast.ObjectValue
)

// Error is a located error from the parser or validator.
type (
	Error     = gqlerror.Error
	ErrorList = gqlerror.List
	Location  = gqlerror.Location
)

// ValidatedSchema is a schema merged with the prelude and checked by
// gqlparser. Queries are validated against it.
type ValidatedSchema = ast.Schema

// The gqlparser entry points below return concrete error types in some
// releases, so nil is checked before converting to error.

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func LoadSchema(name, source string) (*ValidatedSchema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LoadQuery parses source and validates it against s. A valid document comes
// back with an empty list.
func LoadQuery(s *ValidatedSchema, source string) (*QueryDocument, ErrorList) {
	return gqlparser.LoadQuery(s, source)
}
