package executor

import (
	"fmt"
	"strings"
)

// Path locates a value in the response: field names and list indexes.
type Path []PathElement

// PathElement is a string response name or an int list index.
type PathElement any

func (p Path) with(elem PathElement) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, elem)
}

// String renders p as "pokemon.forms[1].detail".
func (p Path) String() string {
	var b strings.Builder
	for _, elem := range p {
		switch v := elem.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", v)
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}

// key is a map key for p. The trailing separator keeps "a" from matching
// a prefix of "ab".
func (p Path) key() string { return p.String() + "/" }

// setValueAtPath writes value into an existing response tree. A missing
// intermediate node means the subtree was nullified, and the write is dropped.
func setValueAtPath(root *Object, path Path, value any) {
	if len(path) == 0 {
		return
	}
	var node any = root
	for _, elem := range path[:len(path)-1] {
		if node = child(node, elem); node == nil {
			return
		}
	}
	switch last := path[len(path)-1].(type) {
	case string:
		if o, ok := node.(*Object); ok && o != nil {
			o.Set(last, value)
		}
	case int:
		if s, ok := node.([]any); ok && last < len(s) {
			s[last] = value
		}
	}
}

func child(node any, elem PathElement) any {
	switch e := elem.(type) {
	case string:
		if o, ok := node.(*Object); ok && o != nil {
			v, _ := o.Get(e)
			return v
		}
	case int:
		if s, ok := node.([]any); ok && e < len(s) {
			return s[e]
		}
	}
	return nil
}
