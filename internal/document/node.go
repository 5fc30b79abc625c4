// Package document parses lesson bodies: prose mixed with inline component
// tags such as <AnchorDiscriminatorCalculator value="initialize" />.
package document

import (
	"errors"
	"fmt"
)

// Kind tells text apart from component references.
type Kind int

const (
	KindText Kind = iota
	KindComponent
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindComponent:
		return "component"
	default:
		return "unknown"
	}
}

// Prop is one attribute of a component tag. Expr marks a {braced} value,
// which is kept as raw source.
type Prop struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Expr  bool   `json:"expr,omitempty"`
}

// Props keeps attributes in the order they were written.
type Props []Prop

// Get returns the value of the named attribute.
func (p Props) Get(name string) (string, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return "", false
}

// Map returns the attributes keyed by name.
func (p Props) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, prop := range p {
		m[prop.Name] = prop.Value
	}
	return m
}

// Node is a TextBlock or a ComponentNode.
type Node struct {
	Kind  Kind
	Text  string
	Name  string
	Props Props
	Line  int
}

// TextBlock returns a text node.
func TextBlock(s string) Node {
	return Node{Kind: KindText, Text: s}
}

// ComponentNode returns a component reference.
func ComponentNode(name string, props ...Prop) Node {
	return Node{Kind: KindComponent, Name: name, Props: props}
}

// Body is a parsed document in source order.
type Body []Node

// Components returns the component references in b.
func (b Body) Components() []Node {
	var out []Node
	for _, n := range b {
		if n.Kind == KindComponent {
			out = append(out, n)
		}
	}
	return out
}

// ErrMalformed matches every MalformedError via errors.Is.
var ErrMalformed = errors.New("malformed document")

// MalformedError locates a structural defect in a document body.
type MalformedError struct {
	Line   int
	Column int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed document at %d:%d: %s", e.Line, e.Column, e.Reason)
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}
