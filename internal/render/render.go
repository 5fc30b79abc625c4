package render

import (
	"fmt"
	"iter"

	"github.com/p-n-ai/pai-courses/internal/document"
)

// NodeKind mirrors document.Kind for rendered output.
type NodeKind string

const (
	NodeText      NodeKind = "text"
	NodeComponent NodeKind = "component"
)

// Node is one renderable piece of a page. Props are the reference's
// attributes, unchanged and in source order. Data carries values a component
// computed from them.
type Node struct {
	Kind      NodeKind       `json:"kind"`
	Text      string         `json:"text,omitempty"`
	Component string         `json:"component,omitempty"`
	Props     document.Props `json:"props,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Render resolves body lazily. The sequence stops after the first error: an
// unknown component or a failing component ends the document.
func Render(body document.Body, reg Registry) iter.Seq2[Node, error] {
	return func(yield func(Node, error) bool) {
		for _, n := range body {
			if n.Kind == document.KindText {
				if !yield(Node{Kind: NodeText, Text: n.Text}, nil) {
					return
				}
				continue
			}

			c, ok := reg.Lookup(n.Name)
			if !ok {
				yield(Node{}, &UnknownComponentError{Name: n.Name, Line: n.Line})
				return
			}
			out, err := c.Render(n)
			if err != nil {
				yield(Node{}, fmt.Errorf("rendering <%s> at line %d: %w", n.Name, n.Line, err))
				return
			}
			out.Kind = NodeComponent
			out.Component = n.Name
			out.Props = append(document.Props(nil), n.Props...)
			if !yield(out, nil) {
				return
			}
		}
	}
}

// RenderAll collects Render into a slice.
func RenderAll(body document.Body, reg Registry) ([]Node, error) {
	var nodes []Node
	for n, err := range Render(body, reg) {
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Page is a rendered document.
type Page struct {
	FrontMatter document.FrontMatter `json:"frontMatter"`
	Headings    []document.Heading   `json:"headings"`
	Nodes       []Node               `json:"nodes"`
}

// RenderSource parses a raw document, front matter included, and renders it.
func RenderSource(src []byte, reg Registry) (Page, error) {
	fm, body, err := document.ParseDocument(src)
	if err != nil {
		return Page{}, err
	}
	nodes, err := RenderAll(body, reg)
	if err != nil {
		return Page{}, err
	}
	return Page{
		FrontMatter: fm,
		Headings:    document.Headings(body),
		Nodes:       nodes,
	}, nil
}
