// Package locale holds the per-language message dictionaries that give
// challenges, pages and requirements their display strings.
//
// A dictionary is a tree of string tables decoded from JSON (or YAML) with the
// source key order preserved. Lookups use dotted key paths such as
// "challenges.anchor-escrow.requirements.make.title" and fail with a
// MissingTranslationError instead of returning an empty string.
package locale

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Node is either a leaf string or a table of child nodes kept in source order.
type Node struct {
	leaf     bool
	value    string
	keys     []string
	children map[string]*Node
}

// Entry is a flattened leaf: its full dotted key and its value.
type Entry struct {
	Key   string
	Value string
}

// NewTable returns an empty table node.
func NewTable() *Node {
	return &Node{children: make(map[string]*Node)}
}

// NewLeaf returns a leaf node holding s.
func NewLeaf(s string) *Node {
	return &Node{leaf: true, value: s}
}

// Set adds or replaces a child. Keys keep their first insertion position.
func (n *Node) Set(key string, child *Node) {
	if n.leaf {
		panic("locale: Set on leaf node")
	}
	if _, ok := n.children[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.children[key] = child
}

// IsLeaf reports whether n holds a string.
func (n *Node) IsLeaf() bool { return n.leaf }

// Value returns the leaf string, or "" for tables.
func (n *Node) Value() string { return n.value }

// Keys returns the table keys in source order.
func (n *Node) Keys() []string {
	return append([]string(nil), n.keys...)
}

// Child returns the direct child stored under key.
func (n *Node) Child(key string) (*Node, bool) {
	if n == nil || n.leaf {
		return nil, false
	}
	c, ok := n.children[key]
	return c, ok
}

// Get walks a dotted path and returns the node it ends on.
func (n *Node) Get(path string) (*Node, bool) {
	if path == "" {
		return nil, false
	}
	cur := n
	for _, seg := range strings.Split(path, ".") {
		next, ok := cur.Child(seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// String resolves a dotted path to a leaf string. It reports false when the
// path is absent or ends on a table.
func (n *Node) String(path string) (string, bool) {
	c, ok := n.Get(path)
	if !ok || !c.leaf {
		return "", false
	}
	return c.value, true
}

// Flatten returns every leaf under n with its dotted key, in source order.
func (n *Node) Flatten() []Entry {
	var out []Entry
	n.flatten("", &out)
	return out
}

func (n *Node) flatten(prefix string, out *[]Entry) {
	if n.leaf {
		*out = append(*out, Entry{Key: prefix, Value: n.value})
		return
	}
	for _, k := range n.keys {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		n.children[k].flatten(key, out)
	}
}

// Interface converts the tree to plain maps and strings.
func (n *Node) Interface() any {
	if n.leaf {
		return n.value
	}
	m := make(map[string]any, len(n.children))
	for k, c := range n.children {
		m[k] = c.Interface()
	}
	return m
}

// Parse decodes a JSON message file. Input that is not a JSON object is
// decoded as YAML, so hand-written .yaml dictionaries work too.
func Parse(data []byte) (*Node, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return NewTable(), nil
	}
	if trimmed[0] == '{' {
		return parseJSON(trimmed)
	}
	return parseYAML(trimmed)
}

func parseJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, &SchemaError{Problems: []string{"root must be an object"}}
	}
	root, err := decodeJSONTable(dec, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &SchemaError{Problems: []string{"trailing data after root object"}}
	}
	return root, nil
}

// decodeJSONTable reads members until the closing brace of an object whose
// opening brace has already been consumed.
func decodeJSONTable(dec *json.Decoder, prefix string) (*Node, error) {
	table := NewTable()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decoding messages: %w", err)
		}
		key := tok.(string)
		path := joinKey(prefix, key)
		if err := checkKey(key, path); err != nil {
			return nil, err
		}
		if _, dup := table.children[key]; dup {
			return nil, &SchemaError{Problems: []string{fmt.Sprintf("%s: duplicate key", path)}}
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decoding messages: %w", err)
		}
		switch v := tok.(type) {
		case string:
			table.Set(key, NewLeaf(v))
		case json.Delim:
			if v != '{' {
				return nil, &SchemaError{Problems: []string{fmt.Sprintf("%s: arrays are not allowed", path)}}
			}
			child, err := decodeJSONTable(dec, path)
			if err != nil {
				return nil, err
			}
			table.Set(key, child)
		default:
			return nil, &SchemaError{Problems: []string{fmt.Sprintf("%s: value must be a string or object, got %T", path, v)}}
		}
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}
	return table, nil
}

func parseYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &SchemaError{Problems: []string{"root must be an object"}}
	}
	return fromYAML(doc.Content[0], "")
}

func fromYAML(m *yaml.Node, prefix string) (*Node, error) {
	table := NewTable()
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		path := joinKey(prefix, k.Value)
		if err := checkKey(k.Value, path); err != nil {
			return nil, err
		}
		if _, dup := table.children[k.Value]; dup {
			return nil, &SchemaError{Problems: []string{fmt.Sprintf("%s: duplicate key", path)}}
		}
		switch {
		case v.Kind == yaml.ScalarNode && v.Tag == "!!str":
			table.Set(k.Value, NewLeaf(v.Value))
		case v.Kind == yaml.MappingNode:
			child, err := fromYAML(v, path)
			if err != nil {
				return nil, err
			}
			table.Set(k.Value, child)
		default:
			return nil, &SchemaError{Problems: []string{fmt.Sprintf("%s: value must be a string or object", path)}}
		}
	}
	return table, nil
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func checkKey(key, path string) error {
	if key == "" {
		return &SchemaError{Problems: []string{fmt.Sprintf("%s: empty key", path)}}
	}
	if strings.Contains(key, ".") {
		return &SchemaError{Problems: []string{fmt.Sprintf("%s: key must not contain '.'", path)}}
	}
	return nil
}
