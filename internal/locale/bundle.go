package locale

import (
	"fmt"

	"golang.org/x/text/language"
)

const challengesKey = "challenges"

// Bundle is one locale's message tree. It is never mutated after construction.
type Bundle struct {
	locale string
	root   *Node
}

// NewBundle validates root and binds it to a canonical locale code.
func NewBundle(code string, root *Node) (*Bundle, error) {
	loc, err := CanonicalLocale(code)
	if err != nil {
		return nil, err
	}
	if root == nil {
		root = NewTable()
	}
	if err := Validate(root); err != nil {
		if se, ok := err.(*SchemaError); ok {
			se.Locale = loc
		}
		return nil, err
	}
	return &Bundle{locale: loc, root: root}, nil
}

// ParseBundle decodes data and builds a Bundle for code.
func ParseBundle(code string, data []byte) (*Bundle, error) {
	root, err := Parse(data)
	if err != nil {
		if se, ok := err.(*SchemaError); ok {
			se.Locale = code
		}
		return nil, err
	}
	return NewBundle(code, root)
}

// Locale returns the canonical locale code.
func (b *Bundle) Locale() string { return b.locale }

// Root returns the message tree.
func (b *Bundle) Root() *Node { return b.root }

// Lookup returns the string stored at a dotted key. Absent keys, keys that
// end on a table and empty strings all fail with MissingTranslationError.
func (b *Bundle) Lookup(key string) (string, error) {
	s, ok := b.root.String(key)
	if !ok || s == "" {
		return "", &MissingTranslationError{Locale: b.locale, Key: key}
	}
	return s, nil
}

// Challenge returns the challenges.<slug> table.
func (b *Bundle) Challenge(slug string) (*Node, bool) {
	ch, ok := b.root.Get(challengesKey + "." + slug)
	if !ok || ch.IsLeaf() {
		return nil, false
	}
	return ch, true
}

// ChallengeSlugs lists the challenge slugs in source order.
func (b *Bundle) ChallengeSlugs() []string {
	ch, ok := b.root.Child(challengesKey)
	if !ok || ch.IsLeaf() {
		return nil
	}
	return ch.Keys()
}

// CanonicalLocale normalises a BCP 47 code, so "EN" and "en" name the same
// bundle.
func CanonicalLocale(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", code, err)
	}
	return tag.String(), nil
}
