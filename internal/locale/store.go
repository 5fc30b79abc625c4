package locale

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store holds one Bundle per locale. Locales are independent: a key missing
// from one locale is never looked up in another.
type Store struct {
	bundles map[string]*Bundle
}

// NewStore builds a store. Two bundles for the same locale are an error.
func NewStore(bundles ...*Bundle) (*Store, error) {
	s := &Store{bundles: make(map[string]*Bundle, len(bundles))}
	for _, b := range bundles {
		if _, dup := s.bundles[b.locale]; dup {
			return nil, fmt.Errorf("duplicate bundle for locale %q", b.locale)
		}
		s.bundles[b.locale] = b
	}
	return s, nil
}

// LoadDir reads every <locale>.json, .yaml or .yml file directly inside dir.
func LoadDir(dir string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading locale dir: %w", err)
	}

	var bundles []*Bundle
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		b, err := ParseBundle(strings.TrimSuffix(e.Name(), ext), data)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		bundles = append(bundles, b)
	}

	s, err := NewStore(bundles...)
	if err != nil {
		return nil, err
	}
	slog.Info("messages loaded", "locales", len(s.bundles))
	return s, nil
}

// Bundle returns the bundle for a locale code in any casing.
func (s *Store) Bundle(code string) (*Bundle, bool) {
	loc, err := CanonicalLocale(code)
	if err != nil {
		return nil, false
	}
	b, ok := s.bundles[loc]
	return b, ok
}

// Lookup resolves a dotted key in one locale. An unconfigured locale fails
// the same way as an absent key.
func (s *Store) Lookup(code, key string) (string, error) {
	b, ok := s.Bundle(code)
	if !ok {
		return "", &MissingTranslationError{Locale: code, Key: key}
	}
	return b.Lookup(key)
}

// Locales returns the configured locale codes, sorted.
func (s *Store) Locales() []string {
	out := make([]string, 0, len(s.bundles))
	for loc := range s.bundles {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}
