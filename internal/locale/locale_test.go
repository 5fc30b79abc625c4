package locale_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/pai-courses/internal/locale"
)

const enMessages = `{
	"challenges": {
		"anchor-escrow": {
			"title": "Anchor Escrow",
			"requirements": {
				"make": {"title": "Challenge 1: Making an escrow swap deal"},
				"take": {"title": "Challenge 2: Taking an escrow swap deal"},
				"refund": {"title": "Challenge 3: Refunding an escrow"}
			}
		},
		"anchor-vault": {
			"title": "Anchor Vault",
			"pages": {
				"introduction": {"title": "Introduction"},
				"deposit": {"title": "Deposit"},
				"withdraw": {"title": "Withdraw"}
			}
		}
	},
	"ui": {"next": "Next"}
}`

func TestStore_Lookup(t *testing.T) {
	en, err := locale.ParseBundle("en", []byte(enMessages))
	require.NoError(t, err)
	store, err := locale.NewStore(en)
	require.NoError(t, err)

	got, err := store.Lookup("en", "challenges.anchor-escrow.requirements.make.title")
	require.NoError(t, err)
	assert.Equal(t, "Challenge 1: Making an escrow swap deal", got)

	_, err = store.Lookup("fr", "challenges.anchor-escrow.requirements.make.title")
	require.Error(t, err)
	assert.True(t, errors.Is(err, locale.ErrMissingTranslation))

	var mt *locale.MissingTranslationError
	require.True(t, errors.As(err, &mt))
	assert.Equal(t, "fr", mt.Locale)
}

func TestStore_Lookup_CaseInsensitiveLocale(t *testing.T) {
	en, err := locale.ParseBundle("EN", []byte(enMessages))
	require.NoError(t, err)
	store, err := locale.NewStore(en)
	require.NoError(t, err)

	got, err := store.Lookup("en", "ui.next")
	require.NoError(t, err)
	assert.Equal(t, "Next", got)
	assert.Equal(t, []string{"en"}, store.Locales())
}

func TestBundle_Lookup_Failures(t *testing.T) {
	b, err := locale.ParseBundle("en", []byte(`{"a": {"b": "x", "empty": ""}}`))
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
	}{
		{"absent", "a.c"},
		{"ends on table", "a"},
		{"walks through leaf", "a.b.c"},
		{"empty string", "a.empty"},
		{"empty key", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Lookup(tt.key)
			assert.ErrorIs(t, err, locale.ErrMissingTranslation)
		})
	}
}

func TestParse_PreservesOrder(t *testing.T) {
	root, err := locale.Parse([]byte(`{"z": "1", "a": "2", "m": {"y": "3", "b": "4"}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, root.Keys())

	flat := root.Flatten()
	keys := make([]string, len(flat))
	for i, e := range flat {
		keys[i] = e.Key
	}
	assert.Equal(t, []string{"z", "a", "m.y", "m.b"}, keys)
}

func TestParse_YAML(t *testing.T) {
	root, err := locale.Parse([]byte("challenges:\n  escrow:\n    title: Escrow\n    pages:\n      b: {title: B}\n      a: {title: A}\n"))
	require.NoError(t, err)

	pages, ok := root.Get("challenges.escrow.pages")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, pages.Keys())
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"array root", `["a"]`},
		{"number leaf", `{"a": 1}`},
		{"array value", `{"a": ["x"]}`},
		{"null value", `{"a": null}`},
		{"dotted key", `{"a.b": "x"}`},
		{"duplicate key", `{"a": "x", "a": "y"}`},
		{"yaml bool", "a: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := locale.Parse([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := locale.Parse([]byte(`{"a": "x"`))
	require.Error(t, err)
}

func TestNewBundle_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"title is a table", `{"challenges": {"x": {"title": {"en": "X"}}}}`},
		{"page is a string", `{"challenges": {"x": {"pages": {"intro": "Intro"}}}}`},
		{"requirement title is a table", `{"challenges": {"x": {"requirements": {"r": {"title": {"a": "b"}}}}}}`},
		{"challenges is a string", `{"challenges": "none"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := locale.ParseBundle("en", []byte(tt.data))
			var se *locale.SchemaError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "en", se.Locale)
			assert.NotEmpty(t, se.Problems)
		})
	}
}

func TestBundle_ChallengeSlugs(t *testing.T) {
	b, err := locale.ParseBundle("en", []byte(enMessages))
	require.NoError(t, err)
	assert.Equal(t, []string{"anchor-escrow", "anchor-vault"}, b.ChallengeSlugs())

	_, ok := b.Challenge("anchor-vault")
	assert.True(t, ok)
	_, ok = b.Challenge("missing")
	assert.False(t, ok)
}

func TestNewStore_DuplicateLocale(t *testing.T) {
	a, err := locale.ParseBundle("en", []byte(`{}`))
	require.NoError(t, err)
	b, err := locale.ParseBundle("EN", []byte(`{}`))
	require.NoError(t, err)

	_, err = locale.NewStore(a, b)
	require.Error(t, err)
}

func TestCanonicalLocale(t *testing.T) {
	got, err := locale.CanonicalLocale("pt-br")
	require.NoError(t, err)
	assert.Equal(t, "pt-BR", got)

	_, err = locale.CanonicalLocale("not a locale")
	require.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(enMessages), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "id.yaml"), []byte("challenges:\n  anchor-escrow:\n    title: Escrow Anchor\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# ignored"), 0o644))

	store, err := locale.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "id"}, store.Locales())

	got, err := store.Lookup("id", "challenges.anchor-escrow.title")
	require.NoError(t, err)
	assert.Equal(t, "Escrow Anchor", got)

	// no fallback to en
	_, err = store.Lookup("id", "ui.next")
	assert.ErrorIs(t, err, locale.ErrMissingTranslation)
}

func TestLoadDir_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"a": 1}`), 0o644))

	_, err := locale.LoadDir(dir)
	require.Error(t, err)
}
