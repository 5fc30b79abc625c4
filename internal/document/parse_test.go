package document_test

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/pai-courses/internal/document"
)

func TestParse_ComponentReference(t *testing.T) {
	src := "## Discriminators\n\nEvery instruction has one:\n\n" +
		`<AnchorDiscriminatorCalculator value="initialize_account" displayMode="instruction" />` +
		"\n\nThat's it.\n"

	body, err := document.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, body, 3)

	assert.Equal(t, document.KindText, body[0].Kind)
	assert.Contains(t, body[0].Text, "Every instruction")

	c := body[1]
	assert.Equal(t, document.KindComponent, c.Kind)
	assert.Equal(t, "AnchorDiscriminatorCalculator", c.Name)
	assert.Equal(t, document.Props{
		{Name: "value", Value: "initialize_account"},
		{Name: "displayMode", Value: "instruction"},
	}, c.Props)
	assert.Equal(t, 5, c.Line)

	assert.Equal(t, "\n\nThat's it.\n", body[2].Text)
}

func TestParse_AttributeForms(t *testing.T) {
	src := `<Widget a="x" b='y z' c={42} d={{ nested: "}" }} enabled
	   multi="line
value" />`

	body, err := document.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, body, 1)

	props := body[0].Props
	assert.Equal(t, document.Props{
		{Name: "a", Value: "x"},
		{Name: "b", Value: "y z"},
		{Name: "c", Value: "42", Expr: true},
		{Name: "d", Value: `{ nested: "}" }`, Expr: true},
		{Name: "enabled", Value: "true"},
		{Name: "multi", Value: "line\nvalue"},
	}, props)
}

func TestParse_PairedTagWithoutChildren(t *testing.T) {
	body, err := document.Parse([]byte("<Quiz id=\"q1\">\n</Quiz>\nafter"))
	require.NoError(t, err)
	require.Len(t, body, 2)
	assert.Equal(t, "Quiz", body[0].Name)
	assert.Equal(t, "\nafter", body[1].Text)
}

func TestParse_CodeIsText(t *testing.T) {
	src := "Use `<Foo />` inline.\n\n```tsx\n<Foo bar=\"baz\" />\n```\n\n~~~\n<Broken\n~~~\n<br/> and <div>html</div>\n"

	body, err := document.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, body, 1)
	assert.Equal(t, src, body[0].Text)
	assert.Empty(t, body.Components())
}

func TestParse_UnmatchedBacktickIsText(t *testing.T) {
	body, err := document.Parse([]byte("a ` b <Note />"))
	require.NoError(t, err)
	require.Len(t, body, 2)
	assert.Equal(t, "Note", body[1].Name)
}

func TestParse_CodeSpanStopsAtParagraph(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"blank line", "Press the ` key.\n\n<Quiz id=\"q1\" />\n\nThen run `anchor build`.\n"},
		{"whitespace line", "Press the ` key.\n  \t\n<Quiz id=\"q1\" />\nThen `anchor build`.\n"},
		{"fence", "Press the ` key.\n```sh\nanchor build\n```\n<Quiz id=\"q1\" /> and `x`\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := document.Parse([]byte(tt.src))
			require.NoError(t, err)

			comps := body.Components()
			require.Len(t, comps, 1)
			assert.Equal(t, "Quiz", comps[0].Name)
		})
	}
}

func TestParse_CodeSpanAcrossLineBreak(t *testing.T) {
	body, err := document.Parse([]byte("Call `<Foo\n/>` here.\n"))
	require.NoError(t, err)
	require.Len(t, body, 1)
	assert.Empty(t, body.Components())
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unterminated tag", "text\n<Foo a=\"b\"", 2},
		{"unterminated value", `<Foo a="b />`, 1},
		{"unbalanced brace", `<Foo a={1 />`, 1},
		{"bare equals", `<Foo a=b />`, 1},
		{"duplicate attribute", `<Foo a="1" a="2" />`, 1},
		{"unexpected character", `<Foo {...props} />`, 1},
		{"children", "<Foo>\nhello\n</Foo>", 1},
		{"missing close", "<Foo>\n", 1},
		{"unclosed fence", "intro\n```go\nfunc main() {}\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := document.Parse([]byte(tt.src))
			require.ErrorIs(t, err, document.ErrMalformed)

			var me *document.MalformedError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.line, me.Line)
			assert.NotEmpty(t, me.Reason)
		})
	}
}

func TestParseDocument_FrontMatter(t *testing.T) {
	src := "---\ntitle: Deposit\norder: 2\n---\n# Deposit\n\n<Callout type=\"tip\" />\n"

	fm, body, err := document.ParseDocument([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "Deposit", fm.Title)
	assert.Equal(t, 2, fm.Order)
	require.Len(t, body, 2)
	assert.Equal(t, 5, body[0].Line)
	assert.Equal(t, 7, body[1].Line)
}

func TestParseDocument_UnclosedFrontMatter(t *testing.T) {
	_, _, err := document.ParseDocument([]byte("---\ntitle: x\n"))
	require.ErrorIs(t, err, document.ErrMalformed)
}

func TestParseDocument_NoFrontMatter(t *testing.T) {
	fm, body, err := document.ParseDocument([]byte("plain"))
	require.NoError(t, err)
	assert.Empty(t, fm.Title)
	require.Len(t, body, 1)
}

func TestHeadings(t *testing.T) {
	body, err := document.Parse([]byte("# Anchor Vault\n\n## Déposit\n\n```rust\n# not a heading\n```\n\n## Déposit\n####### too deep\n#nospace\n"))
	require.NoError(t, err)

	got := document.Headings(body)
	assert.Equal(t, []document.Heading{
		{Level: 1, Text: "Anchor Vault", ID: "anchor-vault"},
		{Level: 2, Text: "Déposit", ID: "deposit"},
		{Level: 2, Text: "Déposit", ID: "deposit-1"},
	}, got)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello, World!":      "hello-world",
		"  Trim  me  ":       "trim-me",
		"Ünïcödé Title":      "unicode-title",
		"PDA & Seeds (v2)":   "pda-seeds-v2",
		"already-slugged-42": "already-slugged-42",
	}
	for in, want := range tests {
		assert.Equal(t, want, document.Slugify(in), in)
	}
}

func TestParse_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1337)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("prose without markup is a single text block", prop.ForAll(
		func(s string) bool {
			body, err := document.Parse([]byte(s))
			if err != nil {
				return false
			}
			if strings.TrimSpace(s) == "" {
				return len(body) == 0
			}
			return len(body) == 1 && body[0].Text == s
		},
		gen.AlphaString(),
	))

	properties.Property("quoted props survive parsing in order", prop.ForAll(
		func(name string, values []string) bool {
			var b strings.Builder
			b.WriteString("<" + name)
			for i, v := range values {
				b.WriteString(" p")
				b.WriteString(string(rune('a' + i%26)))
				b.WriteString(strings.Repeat("x", i/26))
				b.WriteString(`="` + v + `"`)
			}
			b.WriteString(" />")

			body, err := document.Parse([]byte(b.String()))
			if err != nil || len(body) != 1 || body[0].Name != name {
				return false
			}
			if len(body[0].Props) != len(values) {
				return false
			}
			for i, v := range values {
				if body[0].Props[i].Value != v {
					return false
				}
			}
			return true
		},
		gen.Identifier().Map(func(s string) string { return "C" + s }),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
