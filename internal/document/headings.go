package document

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Heading is a markdown heading found in a body's text.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

// Headings lists "#"-style headings outside fenced code, for a page's table
// of contents. IDs are unique within the body.
func Headings(b Body) []Heading {
	var (
		out     []Heading
		marker  byte
		run     int
		seenIDs = make(map[string]int)
	)
	for _, n := range b {
		if n.Kind != KindText {
			continue
		}
		for _, line := range strings.Split(n.Text, "\n") {
			raw := []byte(line)
			if marker != 0 {
				if isFenceClose(raw, marker, run) {
					marker = 0
				}
				continue
			}
			if c, r := fenceOpen(raw); r > 0 {
				marker, run = c, r
				continue
			}
			if h, ok := parseHeading(line); ok {
				h.ID = uniqueID(Slugify(h.Text), seenIDs)
				out = append(out, h)
			}
		}
	}
	return out
}

func parseHeading(line string) (Heading, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return Heading{}, false
	}
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return Heading{}, false
	}
	rest := trimmed[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return Heading{}, false
	}
	text := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(rest), "#"))
	if text == "" {
		return Heading{}, false
	}
	return Heading{Level: level, Text: text}, true
}

func uniqueID(id string, seen map[string]int) string {
	n := seen[id]
	seen[id] = n + 1
	if n == 0 {
		return id
	}
	return id + "-" + strconv.Itoa(n)
}

// Slugify turns heading text into an anchor id: diacritics stripped, lower
// case, runs of other characters collapsed to '-'.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = cases.Lower(language.Und).String(folded)

	var b strings.Builder
	dash := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
