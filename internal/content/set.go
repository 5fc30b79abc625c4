// Package content holds the course documents: one body per course, section
// and locale, loaded once and read without locking.
package content

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/pai-courses/internal/locale"
)

// ErrNotFound matches every NotFoundError via errors.Is.
var ErrNotFound = errors.New("document not found")

// Path addresses one document.
type Path struct {
	Course  string `json:"course"`
	Section string `json:"section"`
	Locale  string `json:"locale"`
}

func (p Path) String() string {
	return p.Course + "/" + p.Section + "/" + p.Locale
}

// NotFoundError reports a path with no document.
type NotFoundError struct {
	Path Path
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document not found: %s", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Document is one course section in one locale.
type Document struct {
	Path     Path
	Position int
	Title    string
	Body     []byte
}

// Digest returns the blake2b-256 hex digest of the body.
func (d Document) Digest() string {
	return Digest(d.Body)
}

// Digest returns the blake2b-256 hex digest of b.
func Digest(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Set is an immutable collection of documents. Rebuild a new Set to pick up
// content changes.
type Set struct {
	docs        map[Path]Document
	courseOrder map[string]int
}

// NewSet builds a set with courses ordered by id.
func NewSet(docs ...Document) (*Set, error) {
	return NewOrderedSet(nil, docs...)
}

// NewOrderedSet builds a set whose courses follow order first; courses not
// named there come after, by id.
func NewOrderedSet(order []string, docs ...Document) (*Set, error) {
	s := &Set{
		docs:        make(map[Path]Document, len(docs)),
		courseOrder: make(map[string]int, len(order)),
	}
	for i, c := range order {
		if _, dup := s.courseOrder[c]; !dup {
			s.courseOrder[c] = i + 1
		}
	}
	for _, d := range docs {
		loc, err := locale.CanonicalLocale(d.Path.Locale)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", d.Path, err)
		}
		d.Path.Locale = loc
		if d.Path.Course == "" || d.Path.Section == "" {
			return nil, fmt.Errorf("document %s: course and section are required", d.Path)
		}
		if _, dup := s.docs[d.Path]; dup {
			return nil, fmt.Errorf("duplicate document %s", d.Path)
		}
		d.Body = append([]byte(nil), d.Body...)
		s.docs[d.Path] = d
	}
	return s, nil
}

// Document returns the document at (course, section, locale). The body is a
// copy, so repeated reads are byte-identical.
func (s *Set) Document(course, section, code string) (Document, error) {
	p := Path{Course: course, Section: section, Locale: code}
	loc, err := locale.CanonicalLocale(code)
	if err != nil {
		return Document{}, &NotFoundError{Path: p}
	}
	p.Locale = loc
	d, ok := s.docs[p]
	if !ok {
		return Document{}, &NotFoundError{Path: p}
	}
	d.Body = append([]byte(nil), d.Body...)
	return d, nil
}

// Len returns the number of documents.
func (s *Set) Len() int { return len(s.docs) }

// Courses returns the course ids in navigation order.
func (s *Set) Courses() []string {
	seen := make(map[string]bool)
	var out []string
	for p := range s.docs {
		if !seen[p.Course] {
			seen[p.Course] = true
			out = append(out, p.Course)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := s.rank(out[i]), s.rank(out[j])
		if oi != oj {
			return oi < oj
		}
		return out[i] < out[j]
	})
	return out
}

// CourseOrder returns the explicit course order the set was built with.
func (s *Set) CourseOrder() []string {
	out := make([]string, 0, len(s.courseOrder))
	for c := range s.courseOrder {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return s.courseOrder[out[i]] < s.courseOrder[out[j]] })
	return out
}

func (s *Set) rank(course string) int {
	if r, ok := s.courseOrder[course]; ok {
		return r
	}
	return len(s.courseOrder) + 1
}

// Sections returns a course's documents in one locale, ordered by position
// and then section id. Bodies are not copied.
func (s *Set) Sections(course, code string) []Document {
	loc, err := locale.CanonicalLocale(code)
	if err != nil {
		return nil
	}
	var out []Document
	for p, d := range s.docs {
		if p.Course == course && p.Locale == loc {
			out = append(out, d)
		}
	}
	sortDocuments(out)
	return out
}

// Locales returns the locales a section is available in, sorted.
func (s *Set) Locales(course, section string) []string {
	var out []string
	for p := range s.docs {
		if p.Course == course && p.Section == section {
			out = append(out, p.Locale)
		}
	}
	sort.Strings(out)
	return out
}

// All returns every document ordered by course, position, section and locale.
func (s *Set) All() []Document {
	out := make([]Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Path.Course != b.Path.Course {
			ra, rb := s.rank(a.Path.Course), s.rank(b.Path.Course)
			if ra != rb {
				return ra < rb
			}
			return a.Path.Course < b.Path.Course
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.Path.Section != b.Path.Section {
			return a.Path.Section < b.Path.Section
		}
		return a.Path.Locale < b.Path.Locale
	})
	return out
}

func sortDocuments(docs []Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Position != docs[j].Position {
			return docs[i].Position < docs[j].Position
		}
		return docs[i].Path.Section < docs[j].Path.Section
	})
}
