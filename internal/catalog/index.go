// Package catalog builds the navigation index of challenges: titles, pages
// and requirements per locale, in the order the message files list them.
package catalog

import (
	"errors"
	"fmt"

	"github.com/p-n-ai/pai-courses/internal/locale"
)

// Entry is a titled page or requirement.
type Entry struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Challenge is one course in the index.
type Challenge struct {
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Pages        []Entry `json:"pages,omitempty"`
	Requirements []Entry `json:"requirements,omitempty"`
}

// Index is the materialised navigation tree for one locale. It is not
// modified after Build returns.
type Index struct {
	Locale     string      `json:"locale"`
	Challenges []Challenge `json:"challenges"`

	bySlug map[string]int
}

// Build resolves every slug against b, keeping the slug order given and the
// page/requirement order of the message file. Any missing title fails the
// build with a MissingTranslationError. Repeated slugs are indexed once.
func Build(b *locale.Bundle, slugs []string) (*Index, error) {
	idx := &Index{
		Locale:     b.Locale(),
		Challenges: make([]Challenge, 0, len(slugs)),
		bySlug:     make(map[string]int, len(slugs)),
	}
	for _, slug := range slugs {
		if _, dup := idx.bySlug[slug]; dup {
			continue
		}
		ch, err := buildChallenge(b, slug)
		if err != nil {
			return nil, err
		}
		idx.bySlug[slug] = len(idx.Challenges)
		idx.Challenges = append(idx.Challenges, ch)
	}
	return idx, nil
}

func buildChallenge(b *locale.Bundle, slug string) (Challenge, error) {
	prefix := "challenges." + slug
	title, err := b.Lookup(prefix + ".title")
	if err != nil {
		return Challenge{}, err
	}
	ch := Challenge{Slug: slug, Title: title}

	if ch.Pages, err = entries(b, prefix, "pages"); err != nil {
		return Challenge{}, err
	}
	if ch.Requirements, err = entries(b, prefix, "requirements"); err != nil {
		return Challenge{}, err
	}
	return ch, nil
}

func entries(b *locale.Bundle, prefix, group string) ([]Entry, error) {
	node, ok := b.Root().Get(prefix + "." + group)
	if !ok || node.IsLeaf() {
		return nil, nil
	}
	keys := node.Keys()
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		title, err := b.Lookup(prefix + "." + group + "." + k + ".title")
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Slug: k, Title: title})
	}
	return out, nil
}

// BuildPartial is Build for serving: slugs that fail to resolve are left out
// of the index instead of failing it. The skipped failures are joined into
// the returned error, which comes back alongside a usable index.
func BuildPartial(b *locale.Bundle, slugs []string) (*Index, error) {
	idx := &Index{
		Locale:     b.Locale(),
		Challenges: make([]Challenge, 0, len(slugs)),
		bySlug:     make(map[string]int, len(slugs)),
	}
	var errs []error
	for _, slug := range slugs {
		if _, dup := idx.bySlug[slug]; dup {
			continue
		}
		ch, err := buildChallenge(b, slug)
		if err != nil {
			errs = append(errs, fmt.Errorf("challenge %s: %w", slug, err))
			continue
		}
		idx.bySlug[slug] = len(idx.Challenges)
		idx.Challenges = append(idx.Challenges, ch)
	}
	return idx, errors.Join(errs...)
}

// BuildAll builds one index per configured locale. Errors from every locale
// are joined.
func BuildAll(store *locale.Store, slugs []string) (map[string]*Index, error) {
	out := make(map[string]*Index)
	var errs []error
	for _, loc := range store.Locales() {
		b, _ := store.Bundle(loc)
		idx, err := Build(b, slugs)
		if err != nil {
			errs = append(errs, fmt.Errorf("locale %s: %w", loc, err))
			continue
		}
		out[loc] = idx
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// Challenge returns the entry for slug.
func (idx *Index) Challenge(slug string) (Challenge, bool) {
	i, ok := idx.bySlug[slug]
	if !ok {
		return Challenge{}, false
	}
	return idx.Challenges[i], true
}

// Slugs returns the indexed slugs in order.
func (idx *Index) Slugs() []string {
	out := make([]string, len(idx.Challenges))
	for i, c := range idx.Challenges {
		out[i] = c.Slug
	}
	return out
}
