package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/p-n-ai/pai-courses/internal/content"
	"github.com/p-n-ai/pai-courses/internal/locale"
)

// Severity grades an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding of Check.
type Issue struct {
	Severity Severity `json:"severity"`
	Locale   string   `json:"locale"`
	Slug     string   `json:"slug"`
	Key      string   `json:"key,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	s := fmt.Sprintf("%s [%s] %s", i.Severity, i.Locale, i.Slug)
	if i.Key != "" {
		s += " " + i.Key
	}
	return s + ": " + i.Message
}

// Check cross-references the message store with the document set. Pages and
// requirements stay free-form metadata; Check only reports drift:
//
//   - a slug whose title, page title or requirement title is missing
//   - page or requirement keys present in one locale but not another
//   - a page with no document in that locale
//   - a document section with no page title in that locale
//
// docs may be nil, which skips the document checks.
func Check(store *locale.Store, docs *content.Set, slugs []string) []Issue {
	var issues []Issue
	locales := store.Locales()

	for _, slug := range slugs {
		union := map[string][]string{}
		perLocale := map[string]map[string]map[string]bool{}

		for _, loc := range locales {
			b, _ := store.Bundle(loc)
			if _, err := buildChallenge(b, slug); err != nil {
				var mt *locale.MissingTranslationError
				if errors.As(err, &mt) {
					issues = append(issues, Issue{SeverityError, loc, slug, mt.Key, "missing translation"})
				} else {
					issues = append(issues, Issue{SeverityError, loc, slug, "", err.Error()})
				}
			}

			perLocale[loc] = map[string]map[string]bool{}
			for _, group := range []string{"pages", "requirements"} {
				keys := groupKeys(b, slug, group)
				set := make(map[string]bool, len(keys))
				for _, k := range keys {
					set[k] = true
					if !slices.Contains(union[group], k) {
						union[group] = append(union[group], k)
					}
				}
				perLocale[loc][group] = set
			}
		}

		for _, loc := range locales {
			for _, group := range []string{"pages", "requirements"} {
				for _, k := range union[group] {
					if !perLocale[loc][group][k] {
						issues = append(issues, Issue{SeverityWarning, loc, slug, group + "." + k, "defined in another locale but not here"})
					}
				}
			}
		}

		if docs == nil {
			continue
		}
		for _, loc := range locales {
			for _, page := range union["pages"] {
				if !perLocale[loc]["pages"][page] {
					continue
				}
				if _, err := docs.Document(slug, page, loc); err != nil {
					issues = append(issues, Issue{SeverityWarning, loc, slug, "pages." + page, "page has no document"})
				}
			}
			for _, d := range docs.Sections(slug, loc) {
				if !perLocale[loc]["pages"][d.Path.Section] && len(union["pages"]) > 0 {
					issues = append(issues, Issue{SeverityWarning, loc, slug, "pages." + d.Path.Section, "document has no page title"})
				}
			}
		}
	}
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

func groupKeys(b *locale.Bundle, slug, group string) []string {
	node, ok := b.Root().Get("challenges." + slug + "." + group)
	if !ok || node.IsLeaf() {
		return nil
	}
	return node.Keys()
}
