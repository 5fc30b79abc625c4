// Package site serves the course content over HTTP: an immutable snapshot of
// messages, documents and per-locale indexes, swapped atomically on reload.
package site

import (
	"log/slog"
	"time"

	"github.com/p-n-ai/pai-courses/internal/catalog"
	"github.com/p-n-ai/pai-courses/internal/content"
	"github.com/p-n-ai/pai-courses/internal/locale"
)

// Snapshot is one consistent view of the content. Nothing in it is modified
// after BuildSnapshot returns, so handlers read it without locking.
type Snapshot struct {
	Messages   *locale.Store
	Documents  *content.Set
	Indexes    map[string]*catalog.Index
	Generation uint64
	BuiltAt    time.Time
}

// BuildSnapshot indexes every locale in store. Course ids from the document
// set come first, followed by challenge slugs that only the message files
// name. A slug that cannot be resolved in a locale is logged and left out of
// that locale's index.
func BuildSnapshot(store *locale.Store, docs *content.Set) *Snapshot {
	slugs := Slugs(store, docs)

	indexes := make(map[string]*catalog.Index)
	for _, loc := range store.Locales() {
		b, _ := store.Bundle(loc)
		idx, err := catalog.BuildPartial(b, slugs)
		if err != nil {
			slog.Warn("index incomplete", "locale", loc, "error", err)
		}
		indexes[loc] = idx
	}

	return &Snapshot{
		Messages:  store,
		Documents: docs,
		Indexes:   indexes,
		BuiltAt:   time.Now(),
	}
}

// Slugs lists the challenge slugs a snapshot indexes, in navigation order.
func Slugs(store *locale.Store, docs *content.Set) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	if docs != nil {
		for _, c := range docs.Courses() {
			add(c)
		}
	}
	for _, loc := range store.Locales() {
		b, _ := store.Bundle(loc)
		for _, s := range b.ChallengeSlugs() {
			add(s)
		}
	}
	return out
}
