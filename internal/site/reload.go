package site

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/p-n-ai/pai-courses/internal/content"
	"github.com/p-n-ai/pai-courses/internal/locale"
)

// Source produces the messages and documents a snapshot is built from.
type Source interface {
	Load(ctx context.Context) (*locale.Store, *content.Set, error)
}

// DirSource reads a content root laid out as
//
//	<Root>/locales/<locale>.json|.yaml
//	<Root>/courses/<course>/<section>/<locale>.mdx
type DirSource struct {
	Root string
}

// LocalesDir is where a DirSource reads message files.
func (d DirSource) LocalesDir() string { return filepath.Join(d.Root, "locales") }

// CoursesDir is where a DirSource reads documents.
func (d DirSource) CoursesDir() string { return filepath.Join(d.Root, "courses") }

func (d DirSource) Load(ctx context.Context) (*locale.Store, *content.Set, error) {
	store, err := locale.LoadDir(d.LocalesDir())
	if err != nil {
		return nil, nil, fmt.Errorf("loading messages: %w", err)
	}
	set, err := content.LoadDir(d.CoursesDir())
	if err != nil {
		return nil, nil, fmt.Errorf("loading documents: %w", err)
	}
	return store, set, nil
}

// PostgresSource reads messages from <Root>/locales and documents from a
// published Postgres store.
type PostgresSource struct {
	Root  string
	Store *content.PostgresStore
}

func (p PostgresSource) Load(ctx context.Context) (*locale.Store, *content.Set, error) {
	store, err := locale.LoadDir(DirSource{Root: p.Root}.LocalesDir())
	if err != nil {
		return nil, nil, fmt.Errorf("loading messages: %w", err)
	}
	set, err := p.Store.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading documents: %w", err)
	}
	return store, set, nil
}

// Reloader rebuilds the server's snapshot from a source.
type Reloader struct {
	mu  sync.Mutex
	src Source
	srv *Server
}

// NewReloader creates a Reloader feeding srv from src.
func NewReloader(src Source, srv *Server) *Reloader {
	return &Reloader{src: src, srv: srv}
}

// Reload loads the source and swaps in a fresh snapshot. On failure the
// current snapshot keeps serving. Concurrent calls run one at a time.
func (r *Reloader) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, set, err := r.src.Load(ctx)
	if err != nil {
		return err
	}
	snap := BuildSnapshot(store, set)
	gen := r.srv.Swap(snap)
	slog.Info("snapshot swapped",
		"generation", gen,
		"locales", len(store.Locales()),
		"documents", set.Len(),
	)
	return nil
}
