package site_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/pai-courses/internal/render"
	"github.com/p-n-ai/pai-courses/internal/site"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func setupContentRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "locales", "en.json"), enMessages)
	writeFile(t, filepath.Join(root, "locales", "id.yaml"), "challenges:\n  anchor-vault:\n    title: Brankas Anchor\n")
	writeFile(t, filepath.Join(root, "courses", "anchor-vault", "introduction", "en.mdx"), introBody)
	writeFile(t, filepath.Join(root, "courses", "anchor-vault", "deposit", "en.mdx"), depositBody)
	return root
}

func TestReloader_Reload(t *testing.T) {
	root := setupContentRoot(t)
	srv := site.NewServer(render.Builtins("Quiz"))
	r := site.NewReloader(site.DirSource{Root: root}, srv)

	require.NoError(t, r.Reload(t.Context()))
	snap := srv.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, []string{"en", "id"}, snap.Messages.Locales())
	assert.Equal(t, 2, snap.Documents.Len())
	assert.Equal(t, []string{"anchor-vault", "anchor-escrow"}, snap.Indexes["en"].Slugs())

	// a broken message file keeps the previous snapshot serving
	writeFile(t, filepath.Join(root, "locales", "en.json"), `{"challenges": [1]}`)
	require.Error(t, r.Reload(t.Context()))
	assert.Same(t, snap, srv.Snapshot())

	writeFile(t, filepath.Join(root, "locales", "en.json"), enMessages)
	writeFile(t, filepath.Join(root, "courses", "anchor-vault", "withdraw", "en.mdx"), "# Withdraw\n")
	require.NoError(t, r.Reload(t.Context()))
	assert.Equal(t, uint64(2), srv.Snapshot().Generation)
	assert.Equal(t, 3, srv.Snapshot().Documents.Len())
}

func TestReloader_MissingRoot(t *testing.T) {
	srv := site.NewServer(render.Builtins())
	r := site.NewReloader(site.DirSource{Root: filepath.Join(t.TempDir(), "absent")}, srv)

	require.Error(t, r.Reload(t.Context()))
	assert.Nil(t, srv.Snapshot())
}

func TestBuildSnapshot_Slugs(t *testing.T) {
	snap := testSnapshot(t)
	assert.Equal(t, []string{"anchor-vault", "anchor-escrow"}, site.Slugs(snap.Messages, snap.Documents))
	assert.Equal(t, []string{"anchor-vault"}, snap.Indexes["id"].Slugs())
	assert.False(t, snap.BuiltAt.IsZero())
}

func TestWatch_DebouncesReload(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "courses", "a", "s", "en.mdx"), "# A\n")

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- site.Watch(ctx, root, func(context.Context) error {
			reloads.Add(1)
			return nil
		})
	}()

	// the watcher registers asynchronously, so touch the file once per tick
	// until a reload lands. Ticks are longer than the debounce window.
	n := 0
	require.Eventually(t, func() bool {
		if reloads.Load() > 0 {
			return true
		}
		n++
		_ = os.WriteFile(filepath.Join(root, "courses", "a", "s", "en.mdx"), []byte("# A\n"+string(rune('a'+n%26))+"\n"), 0o644)
		return false
	}, 10*time.Second, 2*site.DebounceDelay)

	// a burst of writes inside one debounce window reloads once
	time.Sleep(2 * site.DebounceDelay)
	before := reloads.Load()
	for i := range 5 {
		writeFile(t, filepath.Join(root, "courses", "a", "s", "en.mdx"), "# burst "+string(rune('0'+i))+"\n")
	}
	require.Eventually(t, func() bool { return reloads.Load() == before+1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(2 * site.DebounceDelay)
	assert.Equal(t, before+1, reloads.Load())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
