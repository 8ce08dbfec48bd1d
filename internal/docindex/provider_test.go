package docindex

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestProviderInitialBuildFailureIsFatal(t *testing.T) {
	root := t.TempDir()
	writeCorpus(t, root, "broken", "documents: [\n", nil)

	_, err := NewProvider(root, discardLogger())
	assert.Error(t, err)
}

func TestProviderReloadSwapsSnapshot(t *testing.T) {
	root := t.TempDir()
	writeCorpus(t, root, "general", "documents:\n  - id: one\n    title: One\n    file: one.md\n",
		map[string]string{"one.md": "first"})

	p, err := NewProvider(root, discardLogger())
	require.NoError(t, err)
	require.Equal(t, 1, p.Index().Len())

	// Add a document and reload.
	manifest := "documents:\n  - id: one\n    title: One\n    file: one.md\n  - id: two\n    title: Two\n    file: two.md\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "general", "two.md"), []byte("second"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "general", manifestName), []byte(manifest), 0o644))

	require.NoError(t, p.Reload())
	assert.Equal(t, 2, p.Index().Len())
}

func TestProviderReloadFailureKeepsPreviousSnapshot(t *testing.T) {
	root := t.TempDir()
	writeCorpus(t, root, "general", "documents:\n  - id: one\n    title: One\n    file: one.md\n",
		map[string]string{"one.md": "first"})

	p, err := NewProvider(root, discardLogger())
	require.NoError(t, err)
	old := p.Index()

	require.NoError(t, os.WriteFile(filepath.Join(root, "general", manifestName), []byte("documents: [\n"), 0o644))

	require.Error(t, p.Reload())
	assert.Same(t, old, p.Index(), "failed reload must keep the previous snapshot serving")
}

func TestProviderWatchReloadsOnChange(t *testing.T) {
	root := t.TempDir()
	writeCorpus(t, root, "general", "documents:\n  - id: one\n    title: One\n    file: one.md\n",
		map[string]string{"one.md": "first"})

	p, err := NewProvider(root, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Watch(ctx) }()

	// Give the watcher a moment to register before mutating the tree.
	time.Sleep(100 * time.Millisecond)

	manifest := "documents:\n  - id: one\n    title: One\n    file: one.md\n  - id: two\n    title: Two\n    file: two.md\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "general", "two.md"), []byte("second"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "general", manifestName), []byte(manifest), 0o644))

	require.Eventually(t, func() bool {
		return p.Index().Len() == 2
	}, 5*time.Second, 50*time.Millisecond, "watcher should rebuild the index")

	cancel()
	require.NoError(t, <-done)
}
