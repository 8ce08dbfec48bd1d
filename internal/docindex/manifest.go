package docindex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// manifestName is the file every corpus directory must contain.
const manifestName = "manifest.yaml"

// manifest is the on-disk description of one corpus: an ordered list of
// document entries. Order is significant; it defines load order and the
// tie-break order for search results.
type manifest struct {
	Documents []manifestEntry `yaml:"documents"`
}

type manifestEntry struct {
	ID    string   `yaml:"id"`
	Title string   `yaml:"title"`
	File  string   `yaml:"file"`
	Tags  []string `yaml:"tags"`
}

// loadManifest reads and validates the manifest of a corpus directory.
func loadManifest(corpusDir string) (manifest, error) {
	path := filepath.Join(corpusDir, manifestName)
	raw, err := os.ReadFile(path) //nolint:gosec // corpus dir comes from config
	if err != nil {
		return manifest{}, fmt.Errorf("docindex: read manifest %s: %w", path, err)
	}

	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return manifest{}, fmt.Errorf("docindex: parse manifest %s: %w", path, err)
	}

	for i, entry := range m.Documents {
		if entry.ID == "" {
			return manifest{}, fmt.Errorf("docindex: manifest %s: entry %d has no id", path, i)
		}
		if entry.Title == "" {
			return manifest{}, fmt.Errorf("docindex: manifest %s: entry %q has no title", path, entry.ID)
		}
		if entry.File == "" {
			return manifest{}, fmt.Errorf("docindex: manifest %s: entry %q has no file", path, entry.ID)
		}
		if filepath.IsAbs(entry.File) || strings.Contains(entry.File, "..") {
			return manifest{}, fmt.Errorf("docindex: manifest %s: entry %q references a file outside the corpus directory", path, entry.ID)
		}
	}

	return m, nil
}
