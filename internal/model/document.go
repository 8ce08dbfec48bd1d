package model

// Heading is one entry of a document outline, derived from markup heading
// markers at build time.
type Heading struct {
	Level int    `json:"level"` // 1-6
	Text  string `json:"text"`
}

// Document is one entry of the in-memory corpus index. Immutable once the
// index is built; a reload replaces whole documents, never mutates them.
type Document struct {
	ID      string    `json:"id"`
	Corpus  string    `json:"corpus"`
	Title   string    `json:"title"`
	Tags    []string  `json:"tags"`
	Raw     string    `json:"-"` // original markup
	Plain   string    `json:"-"` // derived plain text
	Outline []Heading `json:"-"`
}

// DocFormat selects which rendition of a document Get returns.
type DocFormat string

const (
	FormatRaw     DocFormat = "raw"     // original markup
	FormatPlain   DocFormat = "plain"   // normalized plain text
	FormatOutline DocFormat = "outline" // structured heading outline
)

// ValidDocFormat reports whether f is a known format selector.
func ValidDocFormat(f DocFormat) bool {
	switch f {
	case FormatRaw, FormatPlain, FormatOutline:
		return true
	}
	return false
}
