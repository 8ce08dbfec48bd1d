// Package docindex builds and serves the in-memory document index backing all
// corpus reads.
//
// An Index is built atomically from a corpus directory tree and is immutable
// afterwards: any number of concurrent readers may call List, Get, Search and
// Render without coordination. Reload is done by building a fresh Index and
// swapping it through a Provider; a live snapshot is never mutated.
package docindex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/librarium-ai/librarium/internal/model"
)

// ErrNotFound is returned by Get for an unknown document id.
var ErrNotFound = errors.New("docindex: document not found")

// indexedDoc pairs a document with its precomputed search haystack.
type indexedDoc struct {
	doc      *model.Document
	haystack string // lowercase(title + " " + tags + " " + plain)
}

// Index is an immutable, load-ordered document collection.
type Index struct {
	docs    []indexedDoc
	byID    map[string]*model.Document
	corpora []string // sorted corpus names
}

// Build loads every corpus under dir. Each immediate subdirectory of dir is a
// corpus and must contain a manifest.yaml naming its documents in order.
//
// The build is all-or-nothing: an unreadable manifest, an invalid entry, a
// duplicate id, or an unreadable referenced file fails the whole build and no
// partial index is ever returned.
func Build(dir string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("docindex: read corpus root %s: %w", dir, err)
	}

	var corpora []string
	for _, e := range entries {
		if e.IsDir() {
			corpora = append(corpora, e.Name())
		}
	}
	sort.Strings(corpora)

	ix := &Index{byID: make(map[string]*model.Document)}
	for _, corpus := range corpora {
		if err := ix.loadCorpus(filepath.Join(dir, corpus), corpus); err != nil {
			return nil, err
		}
		ix.corpora = append(ix.corpora, corpus)
	}

	return ix, nil
}

func (ix *Index) loadCorpus(corpusDir, corpus string) error {
	m, err := loadManifest(corpusDir)
	if err != nil {
		return err
	}

	for _, entry := range m.Documents {
		if _, exists := ix.byID[entry.ID]; exists {
			return fmt.Errorf("docindex: duplicate document id %q in corpus %q", entry.ID, corpus)
		}

		raw, err := os.ReadFile(filepath.Join(corpusDir, entry.File)) //nolint:gosec // path validated by loadManifest
		if err != nil {
			return fmt.Errorf("docindex: read document %q: %w", entry.ID, err)
		}

		tags := entry.Tags
		if tags == nil {
			tags = []string{}
		}

		doc := &model.Document{
			ID:      entry.ID,
			Corpus:  corpus,
			Title:   entry.Title,
			Tags:    tags,
			Raw:     string(raw),
			Plain:   normalize(string(raw)),
			Outline: extractOutline(string(raw)),
		}

		ix.docs = append(ix.docs, indexedDoc{
			doc:      doc,
			haystack: strings.ToLower(doc.Title + " " + strings.Join(doc.Tags, " ") + " " + doc.Plain),
		})
		ix.byID[doc.ID] = doc
	}

	return nil
}

// Corpora returns the sorted corpus names present in the index. The slice is
// a copy; callers may reorder it without disturbing concurrent readers.
func (ix *Index) Corpora() []string {
	return append([]string(nil), ix.corpora...)
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// Lookup returns the document with the given id, if present. The returned
// document is shared and must not be modified.
func (ix *Index) Lookup(id string) (*model.Document, bool) {
	doc, ok := ix.byID[id]
	return doc, ok
}

// DocSummary is the per-document row returned by List and Search.
type DocSummary struct {
	ID     string   `json:"id"`
	Corpus string   `json:"corpus"`
	Title  string   `json:"title"`
	Tags   []string `json:"tags"`
	Score  int      `json:"score,omitempty"` // only set by Search
}

// Page is a paginated slice of summaries with the total match count, so pages
// are composable.
type Page struct {
	Total int          `json:"total"`
	Docs  []DocSummary `json:"documents"`
}

// List returns documents in load order. corpus filters to one corpus when
// non-empty; allowed restricts results to the given corpora (nil means
// unrestricted).
func (ix *Index) List(corpus string, allowed map[string]bool, limit, offset int) Page {
	var matches []DocSummary
	for _, d := range ix.docs {
		if !corpusVisible(d.doc.Corpus, corpus, allowed) {
			continue
		}
		matches = append(matches, summarize(d.doc, 0))
	}
	return paginate(matches, limit, offset)
}

// GetResult is the content payload returned by Get.
type GetResult struct {
	ID      string          `json:"id"`
	Corpus  string          `json:"corpus"`
	Title   string          `json:"title"`
	Format  model.DocFormat `json:"format"`
	Content any             `json:"content"` // string for raw/plain, []model.Heading for outline
}

// Get returns one rendition of a document. Unknown ids fail with ErrNotFound;
// the index is never modified.
func (ix *Index) Get(id string, format model.DocFormat) (GetResult, error) {
	doc, ok := ix.byID[id]
	if !ok {
		return GetResult{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	res := GetResult{ID: doc.ID, Corpus: doc.Corpus, Title: doc.Title, Format: format}
	switch format {
	case model.FormatRaw:
		res.Content = doc.Raw
	case model.FormatPlain:
		res.Content = doc.Plain
	case model.FormatOutline:
		outline := doc.Outline
		if outline == nil {
			outline = []model.Heading{}
		}
		res.Content = outline
	default:
		return GetResult{}, fmt.Errorf("docindex: unknown format %q", format)
	}
	return res, nil
}

// Search scores documents by the number of non-overlapping occurrences of the
// normalized query in each document's haystack. Results are ordered by score
// descending with ties broken by load order, so identical arguments against
// the same index always return identical pages.
func (ix *Index) Search(query, corpus string, allowed map[string]bool, limit, offset int) Page {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Page{Total: 0, Docs: []DocSummary{}}
	}

	var matches []DocSummary
	for _, d := range ix.docs {
		if !corpusVisible(d.doc.Corpus, corpus, allowed) {
			continue
		}
		score := strings.Count(d.haystack, q)
		if score == 0 {
			continue
		}
		matches = append(matches, summarize(d.doc, score))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return paginate(matches, limit, offset)
}

// Excerpt is a bounded plain-text snippet of a source document.
type Excerpt struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// AnswerPack is the deterministic bundle Render returns: the top-matching
// source document ids for a query within one audience corpus, plus bounded
// excerpts. No randomness, no calls beyond the index itself.
type AnswerPack struct {
	Audience string    `json:"audience"`
	Query    string    `json:"query"`
	Sources  []string  `json:"sources"`
	Excerpts []Excerpt `json:"excerpts"`
}

// renderSources is how many top hits Render packs.
const renderSources = 3

// maxExcerptRunes bounds each excerpt.
const maxExcerptRunes = 240

// Render runs Search scoped to the audience corpus and packs the top hits.
func (ix *Index) Render(query, audience string, allowed map[string]bool) AnswerPack {
	pack := AnswerPack{
		Audience: audience,
		Query:    query,
		Sources:  []string{},
		Excerpts: []Excerpt{},
	}

	page := ix.Search(query, audience, allowed, renderSources, 0)
	for _, hit := range page.Docs {
		doc := ix.byID[hit.ID]
		pack.Sources = append(pack.Sources, doc.ID)
		pack.Excerpts = append(pack.Excerpts, Excerpt{
			ID:    doc.ID,
			Title: doc.Title,
			Text:  truncateRunes(doc.Plain, maxExcerptRunes),
		})
	}

	return pack
}

func corpusVisible(docCorpus, filter string, allowed map[string]bool) bool {
	if filter != "" && docCorpus != filter {
		return false
	}
	if allowed != nil && !allowed[docCorpus] {
		return false
	}
	return true
}

func summarize(doc *model.Document, score int) DocSummary {
	return DocSummary{
		ID:     doc.ID,
		Corpus: doc.Corpus,
		Title:  doc.Title,
		Tags:   doc.Tags,
		Score:  score,
	}
}

func paginate(matches []DocSummary, limit, offset int) Page {
	total := len(matches)
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := matches[offset:end]
	if page == nil {
		page = []DocSummary{}
	}
	return Page{Total: total, Docs: page}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
