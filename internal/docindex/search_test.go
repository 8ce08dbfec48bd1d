package docindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchEmptyQueryIsDeterministicallyEmpty(t *testing.T) {
	ix := buildTestIndex(t)

	for _, q := range []string{"", "   ", "\t\n"} {
		for _, corpus := range []string{"", "human", "technical", "nonexistent"} {
			page := ix.Search(q, corpus, nil, 10, 0)
			assert.Equal(t, 0, page.Total)
			assert.Empty(t, page.Docs)
		}
	}
}

func TestSearchScoresAndOrders(t *testing.T) {
	ix := buildTestIndex(t)

	// "agent" appears once in welcome, four times in faq (title-less body
	// occurrences plus tag-free haystack), once in arch.
	page := ix.Search("agent", "", nil, 10, 0)
	require.Equal(t, 3, page.Total)

	assert.Equal(t, "faq", page.Docs[0].ID, "highest score first")
	assert.Greater(t, page.Docs[0].Score, page.Docs[1].Score)

	// Ties are broken by load order: welcome and arch both score 1 and
	// welcome loads first.
	assert.Equal(t, "welcome", page.Docs[1].ID)
	assert.Equal(t, "arch", page.Docs[2].ID)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	ix := buildTestIndex(t)

	lower := ix.Search("agent", "", nil, 10, 0)
	upper := ix.Search("  AGENT ", "", nil, 10, 0)
	assert.Equal(t, lower, upper)
}

func TestSearchMatchesTitleAndTags(t *testing.T) {
	ix := buildTestIndex(t)

	page := ix.Search("onboarding", "", nil, 10, 0)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "welcome", page.Docs[0].ID)

	page = ix.Search("architecture", "", nil, 10, 0)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "arch", page.Docs[0].ID)
}

func TestSearchCorpusScopeAndAllowedSet(t *testing.T) {
	ix := buildTestIndex(t)

	page := ix.Search("agent", "human", nil, 10, 0)
	assert.Equal(t, 2, page.Total)

	page = ix.Search("agent", "", map[string]bool{"technical": true}, 10, 0)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "arch", page.Docs[0].ID)
}

func TestSearchIsIdempotent(t *testing.T) {
	ix := buildTestIndex(t)

	first := ix.Search("agent", "", nil, 2, 0)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ix.Search("agent", "", nil, 2, 0))
	}
}

func TestSearchPagination(t *testing.T) {
	ix := buildTestIndex(t)

	all := ix.Search("agent", "", nil, 10, 0)
	require.Equal(t, 3, all.Total)

	var ids []string
	for offset := 0; offset < 4; offset += 2 {
		page := ix.Search("agent", "", nil, 2, offset)
		assert.Equal(t, 3, page.Total)
		for _, d := range page.Docs {
			ids = append(ids, d.ID)
		}
	}
	require.Len(t, ids, 3)
	assert.Equal(t, []string{all.Docs[0].ID, all.Docs[1].ID, all.Docs[2].ID}, ids)
}

func TestRenderPacksTopSources(t *testing.T) {
	ix := buildTestIndex(t)

	pack := ix.Render("agent", "human", nil)
	assert.Equal(t, "human", pack.Audience)
	assert.Equal(t, "agent", pack.Query)

	// Both human docs match; ordered by score.
	require.Equal(t, []string{"faq", "welcome"}, pack.Sources)
	require.Len(t, pack.Excerpts, 2)
	assert.Equal(t, "faq", pack.Excerpts[0].ID)
	assert.NotEmpty(t, pack.Excerpts[0].Text)

	// Deterministic on repeat.
	assert.Equal(t, pack, ix.Render("agent", "human", nil))
}

func TestRenderBoundsExcerpts(t *testing.T) {
	root := t.TempDir()
	long := ""
	for i := 0; i < 200; i++ {
		long += "verbose filler sentence about gateways. "
	}
	writeCorpus(t, root, "general", "documents:\n  - id: big\n    title: Big\n    file: big.md\n",
		map[string]string{"big.md": long})

	ix, err := Build(root)
	require.NoError(t, err)

	pack := ix.Render("gateways", "general", nil)
	require.Len(t, pack.Excerpts, 1)
	assert.LessOrEqual(t, len([]rune(pack.Excerpts[0].Text)), maxExcerptRunes+1)
}

func TestRenderNoMatches(t *testing.T) {
	ix := buildTestIndex(t)

	pack := ix.Render("xyzzy-not-present", "human", nil)
	assert.Empty(t, pack.Sources)
	assert.Empty(t, pack.Excerpts)
}
