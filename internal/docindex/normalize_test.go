package docindex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/librarium-ai/librarium/internal/model"
)

func TestNormalizeStripsMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "# Title\n\nBody text.", "Title Body text."},
		{"emphasis", "some *bold* and _italic_ and `code` words", "some bold and italic and code words"},
		{"link", "see [the guide](https://example.com/guide) for more", "see the guide for more"},
		{"image", "![diagram of flow](img.png) caption", "diagram of flow caption"},
		{"bullets", "- first\n- second\n1. third", "first second third"},
		{"blockquote", "> quoted words", "quoted words"},
		{"html", "before <br/> after", "before after"},
		{"whitespace collapse", "a\n\n\n   b\t\tc", "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.in))
		})
	}
}

func TestNormalizeKeepsCodeContent(t *testing.T) {
	in := "intro\n```go\nfunc main() {}\n```\noutro"
	got := normalize(in)
	assert.Contains(t, got, "func main() {}")
	assert.NotContains(t, got, "```")
}

func TestExtractOutlineLevelsAndOrder(t *testing.T) {
	in := "# One\ntext\n## Two\n### Three\n####### toodeep\n#missing-space\n## \n###### Six"
	got := extractOutline(in)
	assert.Equal(t, []model.Heading{
		{Level: 1, Text: "One"},
		{Level: 2, Text: "Two"},
		{Level: 3, Text: "Three"},
		{Level: 6, Text: "Six"},
	}, got)
}

func TestExtractOutlineIgnoresFencedCode(t *testing.T) {
	in := "# Real\n```\n# not a heading\n```\n## Also real"
	got := extractOutline(in)
	assert.Equal(t, []model.Heading{
		{Level: 1, Text: "Real"},
		{Level: 2, Text: "Also real"},
	}, got)
}
