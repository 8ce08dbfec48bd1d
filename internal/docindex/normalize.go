package docindex

import (
	"regexp"
	"strings"

	"github.com/librarium-ai/librarium/internal/model"
)

var (
	imageRe      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	headingRe    = regexp.MustCompile(`^#{1,6}\s+`)
	bulletRe     = regexp.MustCompile(`^(\s*)([-*+]|\d+\.)\s+`)
	emphasisRe   = regexp.MustCompile("[*_~`]+")
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// normalize strips markup formatting from a document body, producing the
// plain-text rendition used for search and excerpts. The output contract is
// fixed: no markup markers, whitespace collapsed to single spaces, text
// content (including code block contents and link labels) preserved in order.
func normalize(raw string) string {
	var (
		b       strings.Builder
		inFence bool
	)

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			// Keep code content verbatim; only the fence markers are markup.
			b.WriteString(line)
			b.WriteByte('\n')
			continue
		}

		line = headingRe.ReplaceAllString(line, "")
		line = bulletRe.ReplaceAllString(line, "$1")
		line = strings.TrimPrefix(strings.TrimSpace(line), "> ")
		line = imageRe.ReplaceAllString(line, "$1")
		line = linkRe.ReplaceAllString(line, "$1")
		line = htmlTagRe.ReplaceAllString(line, " ")
		line = emphasisRe.ReplaceAllString(line, "")

		b.WriteString(line)
		b.WriteByte('\n')
	}

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(b.String(), " "))
}

// extractOutline scans raw markup lines for heading markers of level 1-6
// followed by text, in file order. Headings inside fenced code blocks are
// ignored.
func extractOutline(raw string) []model.Heading {
	var (
		outline []model.Heading
		inFence bool
	)

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.HasPrefix(trimmed, "#") {
			continue
		}

		level := 0
		for level < len(trimmed) && trimmed[level] == '#' {
			level++
		}
		if level > 6 || level >= len(trimmed) || trimmed[level] != ' ' {
			continue
		}
		text := strings.TrimSpace(trimmed[level:])
		if text == "" {
			continue
		}
		outline = append(outline, model.Heading{Level: level, Text: text})
	}

	return outline
}
