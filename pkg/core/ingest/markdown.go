package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"financial_analyst/pkg/core/filter"
)

// MarkdownStrategy ingests markdown or plain text reports. Pages are split
// on form feeds when the converter that produced the file emitted them,
// otherwise on top-level headings, otherwise the whole file is one page.
type MarkdownStrategy struct{}

func (s *MarkdownStrategy) Name() string { return "markdown" }

func (s *MarkdownStrategy) Ingest(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, fmt.Errorf("%s is empty", path)
	}
	if !validMarkdown(content) {
		return nil, fmt.Errorf("%s does not parse as markdown", path)
	}

	doc := &Document{Source: path}
	for i, chunk := range splitPages(content) {
		doc.Pages = append(doc.Pages, filter.Page{Number: i + 1, Text: chunk})
	}
	return doc, nil
}

// validMarkdown runs the goldmark parser over the input. Goldmark accepts
// nearly anything, so this only rejects input the parser cannot produce a
// document for at all.
func validMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	return parser.Parse(text.NewReader([]byte(input))) != nil
}

func splitPages(content string) []string {
	var raw []string
	if strings.Contains(content, "\f") {
		raw = strings.Split(content, "\f")
	} else if strings.Contains(content, "\n# ") {
		raw = splitOnHeadings(content)
	} else {
		raw = []string{content}
	}

	var pages []string
	for _, chunk := range raw {
		if trimmed := strings.TrimSpace(chunk); trimmed != "" {
			pages = append(pages, trimmed)
		}
	}
	return pages
}

// splitOnHeadings cuts before each top-level "# " heading, keeping the
// heading with its section.
func splitOnHeadings(content string) []string {
	lines := strings.Split(content, "\n")
	var pages []string
	var current []string
	for _, line := range lines {
		if strings.HasPrefix(line, "# ") && len(current) > 0 {
			pages = append(pages, strings.Join(current, "\n"))
			current = current[:0]
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		pages = append(pages, strings.Join(current, "\n"))
	}
	return pages
}
