// Package ingest turns report files into pages of plain text for the filter
// and extraction stages. Each supported file type has its own Strategy; the
// ForFile factory picks one by extension so the cmd layer never switches on
// file types itself.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"financial_analyst/pkg/core/filter"
)

// Document is the ingested report: the source path plus its pages in
// reading order.
type Document struct {
	Source string
	Pages  []filter.Page
}

// Text joins all pages, for callers that do not page-filter.
func (d *Document) Text() string {
	parts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n\n")
}

// Strategy reads one file format.
type Strategy interface {
	Name() string
	Ingest(path string) (*Document, error)
}

// ForFile selects a strategy by file extension.
func ForFile(path string) (Strategy, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return &MarkdownStrategy{}, nil
	case ".html", ".xhtml", ".htm":
		return &XHTMLStrategy{}, nil
	}
	return nil, fmt.Errorf("no ingestion strategy for %q", filepath.Ext(path))
}
