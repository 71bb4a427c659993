package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"financial_analyst/pkg/core/filter"
)

// XHTMLStrategy ingests HTML and XHTML reports (ESEF filings are XHTML).
// Script, style and nav noise is dropped; explicit page containers become
// pages, otherwise the body is a single page.
type XHTMLStrategy struct{}

func (s *XHTMLStrategy) Name() string { return "xhtml" }

func (s *XHTMLStrategy) Ingest(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	gdoc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	gdoc.Find("script, style, nav, header, footer").Remove()

	doc := &Document{Source: path}

	// PDF-to-XHTML converters mark pages with a class or data attribute.
	pageSel := gdoc.Find("div.page, div[data-page], section.page")
	if pageSel.Length() > 0 {
		pageSel.Each(func(i int, sel *goquery.Selection) {
			if text := normalize(sel.Text()); text != "" {
				doc.Pages = append(doc.Pages, filter.Page{Number: i + 1, Text: text})
			}
		})
	} else {
		text := normalize(gdoc.Find("body").Text())
		if text == "" {
			return nil, fmt.Errorf("%s has no readable text", path)
		}
		doc.Pages = []filter.Page{{Number: 1, Text: text}}
	}

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%s has no readable text", path)
	}
	return doc, nil
}

// normalize collapses runs of whitespace that HTML layout leaves behind,
// preserving line breaks so table rows stay on separate lines.
func normalize(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		if trimmed := strings.Join(strings.Fields(line), " "); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}
