// Package filter scores document pages against a weighted keyword table and
// keeps the ones that look like financial statements. This runs before the
// model call: a 200-page annual report shrinks to the handful of statement
// pages, which keeps the extraction prompt small and cheap.
package filter

import (
	"fmt"
	"strings"

	"financial_analyst/pkg/core/config"
)

// Page is one unit of scoreable text, usually a PDF page or a markdown
// section.
type Page struct {
	Number int
	Text   string
}

// ScoredPage carries the keyword score next to the page for diagnostics.
type ScoredPage struct {
	Page
	Score int
}

// ScorePage sums the configured keyword weights over the lowercased text.
// Repeated occurrences of a keyword count once: statement headings appear a
// single time per page and occurrence counting would let boilerplate
// footers dominate.
func ScorePage(text string, cfg config.FilterConfig) int {
	lower := strings.ToLower(text)
	score := 0
	for kw, weight := range cfg.Keywords {
		if strings.Contains(lower, kw) {
			score += weight
		}
	}
	for kw, weight := range cfg.NegativeKeywords {
		if strings.Contains(lower, kw) {
			score += weight
		}
	}
	return score
}

// FilterPages returns the pages whose score meets the threshold, in their
// original order, each with its score attached.
func FilterPages(pages []Page, cfg config.FilterConfig) []ScoredPage {
	var kept []ScoredPage
	for _, p := range pages {
		if s := ScorePage(p.Text, cfg); s >= cfg.Threshold {
			kept = append(kept, ScoredPage{Page: p, Score: s})
		}
	}
	return kept
}

// JoinPages concatenates kept pages into a single extraction input, with a
// page marker so the model can cite locations.
func JoinPages(pages []ScoredPage) string {
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if p.Number > 0 {
			fmt.Fprintf(&b, "--- page %d ---\n", p.Number)
		}
		b.WriteString(strings.TrimSpace(p.Text))
	}
	return b.String()
}
