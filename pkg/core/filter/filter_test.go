package filter

import (
	"strings"
	"testing"

	"financial_analyst/pkg/core/config"
)

func TestScorePage(t *testing.T) {
	cfg := config.DefaultPolishFilter()

	statement := "Skonsolidowany RACHUNEK ZYSKÓW I STRAT za rok 2023. Przychody ze sprzedaży: 1000."
	if s := ScorePage(statement, cfg); s < cfg.Threshold {
		t.Errorf("statement page scored %d, below threshold %d", s, cfg.Threshold)
	}

	toc := "Spis treści\n1. List prezesa ... strona 3\n2. Rachunek zysków i strat ... strona 45"
	if s := ScorePage(toc, cfg); s >= cfg.Threshold {
		t.Errorf("table of contents scored %d, should be pushed below threshold", s)
	}

	if s := ScorePage("Nothing financial here.", cfg); s != 0 {
		t.Errorf("neutral text should score 0, got %d", s)
	}
}

func TestKeywordCountsOnce(t *testing.T) {
	cfg := config.FilterConfig{
		Keywords:  map[string]int{"aktywa": 20},
		Threshold: 30,
	}
	// Three occurrences still score 20, not 60.
	if s := ScorePage("aktywa aktywa aktywa", cfg); s != 20 {
		t.Errorf("expected 20, got %d", s)
	}
}

func TestFilterPagesKeepsOrder(t *testing.T) {
	cfg := config.DefaultPolishFilter()
	pages := []Page{
		{Number: 1, Text: "Spis treści"},
		{Number: 44, Text: "Rachunek zysków i strat"},
		{Number: 45, Text: "Sprawozdanie z sytuacji finansowej, aktywa i pasywa"},
		{Number: 90, Text: "Dane kontaktowe"},
	}

	kept := FilterPages(pages, cfg)
	if len(kept) != 2 {
		t.Fatalf("expected 2 pages kept, got %d", len(kept))
	}
	if kept[0].Number != 44 || kept[1].Number != 45 {
		t.Errorf("order not preserved: %d, %d", kept[0].Number, kept[1].Number)
	}
	for _, p := range kept {
		if p.Score < cfg.Threshold {
			t.Errorf("page %d kept with score %d below threshold", p.Number, p.Score)
		}
	}
}

func TestJoinPages(t *testing.T) {
	joined := JoinPages([]ScoredPage{
		{Page: Page{Number: 44, Text: "rachunek"}, Score: 100},
		{Page: Page{Number: 45, Text: "bilans"}, Score: 100},
	})
	if !strings.Contains(joined, "--- page 44 ---") || !strings.Contains(joined, "bilans") {
		t.Errorf("unexpected join output: %q", joined)
	}
}
