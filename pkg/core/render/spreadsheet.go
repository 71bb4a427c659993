// Package render turns pipeline results into human-facing artifacts: a
// spreadsheet layout whose derived figures are live formulas over the
// assumption cells, and a markdown summary.
package render

import (
	"fmt"
	"sort"
	"strings"

	"financial_analyst/pkg/core/valuation"
)

// Row is one spreadsheet line: the cell label, its computed value, and the
// formula in cell-address form (empty for plain inputs).
type Row struct {
	Address string  `json:"address"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Formula string  `json:"formula,omitempty"`
}

// SpreadsheetRows lays the valuation cells out in one column, B2 downward,
// and rewrites each formula so cell names become addresses. An analyst who
// pastes the rows into a sheet can then change an assumption cell and watch
// the valuation recompute.
func SpreadsheetRows(m *valuation.ValuationModel) []Row {
	addresses := make(map[string]string, len(m.Cells))
	for i, c := range m.Cells {
		addresses[c.Name] = fmt.Sprintf("B%d", i+2)
	}

	// Substitute longest names first so "revenue_10" is never clobbered by
	// a "revenue_1" replacement.
	names := make([]string, 0, len(addresses))
	for name := range addresses {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	rows := make([]Row, 0, len(m.Cells))
	for i, c := range m.Cells {
		formula := c.Formula
		if formula != "" {
			for _, name := range names {
				formula = strings.ReplaceAll(formula, name, addresses[name])
			}
			formula = "=" + formula
		}
		rows = append(rows, Row{
			Address: fmt.Sprintf("B%d", i+2),
			Name:    c.Name,
			Value:   c.Value,
			Formula: formula,
		})
	}
	return rows
}
