package render

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"financial_analyst/pkg/core/pipeline"
)

// MarkdownSummary renders a pipeline result as a markdown report: KPI table,
// revenue forecast, and the valuation summary when present. commentary, if
// non-empty, is a model-written narrative appended after cleanup.
func MarkdownSummary(res *pipeline.Result, commentary string) string {
	var b strings.Builder

	name := res.CompanyName
	if name == "" {
		name = "Company"
	}
	fmt.Fprintf(&b, "# %s\n\n", name)

	if len(res.Normalized) > 0 {
		last := res.Normalized[len(res.Normalized)-1]
		fmt.Fprintf(&b, "All figures in %s %s.\n\n", last.Currency, last.ReportingUnit)
	}

	b.WriteString("## Key performance indicators\n\n")
	b.WriteString("| Period | EBITDA | EBITDA margin | EBIT margin | Net margin | ROE | Revenue growth |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, k := range res.KPIs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			k.PeriodLabel,
			num(k.EBITDA), pct(k.EBITDAMargin), pct(k.EBITMargin),
			pct(k.NetMargin), pct(k.ROE), pct(k.RevenueGrowthYoY))
	}
	b.WriteString("\n")

	if res.Forecast != nil {
		b.WriteString("## Revenue forecast\n\n")
		fmt.Fprintf(&b, "Linear trend, R² %.3f.\n\n", res.Forecast.R2)
		b.WriteString("| Period | Revenue |\n|---|---|\n")
		for _, p := range res.Forecast.Points {
			flag := ""
			if p.Negative {
				flag = " ⚠ negative trend"
			}
			fmt.Fprintf(&b, "| %s | %.1f%s |\n", p.PeriodLabel, p.Revenue, flag)
		}
		b.WriteString("\n")
	}

	if v := res.Valuation; v != nil {
		b.WriteString("## Valuation\n\n")
		b.WriteString("| Metric | Value |\n|---|---|\n")
		fmt.Fprintf(&b, "| Enterprise value | %.1f |\n", v.EnterpriseValue)
		fmt.Fprintf(&b, "| Net debt | %.1f |\n", v.NetDebt)
		fmt.Fprintf(&b, "| Equity value | %.1f |\n", v.EquityValue)
		fmt.Fprintf(&b, "| Implied share price | %.2f |\n", v.ImpliedSharePrice)
		fmt.Fprintf(&b, "\nWACC %.1f%%, terminal growth %.1f%%.\n\n",
			v.Assumptions.WACC*100, v.Assumptions.TerminalGrowth*100)
	}

	if commentary = CleanMarkdown(commentary); commentary != "" && ValidMarkdown(commentary) {
		b.WriteString("## Commentary\n\n")
		b.WriteString(commentary)
		b.WriteString("\n")
	}

	return b.String()
}

// CleanMarkdown strips a wrapping code fence from model-written markdown.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}

// ValidMarkdown reports whether goldmark can parse the input at all.
func ValidMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	return parser.Parse(text.NewReader([]byte(input))) != nil
}

func num(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}

func pct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}
