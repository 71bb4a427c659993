// Package extract turns filtered report text into a structured CompanyReport
// through a model call. The model boundary is the least reliable part of the
// pipeline, so everything here is defensive: lenient JSON parsing, retry
// with backoff, and per-period required-field checks that drop broken
// periods instead of failing the run.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"financial_analyst/pkg/core/llm"
	"financial_analyst/pkg/models"
)

const (
	// Role is the agent routing key for the extraction call.
	Role = "extractor"

	maxAttempts = 5
	baseBackoff = 2 * time.Second
	maxBackoff  = 30 * time.Second
)

const systemPrompt = `You are a financial data extraction engine. You read annual report text and return ONLY a JSON object, no prose, no markdown fences.

Schema:
{
  "company_name": string,
  "periods": [
    {
      "period_label": string,        // fiscal year, e.g. "2023"
      "currency": string,            // ISO code as printed in the report
      "reporting_unit": string,      // "units", "thousands" or "millions"
      "revenue": number,
      "cogs": number or null,
      "ebit": number,
      "depreciation_amortization": number or null,
      "net_income": number,
      "total_assets": number,
      "total_liabilities": number,
      "equity": number,
      "tax_rate": number or null,    // effective rate as a fraction
      "total_debt": number or null,
      "cash_and_equivalents": number or null,
      "shares_outstanding": number or null,
      "capex": number or null
    }
  ]
}

Rules:
- Report figures exactly as printed. Do not rescale units yourself.
- Use null for any figure the text does not state. Never guess.
- Numbers may be returned as strings when the source formatting is ambiguous.`

// rawPeriod is the wire shape: every figure is a FlexNumber so the model may
// answer with numbers or formatted strings.
type rawPeriod struct {
	PeriodLabel              string     `json:"period_label"`
	Currency                 string     `json:"currency"`
	ReportingUnit            string     `json:"reporting_unit"`
	Revenue                  FlexNumber `json:"revenue"`
	COGS                     FlexNumber `json:"cogs"`
	EBIT                     FlexNumber `json:"ebit"`
	DepreciationAmortization FlexNumber `json:"depreciation_amortization"`
	NetIncome                FlexNumber `json:"net_income"`
	TotalAssets              FlexNumber `json:"total_assets"`
	TotalLiabilities         FlexNumber `json:"total_liabilities"`
	Equity                   FlexNumber `json:"equity"`
	TaxRate                  FlexNumber `json:"tax_rate"`
	TotalDebt                FlexNumber `json:"total_debt"`
	CashAndEquivalents       FlexNumber `json:"cash_and_equivalents"`
	SharesOutstanding        FlexNumber `json:"shares_outstanding"`
	Capex                    FlexNumber `json:"capex"`
}

type rawReport struct {
	CompanyName string      `json:"company_name"`
	Periods     []rawPeriod `json:"periods"`
}

// Extractor drives the model call.
type Extractor struct {
	provider llm.Provider
	model    string
	log      zerolog.Logger

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

func New(provider llm.Provider, model string, log zerolog.Logger) *Extractor {
	return &Extractor{provider: provider, model: model, log: log, sleep: time.Sleep}
}

// Extract asks the model for structured statements and converts the answer
// into the engine's input type. Periods missing a required figure are
// dropped with a warning naming the field; figures themselves are not
// logged.
func (e *Extractor) Extract(ctx context.Context, text string) (*models.CompanyReport, error) {
	raw, err := e.callWithRetry(ctx, text)
	if err != nil {
		return nil, err
	}

	report := &models.CompanyReport{CompanyName: raw.CompanyName}
	for _, rp := range raw.Periods {
		period, missing := convertPeriod(rp)
		if len(missing) > 0 {
			e.log.Warn().
				Str("period", rp.PeriodLabel).
				Strs("missing", missing).
				Msg("dropping period with missing required fields")
			continue
		}
		report.Periods = append(report.Periods, period)
	}

	if len(report.Periods) == 0 {
		return nil, fmt.Errorf("extraction yielded no usable periods")
	}
	return report, nil
}

func (e *Extractor) callWithRetry(ctx context.Context, text string) (*rawReport, error) {
	opts := llm.Options{Model: e.model, Temperature: 0.1, JSONMode: true}
	prompt := "Extract the financial statements from this report:\n\n" + text

	var lastErr error
	backoff := baseBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		answer, err := e.provider.Generate(ctx, systemPrompt, prompt, opts)
		if err == nil {
			var raw rawReport
			if perr := SmartParse(answer, &raw); perr == nil && len(raw.Periods) > 0 {
				return &raw, nil
			} else if perr != nil {
				err = fmt.Errorf("parse model output: %w", perr)
			} else {
				err = fmt.Errorf("model returned no periods")
			}
		}

		lastErr = err
		e.log.Warn().Err(err).Int("attempt", attempt).Msg("extraction attempt failed")
		if attempt < maxAttempts {
			e.sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
	return nil, fmt.Errorf("extraction failed after %d attempts: %w", maxAttempts, lastErr)
}

// convertPeriod maps the wire shape onto FinancialPeriod and reports which
// required fields are absent.
func convertPeriod(rp rawPeriod) (models.FinancialPeriod, []string) {
	p := models.FinancialPeriod{
		PeriodLabel:   strings.TrimSpace(rp.PeriodLabel),
		Currency:      strings.ToUpper(strings.TrimSpace(rp.Currency)),
		ReportingUnit: models.Unit(strings.ToLower(strings.TrimSpace(rp.ReportingUnit))),

		Revenue:          rp.Revenue.Ptr(),
		EBIT:             rp.EBIT.Ptr(),
		NetIncome:        rp.NetIncome.Ptr(),
		TotalAssets:      rp.TotalAssets.Ptr(),
		TotalLiabilities: rp.TotalLiabilities.Ptr(),
		Equity:           rp.Equity.Ptr(),

		COGS:                     rp.COGS.Ptr(),
		DepreciationAmortization: rp.DepreciationAmortization.Ptr(),
		TaxRate:                  rp.TaxRate.Ptr(),
		TotalDebt:                rp.TotalDebt.Ptr(),
		CashAndEquivalents:       rp.CashAndEquivalents.Ptr(),
		SharesOutstanding:        rp.SharesOutstanding.Ptr(),
		Capex:                    rp.Capex.Ptr(),
	}

	var missing []string
	if p.PeriodLabel == "" {
		missing = append(missing, "period_label")
	}
	if p.Currency == "" {
		missing = append(missing, "currency")
	}
	if p.ReportingUnit == "" {
		missing = append(missing, "reporting_unit")
	}
	if p.Revenue == nil {
		missing = append(missing, "revenue")
	}
	if p.EBIT == nil {
		missing = append(missing, "ebit")
	}
	if p.NetIncome == nil {
		missing = append(missing, "net_income")
	}
	if p.TotalAssets == nil {
		missing = append(missing, "total_assets")
	}
	if p.TotalLiabilities == nil {
		missing = append(missing, "total_liabilities")
	}
	if p.Equity == nil {
		missing = append(missing, "equity")
	}
	return p, missing
}
