// Package config holds the injected configuration for the engine and the
// surrounding pipeline: valuation assumptions, the currency rate table, and
// the page-filter keyword sets. Nothing here is consulted as a process-wide
// global; callers load a Config (or take the documented defaults) and pass
// the pieces into each stage explicitly, so concurrent invocations can carry
// independent tables and assumptions.
package config

import (
	"fmt"
	"os"

	"financial_analyst/pkg/models"

	"gopkg.in/yaml.v2"
)

// Documented defaults for the valuation assumptions. Every one of them is
// overridable per call via Overrides.
const (
	DefaultWACC                = 0.10  // 10% discount rate
	DefaultTerminalGrowth      = 0.025 // 2.5% Gordon growth
	DefaultTaxRate             = 0.19  // CIT rate applied when no per-record rate exists
	DefaultWCPctOfRevenueDelta = 0.0   // working-capital term present but zero unless set
	DefaultForecastHorizon     = 5
	DefaultTargetCurrency      = "PLN"
)

// Assumptions parameterize the forecaster and the DCF builder.
//
// Pointer fields distinguish "not set, derive from the latest historical
// period" from an explicit override: EBITMargin, DAPctOfRevenue and
// CapexPctOfRevenue fall back to the latest observed ratios, TaxRate falls
// back to the record's tax_rate and then to DefaultTaxRate.
type Assumptions struct {
	WACC                float64     `yaml:"wacc" json:"wacc"`
	TerminalGrowth      float64     `yaml:"terminal_growth" json:"terminal_growth"`
	TaxRate             *float64    `yaml:"tax_rate,omitempty" json:"tax_rate,omitempty"`
	WCPctOfRevenueDelta float64     `yaml:"wc_pct_of_revenue_delta" json:"wc_pct_of_revenue_delta"`
	ForecastHorizon     int         `yaml:"forecast_horizon" json:"forecast_horizon"`
	TargetUnit          models.Unit `yaml:"target_unit" json:"target_unit"`
	TargetCurrency      string      `yaml:"target_currency" json:"target_currency"`

	EBITMargin        *float64 `yaml:"ebit_margin,omitempty" json:"ebit_margin,omitempty"`
	DAPctOfRevenue    *float64 `yaml:"da_pct_of_revenue,omitempty" json:"da_pct_of_revenue,omitempty"`
	CapexPctOfRevenue *float64 `yaml:"capex_pct_of_revenue,omitempty" json:"capex_pct_of_revenue,omitempty"`
}

// DefaultAssumptions returns a fresh Assumptions value with the documented
// defaults. A new value every call: callers may mutate their copy freely.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		WACC:                DefaultWACC,
		TerminalGrowth:      DefaultTerminalGrowth,
		WCPctOfRevenueDelta: DefaultWCPctOfRevenueDelta,
		ForecastHorizon:     DefaultForecastHorizon,
		TargetUnit:          models.UnitThousands,
		TargetCurrency:      DefaultTargetCurrency,
	}
}

// Overrides is the per-request override surface: every field is optional and
// only non-nil fields replace the corresponding assumption.
type Overrides struct {
	WACC                *float64     `json:"wacc,omitempty"`
	TerminalGrowth      *float64     `json:"terminal_growth,omitempty"`
	TaxRate             *float64     `json:"tax_rate,omitempty"`
	WCPctOfRevenueDelta *float64     `json:"wc_pct_of_revenue_delta,omitempty"`
	ForecastHorizon     *int         `json:"forecast_horizon,omitempty"`
	TargetUnit          *models.Unit `json:"target_unit,omitempty"`
	TargetCurrency      *string      `json:"target_currency,omitempty"`
	EBITMargin          *float64     `json:"ebit_margin,omitempty"`
	DAPctOfRevenue      *float64     `json:"da_pct_of_revenue,omitempty"`
	CapexPctOfRevenue   *float64     `json:"capex_pct_of_revenue,omitempty"`
}

// Apply returns a copy of a with the non-nil override fields replaced.
func (a Assumptions) Apply(o Overrides) Assumptions {
	if o.WACC != nil {
		a.WACC = *o.WACC
	}
	if o.TerminalGrowth != nil {
		a.TerminalGrowth = *o.TerminalGrowth
	}
	if o.TaxRate != nil {
		a.TaxRate = o.TaxRate
	}
	if o.WCPctOfRevenueDelta != nil {
		a.WCPctOfRevenueDelta = *o.WCPctOfRevenueDelta
	}
	if o.ForecastHorizon != nil {
		a.ForecastHorizon = *o.ForecastHorizon
	}
	if o.TargetUnit != nil {
		a.TargetUnit = *o.TargetUnit
	}
	if o.TargetCurrency != nil {
		a.TargetCurrency = *o.TargetCurrency
	}
	if o.EBITMargin != nil {
		a.EBITMargin = o.EBITMargin
	}
	if o.DAPctOfRevenue != nil {
		a.DAPctOfRevenue = o.DAPctOfRevenue
	}
	if o.CapexPctOfRevenue != nil {
		a.CapexPctOfRevenue = o.CapexPctOfRevenue
	}
	return a
}

// RateTable maps a currency code to its rate against the base currency.
// Conversion between any two listed currencies goes through the base:
// factor = table[from] / table[to]. The table is injected configuration,
// extensible without code change.
type RateTable map[string]float64

// DefaultRateTable returns the built-in PLN-based table. A fresh map each
// call so one caller's edits never leak into another's.
func DefaultRateTable() RateTable {
	return RateTable{
		"PLN": 1.00,
		"EUR": 4.30,
		"USD": 4.05,
	}
}

// FilterConfig drives the keyword page filter. Keyword sets are
// language-specific and therefore injected, never compiled in as the only
// option.
type FilterConfig struct {
	Keywords         map[string]int `yaml:"keywords" json:"keywords"`
	NegativeKeywords map[string]int `yaml:"negative_keywords" json:"negative_keywords"`
	Threshold        int            `yaml:"threshold" json:"threshold"`
}

// DefaultPolishFilter mirrors the keyword weights tuned for Polish annual
// reports: statement headings score high, table-of-contents pages score
// strongly negative.
func DefaultPolishFilter() FilterConfig {
	return FilterConfig{
		Keywords: map[string]int{
			"skonsolidowane sprawozdanie": 50,
			"rachunek zysków i strat":     100,
			"sytuacji finansowej":         100,
			"przepływy pieniężne":         100,
			"aktywa":                      20,
			"pasywa":                      20,
			"przychody ze sprzedaży":      20,
			"zysk netto":                  20,
		},
		NegativeKeywords: map[string]int{
			"spis treści": -500,
			"strona":      -5,
		},
		Threshold: 50,
	}
}

// Config is the file-loadable bundle for the cmd layer.
type Config struct {
	Assumptions Assumptions  `yaml:"assumptions"`
	Rates       RateTable    `yaml:"rates"`
	Filter      FilterConfig `yaml:"filter"`
}

// Load reads a YAML config file, starting from defaults so a partial file is
// valid. Zero-valued scalar assumptions in the file fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Config{
		Assumptions: DefaultAssumptions(),
		Rates:       DefaultRateTable(),
		Filter:      DefaultPolishFilter(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if file.Assumptions.WACC != 0 {
		cfg.Assumptions.WACC = file.Assumptions.WACC
	}
	if file.Assumptions.TerminalGrowth != 0 {
		cfg.Assumptions.TerminalGrowth = file.Assumptions.TerminalGrowth
	}
	if file.Assumptions.TaxRate != nil {
		cfg.Assumptions.TaxRate = file.Assumptions.TaxRate
	}
	if file.Assumptions.WCPctOfRevenueDelta != 0 {
		cfg.Assumptions.WCPctOfRevenueDelta = file.Assumptions.WCPctOfRevenueDelta
	}
	if file.Assumptions.ForecastHorizon != 0 {
		cfg.Assumptions.ForecastHorizon = file.Assumptions.ForecastHorizon
	}
	if file.Assumptions.TargetUnit != "" {
		cfg.Assumptions.TargetUnit = file.Assumptions.TargetUnit
	}
	if file.Assumptions.TargetCurrency != "" {
		cfg.Assumptions.TargetCurrency = file.Assumptions.TargetCurrency
	}
	if file.Assumptions.EBITMargin != nil {
		cfg.Assumptions.EBITMargin = file.Assumptions.EBITMargin
	}
	if file.Assumptions.DAPctOfRevenue != nil {
		cfg.Assumptions.DAPctOfRevenue = file.Assumptions.DAPctOfRevenue
	}
	if file.Assumptions.CapexPctOfRevenue != nil {
		cfg.Assumptions.CapexPctOfRevenue = file.Assumptions.CapexPctOfRevenue
	}
	if len(file.Rates) > 0 {
		cfg.Rates = file.Rates
	}
	if len(file.Filter.Keywords) > 0 {
		cfg.Filter = file.Filter
	}
	return cfg, nil
}
