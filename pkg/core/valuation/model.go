package valuation

import (
	"financial_analyst/pkg/core/config"
	"financial_analyst/pkg/models"
)

// Cell is one named node in the valuation dependency graph. Formula is a
// human-readable expression over other cell names (empty for input cells);
// Inputs lists the referenced names. A renderer can therefore emit every
// derived figure as a live formula over the assumption cells instead of a
// frozen literal, and a consumer re-evaluates the model by rebuilding it
// with changed assumptions.
type Cell struct {
	Name    string   `json:"name"`
	Value   float64  `json:"value"`
	Formula string   `json:"formula,omitempty"`
	Inputs  []string `json:"inputs,omitempty"`
}

// CashFlowLine is the per-forecast-period free cash flow decomposition.
type CashFlowLine struct {
	PeriodLabel         string  `json:"period_label"`
	Revenue             float64 `json:"revenue"`
	EBIT                float64 `json:"ebit"`
	NOPAT               float64 `json:"nopat"`
	DA                  float64 `json:"depreciation_amortization"`
	Capex               float64 `json:"capex"`
	WorkingCapitalDelta float64 `json:"working_capital_delta"`
	FCF                 float64 `json:"fcf"`
	DiscountFactor      float64 `json:"discount_factor"`
	PresentValue        float64 `json:"present_value"`
}

// ValuationModel is the assembled DCF. Plain data, no behavior beyond cell
// lookup; it is regenerated whenever inputs or assumptions change and is
// never authoritative state.
type ValuationModel struct {
	Assumptions   config.Assumptions `json:"assumptions"`
	Currency      string             `json:"currency"`
	ReportingUnit models.Unit        `json:"reporting_unit"`

	Projection []CashFlowLine `json:"cash_flow_projection"`

	TerminalValue     float64 `json:"terminal_value"`
	PVTerminal        float64 `json:"pv_terminal"`
	EnterpriseValue   float64 `json:"enterprise_value"`
	NetDebt           float64 `json:"net_debt"`
	EquityValue       float64 `json:"equity_value"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	ImpliedSharePrice float64 `json:"implied_share_price"`

	// Cells holds every input and intermediate in dependency order.
	Cells []Cell `json:"cells"`
}

// Cell returns the named node, if present.
func (m *ValuationModel) Cell(name string) (Cell, bool) {
	for _, c := range m.Cells {
		if c.Name == name {
			return c, true
		}
	}
	return Cell{}, false
}

func (m *ValuationModel) addInput(name string, value float64) {
	m.Cells = append(m.Cells, Cell{Name: name, Value: value})
}

func (m *ValuationModel) addDerived(name string, value float64, formula string, inputs ...string) {
	m.Cells = append(m.Cells, Cell{Name: name, Value: value, Formula: formula, Inputs: inputs})
}
