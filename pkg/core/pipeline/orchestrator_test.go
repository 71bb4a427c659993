package pipeline

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financial_analyst/pkg/core/config"
	"financial_analyst/pkg/core/validate"
	"financial_analyst/pkg/models"
)

func testOrchestrator() *Orchestrator {
	a := config.DefaultAssumptions()
	a.ForecastHorizon = 3
	return New(a, config.DefaultRateTable(), validate.DefaultOptions(), zerolog.Nop())
}

func testPeriods() []models.FinancialPeriod {
	mk := func(label string, revenue, ebit float64) models.FinancialPeriod {
		return models.FinancialPeriod{
			PeriodLabel:        label,
			Currency:           "PLN",
			ReportingUnit:      models.UnitThousands,
			Revenue:            models.Float(revenue),
			EBIT:               models.Float(ebit),
			NetIncome:          models.Float(ebit * 0.8),
			TotalAssets:        models.Float(2 * revenue),
			TotalLiabilities:   models.Float(revenue),
			Equity:             models.Float(revenue),
			TotalDebt:          models.Float(revenue / 2),
			CashAndEquivalents: models.Float(revenue / 10),
			SharesOutstanding:  models.Float(1_000_000),
		}
	}
	return []models.FinancialPeriod{
		mk("2021", 1000, 150),
		mk("2022", 1100, 170),
		mk("2023", 1200, 190),
	}
}

func TestRunFullPipeline(t *testing.T) {
	o := testOrchestrator()

	res, err := o.Run(testPeriods())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Len(t, res.Normalized, 3)
	assert.Len(t, res.KPIs, 3)
	require.NotNil(t, res.Forecast)
	assert.Len(t, res.Forecast.Points, 3)
	require.NotNil(t, res.Valuation)
	assert.Positive(t, res.Valuation.ImpliedSharePrice)
	assert.NotEmpty(t, res.Valuation.Cells)
}

func TestRunBlocksOnValidationFailure(t *testing.T) {
	o := testOrchestrator()
	periods := testPeriods()
	periods[1].Revenue = nil

	res, err := o.Run(periods)
	assert.Nil(t, res)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "revenue", verr.Field)
	assert.Equal(t, "2022", verr.PeriodLabel)
}

func TestRunReturnsPartialResultWhenForecastFails(t *testing.T) {
	a := config.DefaultAssumptions()
	o := New(a, config.DefaultRateTable(), validate.Options{BalanceTolerance: validate.DefaultBalanceTolerance}, zerolog.Nop())

	res, err := o.Run(testPeriods()[:1])
	require.Error(t, err)
	require.NotNil(t, res, "historical analysis must survive a forecast failure")
	assert.Len(t, res.KPIs, 1)
	assert.Nil(t, res.Forecast)
	assert.Nil(t, res.Valuation)
}

func TestRunReport(t *testing.T) {
	o := testOrchestrator()
	res, err := o.RunReport(models.CompanyReport{CompanyName: "Testowa SA", Periods: testPeriods()})
	require.NoError(t, err)
	assert.Equal(t, "Testowa SA", res.CompanyName)
}

func TestIndependentRunsDoNotInterfere(t *testing.T) {
	a := config.DefaultAssumptions()
	b := config.DefaultAssumptions()
	b.WACC = 0.15

	oa := New(a, config.DefaultRateTable(), validate.DefaultOptions(), zerolog.Nop())
	ob := New(b, config.DefaultRateTable(), validate.DefaultOptions(), zerolog.Nop())

	ra, err := oa.Run(testPeriods())
	require.NoError(t, err)
	rb, err := ob.Run(testPeriods())
	require.NoError(t, err)

	assert.Greater(t, ra.Valuation.ImpliedSharePrice, rb.Valuation.ImpliedSharePrice,
		"a higher discount rate must lower the valuation")
}
