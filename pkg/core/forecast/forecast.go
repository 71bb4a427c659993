// Package forecast projects future revenue from the historical series with
// an ordinary least squares fit. Deterministic: identical input and horizon
// always produce identical output.
package forecast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"financial_analyst/pkg/models"

	"gonum.org/v1/gonum/stat"
)

// DefaultHorizon is used when the caller passes a non-positive horizon.
const DefaultHorizon = 5

// Point is one historical observation handed to the fit.
type Point struct {
	Label   string
	Revenue float64
}

// InsufficientDataError is returned when fewer than two historical points
// are available; a line cannot be fit through less.
type InsufficientDataError struct {
	Points int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("forecast needs at least 2 historical points, got %d", e.Points)
}

// Forecast fits revenue against a numeric period index and extrapolates
// horizon future points.
//
// Index derivation rule: when every label parses as an integer (a fiscal
// year), the parsed years are the x values and future labels continue the
// year sequence. Otherwise x is the enumeration position 0..n-1 and future
// labels are "F1".."Fh". Parsing never fails on ordered-but-non-numeric
// labels; the positional fallback always applies.
//
// Negative projections are reported unclamped with the Negative flag set:
// they signal an unreliable trend and clamping would hide that.
func Forecast(series []Point, horizon int) (*models.ForecastSeries, error) {
	if len(series) < 2 {
		return nil, &InsufficientDataError{Points: len(series)}
	}
	if horizon < 1 {
		horizon = DefaultHorizon
	}

	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	rule := models.IndexRuleYear

	years, ok := parseYears(series)
	if ok {
		copy(xs, years)
	} else {
		rule = models.IndexRulePosition
		for i := range series {
			xs[i] = float64(i)
		}
	}
	for i, p := range series {
		ys[i] = p.Revenue
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, alpha, beta)

	out := &models.ForecastSeries{
		Horizon:   horizon,
		IndexRule: rule,
		Slope:     beta,
		Intercept: alpha,
		R2:        r2,
		CAGR:      cagr(series, xs),
	}

	lastX := xs[len(xs)-1]
	for i := 1; i <= horizon; i++ {
		x := lastX + float64(i)
		projected := alpha + beta*x

		label := fmt.Sprintf("F%d", i)
		if rule == models.IndexRuleYear {
			label = strconv.Itoa(int(x))
		}

		out.Points = append(out.Points, models.ForecastPoint{
			PeriodLabel: label,
			Revenue:     projected,
			Negative:    projected < 0,
		})
	}
	return out, nil
}

// parseYears returns the labels as numeric years when every one of them is
// an integer, in which case the year axis is used for the fit.
func parseYears(series []Point) ([]float64, bool) {
	years := make([]float64, len(series))
	for i, p := range series {
		y, err := strconv.Atoi(strings.TrimSpace(p.Label))
		if err != nil {
			return nil, false
		}
		years[i] = float64(y)
	}
	return years, true
}

// cagr is a fit diagnostic: compound annual growth between the first and
// last observation. Zero when the span or either endpoint makes it
// meaningless (a non-positive endpoint has no real growth root).
func cagr(series []Point, xs []float64) float64 {
	span := xs[len(xs)-1] - xs[0]
	start := series[0].Revenue
	end := series[len(series)-1].Revenue
	if span <= 0 || start <= 0 || end <= 0 {
		return 0
	}
	return math.Pow(end/start, 1/span) - 1
}
