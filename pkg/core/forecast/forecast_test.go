package forecast

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"financial_analyst/pkg/models"
)

func TestLinearTrendProjection(t *testing.T) {
	series := []Point{
		{Label: "2022", Revenue: 1000},
		{Label: "2023", Revenue: 1100},
	}

	fc, err := Forecast(series, 3)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	if fc.IndexRule != models.IndexRuleYear {
		t.Errorf("numeric labels should use the year rule, got %s", fc.IndexRule)
	}

	want := []float64{1200, 1300, 1400}
	labels := []string{"2024", "2025", "2026"}
	if len(fc.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(fc.Points))
	}
	for i, p := range fc.Points {
		if math.Abs(p.Revenue-want[i]) > 1e-6 {
			t.Errorf("point %d: expected %f, got %f", i, want[i], p.Revenue)
		}
		if p.PeriodLabel != labels[i] {
			t.Errorf("point %d: expected label %s, got %s", i, labels[i], p.PeriodLabel)
		}
		if p.Negative {
			t.Errorf("point %d flagged negative", i)
		}
	}

	if math.Abs(fc.Slope-100) > 1e-6 {
		t.Errorf("expected slope 100, got %f", fc.Slope)
	}
	if math.Abs(fc.R2-1.0) > 1e-9 {
		t.Errorf("two points fit exactly, expected r2 1, got %f", fc.R2)
	}
}

func TestInsufficientData(t *testing.T) {
	_, err := Forecast([]Point{{Label: "2023", Revenue: 1000}}, 5)
	var ierr *InsufficientDataError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if ierr.Points != 1 {
		t.Errorf("expected 1 point reported, got %d", ierr.Points)
	}

	if _, err := Forecast(nil, 5); !errors.As(err, &ierr) {
		t.Errorf("expected InsufficientDataError for empty series, got %v", err)
	}
}

func TestPositionalFallbackForNonNumericLabels(t *testing.T) {
	series := []Point{
		{Label: "FY2022", Revenue: 1000},
		{Label: "FY2023", Revenue: 1100},
	}

	fc, err := Forecast(series, 2)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	if fc.IndexRule != models.IndexRulePosition {
		t.Errorf("non-numeric labels must fall back to positions, got %s", fc.IndexRule)
	}
	if fc.Points[0].PeriodLabel != "F1" || fc.Points[1].PeriodLabel != "F2" {
		t.Errorf("expected F1/F2 labels, got %s/%s", fc.Points[0].PeriodLabel, fc.Points[1].PeriodLabel)
	}
	// Position spacing is 1 like the year spacing here, so the values match.
	if math.Abs(fc.Points[0].Revenue-1200) > 1e-6 {
		t.Errorf("expected 1200, got %f", fc.Points[0].Revenue)
	}
}

func TestNegativeProjectionsFlaggedNotClamped(t *testing.T) {
	series := []Point{
		{Label: "2021", Revenue: 300},
		{Label: "2022", Revenue: 150},
		{Label: "2023", Revenue: 50},
	}

	fc, err := Forecast(series, 3)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}

	sawNegative := false
	for _, p := range fc.Points {
		if p.Revenue < 0 {
			sawNegative = true
			if !p.Negative {
				t.Errorf("negative projection %f not flagged", p.Revenue)
			}
		}
	}
	if !sawNegative {
		t.Fatal("declining trend should cross zero within the horizon")
	}
}

func TestDefaultHorizon(t *testing.T) {
	series := []Point{
		{Label: "2022", Revenue: 1000},
		{Label: "2023", Revenue: 1100},
	}
	fc, err := Forecast(series, 0)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	if len(fc.Points) != DefaultHorizon {
		t.Errorf("expected %d points for non-positive horizon, got %d", DefaultHorizon, len(fc.Points))
	}
}

func TestDeterminism(t *testing.T) {
	series := []Point{
		{Label: "2021", Revenue: 980},
		{Label: "2022", Revenue: 1033},
		{Label: "2023", Revenue: 1127},
	}
	a, err := Forecast(series, 5)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Forecast(series, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical input must produce identical output")
	}
}

func TestCAGRDiagnostic(t *testing.T) {
	series := []Point{
		{Label: "2021", Revenue: 1000},
		{Label: "2023", Revenue: 1210},
	}
	fc, err := Forecast(series, 1)
	if err != nil {
		t.Fatal(err)
	}
	// (1210/1000)^(1/2) - 1 = 10% over the two-year span.
	if math.Abs(fc.CAGR-0.10) > 1e-9 {
		t.Errorf("expected cagr 0.10, got %f", fc.CAGR)
	}
}

func TestCAGRZeroForNonPositiveEndpoints(t *testing.T) {
	cases := [][]Point{
		{{Label: "2021", Revenue: 1000}, {Label: "2022", Revenue: 500}, {Label: "2023", Revenue: -100}},
		{{Label: "2021", Revenue: -100}, {Label: "2023", Revenue: 1000}},
		{{Label: "2021", Revenue: 1000}, {Label: "2023", Revenue: 0}},
	}
	for i, series := range cases {
		fc, err := Forecast(series, 2)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if fc.CAGR != 0 {
			t.Errorf("case %d: expected cagr 0, got %f", i, fc.CAGR)
		}
		if math.IsNaN(fc.CAGR) {
			t.Errorf("case %d: cagr is NaN", i)
		}
	}
}
