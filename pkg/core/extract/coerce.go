package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexNumber unmarshals a figure that a model may emit as a JSON number or
// as a locale-formatted string ("1 234,56", "1.234.567", "(500)"). The
// string path goes through decimal so fifteen-digit statement figures
// survive the detour without float rounding in the middle.
type FlexNumber struct {
	value decimal.Decimal
	set   bool
}

// Float64 returns the value, or false when the field was absent or null.
func (n FlexNumber) Float64() (float64, bool) {
	if !n.set {
		return 0, false
	}
	f, _ := n.value.Float64()
	return f, true
}

// Ptr returns the value as the engine's optional-float representation.
func (n FlexNumber) Ptr() *float64 {
	f, ok := n.Float64()
	if !ok {
		return nil
	}
	return &f
}

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		d, err := parseLocaleNumber(str)
		if err != nil {
			return err
		}
		n.value = d
		n.set = true
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("number %q: %w", s, err)
	}
	n.value = d
	n.set = true
	return nil
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	return []byte(n.value.String()), nil
}

// parseLocaleNumber normalizes statement formatting before handing the
// string to decimal:
//
//	"1 234,56"  -> 1234.56   (Polish: space groups, comma decimal)
//	"1,234.56"  -> 1234.56   (English: comma groups, dot decimal)
//	"1.234.567" -> 1234567   (dot groups, no decimal part)
//	"(500)"     -> -500      (accounting negative)
//
// When both separators appear, the one occurring last is the decimal point.
// A lone comma is the decimal point unless it reads as grouping (repeated,
// or followed by exactly three digits).
func parseLocaleNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Decimal{}, fmt.Errorf("empty numeric string")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	// Regular and non-breaking spaces are always grouping.
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-comma-1 == 3 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("numeric string %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
