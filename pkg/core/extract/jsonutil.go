package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// stripFences removes a wrapping markdown code fence, with or without a
// language tag. Models add these around JSON output no matter how the prompt
// forbids them.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// repairJSON fixes common model output defects: single quotes, unquoted
// keys, trailing commas, unclosed brackets.
func repairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// parseHJSON accepts human-friendly JSON (comments, unquoted strings,
// optional commas) and returns standard JSON.
func parseHJSON(input string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(input), &result); err != nil {
		return "", fmt.Errorf("hjson parse: %w", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("hjson remarshal: %w", err)
	}
	return string(out), nil
}

// SmartParse unmarshals model output into schema, trying progressively more
// lenient strategies: strict JSON, then repair, then Hjson.
func SmartParse(input string, schema interface{}) error {
	input = stripFences(input)

	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}
	if repaired, err := repairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}
	if converted, err := parseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(converted), schema); err == nil {
			return nil
		}
	}
	return fmt.Errorf("all parsing strategies failed")
}
