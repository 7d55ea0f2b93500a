// Package utils holds small shared helpers. The JSON codec here accepts the
// near-JSON payloads that reach the transport boundary from spreadsheet
// ingestion and AI-assistant producers: trailing commas, single quotes,
// unquoted keys, comments. Strict JSON always wins; repair and HJSON are
// fallbacks only.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes common structural defects (missing quotes, trailing
// commas, unclosed brackets, markdown fences) and returns valid JSON.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses human-friendly JSON (comments, unquoted keys, optional
// commas) and returns standard JSON.
func ParseHJSON(input string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(input), &result); err != nil {
		return "", fmt.Errorf("hjson parse error: %v", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("json marshal error: %v", err)
	}
	return string(out), nil
}

// ParseHJSONToStruct parses HJSON directly into a known schema. This is the
// path the CLI scenario runner uses for hand-written scenario files.
func ParseHJSONToStruct(input string, schema interface{}) error {
	if err := hjson.Unmarshal([]byte(input), schema); err != nil {
		return fmt.Errorf("hjson unmarshal error: %v", err)
	}
	return nil
}

// SmartParse tries strict JSON, then repaired JSON, then HJSON, unmarshaling
// into schema on the first strategy that works. It returns the normalized
// JSON text actually used.
func SmartParse(input string, schema interface{}) (string, error) {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return input, nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	if normalized, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(normalized), schema); err == nil {
			return normalized, nil
		}
	}

	return "", fmt.Errorf("payload is not JSON, repairable JSON, or HJSON")
}
