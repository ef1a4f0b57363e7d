package optimize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Output is the parsed model reply. Fields the model omitted or garbled are
// left empty rather than failing the request.
type Output struct {
	OptimizedLatex string `json:"optimized_latex"`
	Suggestions    string `json:"suggestions"`
	ATSScore       *int   `json:"ats_score"`
}

type rawOutput struct {
	OptimizedLatex json.RawMessage `json:"optimized_latex"`
	Suggestions    json.RawMessage `json:"suggestions"`
	ATSScore       json.RawMessage `json:"ats_score"`
}

// ParseOutput decodes a model reply. Markdown code fences are tolerated.
func ParseOutput(raw string) Output {
	raw = stripFences(raw)
	if raw == "" {
		return Output{}
	}
	var parsed rawOutput
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Output{}
	}
	return Output{
		OptimizedLatex: decodeString(parsed.OptimizedLatex),
		Suggestions:    decodeSuggestions(parsed.Suggestions),
		ATSScore:       decodeScore(parsed.ATSScore),
	}
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```")
	if nl := strings.IndexByte(raw, '\n'); nl >= 0 {
		raw = raw[nl+1:]
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}

func decodeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func decodeSuggestions(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		return ""
	}
	lines := make([]string, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case string:
			lines = append(lines, v)
		case nil:
		default:
			lines = append(lines, fmt.Sprint(v))
		}
	}
	return strings.Join(lines, "\n")
}

func decodeScore(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	score := int(math.Round(math.Max(0, math.Min(100, f))))
	return &score
}
