package domain

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Decision validated trading decision.
// Percentage is the share of the relevant balance to act on: quote currency
// for buy, base asset for sell. It is meaningless for hold but still carried.
type Decision struct {
	Action     Action `json:"action"`
	Percentage int    `json:"percentage"`
	Rationale  string `json:"rationale"`
}

// decisionPayload mirrors the raw model reply. Pointer fields distinguish a
// missing key from a zero value so that an absent percentage is a parse
// failure, never an implicit default.
type decisionPayload struct {
	Action     *string      `json:"action"`
	Percentage *json.Number `json:"percentage"`
	Rationale  string       `json:"rationale"`
}

// ParseDecision extracts and validates a trading decision from a raw model
// reply. Anything that is not a well-formed decision object with a known
// action and an integral percentage in [0,100] is an error.
func ParseDecision(raw string) (*Decision, error) {
	payload, ok := extractJSONObject(sanitizeReply(raw))
	if !ok {
		return nil, errors.New("reply contains no JSON object")
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var parsed decisionPayload
	if err := dec.Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "decode decision object")
	}

	if parsed.Action == nil {
		return nil, errors.New("action field is required")
	}
	action, err := ParseAction(*parsed.Action)
	if err != nil {
		return nil, err
	}

	if parsed.Percentage == nil {
		return nil, errors.New("percentage field is required")
	}
	percentage, err := strconv.Atoi(parsed.Percentage.String())
	if err != nil {
		return nil, errors.Errorf("percentage must be an integer, got %s", parsed.Percentage.String())
	}
	if percentage < 0 || percentage > 100 {
		return nil, errors.Errorf("percentage out of range: %d", percentage)
	}

	return &Decision{
		Action:     action,
		Percentage: percentage,
		Rationale:  parsed.Rationale,
	}, nil
}

func sanitizeReply(raw string) string {
	reply := strings.TrimSpace(raw)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	return strings.TrimSpace(reply)
}

// extractJSONObject returns the first balanced top-level {...} block,
// tolerating prose around it.
func extractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escape := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}
