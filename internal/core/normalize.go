package core

import (
	"encoding/json"
	"strconv"
	"time"
)

// The backend is not fully consistent about field names: transactions may
// carry their category under "categoria" or "categoria_nome" depending on
// the endpoint, numeric ids arrive as JSON numbers or strings, and dates
// come in several layouts. Payload isolates that ambiguity behind a
// prioritized-field lookup so the rest of the code never sees it.
type Payload map[string]json.RawMessage

// FirstString returns the first key that decodes to a non-empty string.
func (p Payload) FirstString(keys ...string) string {
	for _, k := range keys {
		raw, ok := p[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// FirstNumber returns the first key that decodes to a number, accepting
// both JSON numbers and numeric strings.
func (p Payload) FirstNumber(keys ...string) (float64, bool) {
	for _, k := range keys {
		raw, ok := p[k]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return f, true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// FirstID returns the first key holding an identifier, normalized to its
// string form. Numeric ids lose no precision: they are re-rendered from
// the raw token, not through float64.
func (p Payload) FirstID(keys ...string) string {
	for _, k := range keys {
		raw, ok := p[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil && n.String() != "" {
			return n.String()
		}
	}
	return ""
}

// FirstTime returns the first key that parses as a timestamp. RFC 3339 is
// tried first, then the backend's naive datetime and plain date layouts.
func (p Payload) FirstTime(keys ...string) (time.Time, bool) {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
	for _, k := range keys {
		raw, ok := p[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			continue
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// FirstBool returns the first key that decodes to a bool.
func (p Payload) FirstBool(keys ...string) bool {
	for _, k := range keys {
		raw, ok := p[k]
		if !ok {
			continue
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return b
		}
	}
	return false
}

// TransactionTypeFromWire maps the backend's transaction kinds onto the
// domain enum. Unknown values default to investment, matching how the
// original frontend classified anything that was neither income nor
// expense.
func TransactionTypeFromWire(tipo string) TransactionType {
	switch tipo {
	case "receita":
		return Income
	case "despesa":
		return Expense
	default:
		return Investment
	}
}

// TransactionTypeToWire maps the domain enum onto the backend's values.
func TransactionTypeToWire(t TransactionType) string {
	switch t {
	case Income:
		return "receita"
	case Expense:
		return "despesa"
	default:
		return "investimento"
	}
}
