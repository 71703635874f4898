package core

import (
	"encoding/json"
	"testing"
	"time"
)

func payloadFrom(t *testing.T, raw string) Payload {
	t.Helper()
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("bad test payload: %v", err)
	}
	return p
}

func TestPayload_FirstString(t *testing.T) {
	p := payloadFrom(t, `{"categoria": "", "categoria_nome": "Alimentação"}`)

	if got := p.FirstString("categoria", "categoria_nome"); got != "Alimentação" {
		t.Fatalf("FirstString = %q, want fallback to categoria_nome", got)
	}
	if got := p.FirstString("descricao"); got != "" {
		t.Fatalf("FirstString on missing key = %q, want empty", got)
	}
}

func TestPayload_FirstID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		keys []string
		want string
	}{
		{name: "numeric id", raw: `{"id": 99}`, keys: []string{"id"}, want: "99"},
		{name: "string id", raw: `{"id": "42"}`, keys: []string{"id"}, want: "42"},
		{name: "large id keeps precision", raw: `{"id": 9007199254740993}`, keys: []string{"id"}, want: "9007199254740993"},
		{name: "fallback key", raw: `{"usuario_id": 7}`, keys: []string{"id", "usuario_id"}, want: "7"},
		{name: "absent", raw: `{}`, keys: []string{"id"}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := payloadFrom(t, tt.raw)
			if got := p.FirstID(tt.keys...); got != tt.want {
				t.Fatalf("FirstID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPayload_FirstNumber(t *testing.T) {
	p := payloadFrom(t, `{"valor": "45.50", "saldo": 10}`)

	if got, ok := p.FirstNumber("valor"); !ok || got != 45.50 {
		t.Fatalf("FirstNumber(valor) = %v, %v; want 45.50, true", got, ok)
	}
	if got, ok := p.FirstNumber("saldo"); !ok || got != 10 {
		t.Fatalf("FirstNumber(saldo) = %v, %v; want 10, true", got, ok)
	}
	if _, ok := p.FirstNumber("inexistente"); ok {
		t.Fatal("FirstNumber on missing key should report false")
	}
}

func TestPayload_FirstTime(t *testing.T) {
	p := payloadFrom(t, `{"data": "2024-03-01T12:00:00Z", "prazo": "2026-12-01", "naive": "2024-03-01T12:00:00"}`)

	got, ok := p.FirstTime("data")
	if !ok || !got.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("FirstTime(data) = %v, %v", got, ok)
	}
	if _, ok := p.FirstTime("prazo"); !ok {
		t.Fatal("FirstTime should accept plain dates")
	}
	if _, ok := p.FirstTime("naive"); !ok {
		t.Fatal("FirstTime should accept naive datetimes")
	}
}

func TestTransactionTypeWireMapping(t *testing.T) {
	tests := []struct {
		wire string
		want TransactionType
	}{
		{wire: "receita", want: Income},
		{wire: "despesa", want: Expense},
		{wire: "investimento", want: Investment},
		{wire: "whatever", want: Investment},
	}
	for _, tt := range tests {
		if got := TransactionTypeFromWire(tt.wire); got != tt.want {
			t.Errorf("TransactionTypeFromWire(%q) = %q, want %q", tt.wire, got, tt.want)
		}
	}

	for _, typ := range []TransactionType{Income, Expense, Investment} {
		if got := TransactionTypeFromWire(TransactionTypeToWire(typ)); got != typ {
			t.Errorf("wire round-trip of %q yielded %q", typ, got)
		}
	}
}
