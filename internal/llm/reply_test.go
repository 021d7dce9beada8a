package llm

import (
	"errors"
	"strings"
	"testing"
)

type replyShape struct {
	Entidade string `json:"entidade"`
	Alegacao string `json:"alegacao"`
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		raw      string
		expected replyShape
		desc     string
	}{
		{`{"entidade": "BC", "alegacao": "juros"}`, replyShape{"BC", "juros"}, "bare object"},
		{"```json\n{\"entidade\": \"BC\", \"alegacao\": \"juros\"}\n```", replyShape{"BC", "juros"}, "fenced object"},
		{`[{"entidade": "A", "alegacao": "x"}, {"entidade": "B"}]`, replyShape{"A", "x"}, "array yields first element"},
		{`Aqui está: {"entidade": "BC", "alegacao": "juros"} Espero ter ajudado.`, replyShape{"BC", "juros"}, "surrounding prose"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			var got replyShape
			if err := ParseJSON(tt.raw, &got); err != nil {
				t.Fatalf("ParseJSON(%q) failed: %v", tt.raw, err)
			}
			if got != tt.expected {
				t.Errorf("Expected %+v for %s, got %+v", tt.expected, tt.desc, got)
			}
		})
	}
}

func TestParseJSON_Errors(t *testing.T) {
	var out replyShape

	if err := ParseJSON("   ", &out); !errors.Is(err, ErrEmptyReply) {
		t.Errorf("Expected ErrEmptyReply for blank reply, got %v", err)
	}
	if err := ParseJSON("[]", &out); !errors.Is(err, ErrEmptyReply) {
		t.Errorf("Expected ErrEmptyReply for empty array, got %v", err)
	}
	if err := ParseJSON("não consigo responder", &out); err == nil {
		t.Error("Expected error for prose reply")
	}
}

func TestParseOrDefault(t *testing.T) {
	def := replyShape{Entidade: "padrão"}

	got, err := ParseOrDefault("lixo", def)
	if err == nil {
		t.Error("Expected parse error")
	}
	if got != def {
		t.Errorf("Expected default %+v, got %+v", def, got)
	}

	got, err = ParseOrDefault(`{"entidade": "X"}`, def)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Entidade != "X" {
		t.Errorf("Expected X, got %s", got.Entidade)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
		desc     string
	}{
		{`"Banco Central"`, "Banco Central", "quoted"},
		{"```\nLula\n```", "Lula", "fenced"},
		{"\n\n  vacina   causa  autismo \nsegunda linha", "vacina causa autismo", "first line collapsed"},
		{"", "", "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := CleanText(tt.raw); got != tt.expected {
				t.Errorf("Expected %q for %s, got %q", tt.expected, tt.desc, got)
			}
		})
	}
}

func TestLimitWords(t *testing.T) {
	if got := LimitWords("um dois três quatro cinco", 3); got != "um dois três" {
		t.Errorf("Expected three words, got %q", got)
	}
	if got := LimitWords("um dois", 5); got != "um dois" {
		t.Errorf("Expected unchanged, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("ação", 2); got != "aç" {
		t.Errorf("Expected rune-safe truncation, got %q", got)
	}
	long := strings.Repeat("a", 10)
	if got := Truncate(long, 0); got != long {
		t.Errorf("Expected no limit for n=0, got %q", got)
	}
}

func TestStripQuotes(t *testing.T) {
	if got := StripQuotes(`"a" 'b' “c”`); got != "a b c" {
		t.Errorf("Expected quotes removed, got %q", got)
	}
}
