package model

import (
	"encoding/json"
	"testing"
)

func TestPoints_TolerantDecoding(t *testing.T) {
	tests := []struct {
		input    string
		expected Points
		desc     string
	}{
		{input: `85`, expected: 85, desc: "integer"},
		{input: `72.6`, expected: 73, desc: "float rounds to nearest"},
		{input: `"64"`, expected: 64, desc: "numeric string"},
		{input: `"90%"`, expected: 90, desc: "percent string"},
		{input: `"45,5"`, expected: 46, desc: "comma decimal"},
		{input: `"alto"`, expected: 0, desc: "non-numeric string"},
		{input: `null`, expected: 0, desc: "null"},
		{input: `true`, expected: 0, desc: "boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			var p Points
			if err := json.Unmarshal([]byte(tt.input), &p); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p != tt.expected {
				t.Errorf("Expected %d for %s, got %d", tt.expected, tt.input, p)
			}
		})
	}
}

func TestSourceRef_TolerantDecoding(t *testing.T) {
	raw := `{"confirmam": [{"url": "https://a.com/1"}, "https://b.com/2", 42, {"link": "https://c.com/3"}, {"url": 7}], "contestam": null}`

	var vs VerifiedSources
	if err := json.Unmarshal([]byte(raw), &vs); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []string{"https://a.com/1", "https://b.com/2", "", "https://c.com/3", ""}
	if len(vs.Confirming) != len(expected) {
		t.Fatalf("Expected %d entries, got %d", len(expected), len(vs.Confirming))
	}
	for i, want := range expected {
		if vs.Confirming[i].URL != want {
			t.Errorf("Entry %d: expected %q, got %q", i, want, vs.Confirming[i].URL)
		}
	}
	if vs.Contesting != nil {
		t.Errorf("Expected nil contesting list, got %v", vs.Contesting)
	}
}

func TestVerdict_WireSchema(t *testing.T) {
	raw := `{
		"pontuacaoGeral": "88",
		"resumoGeral": "Confirmado por agências.",
		"analiseDetalhada": {
			"fatos": {"score": 90, "texto": "ok"},
			"titulo": {"score": 80.4, "texto": "neutro"},
			"fontes": {"score": "85", "texto": "fontes confiáveis"}
		},
		"fontesVerificadas": {"confirmam": [{"url": "https://reuters.com/x"}], "contestam": []}
	}`

	var v Verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if v.OverallScore != 88 {
		t.Errorf("Expected overall 88, got %d", v.OverallScore)
	}
	if v.Detail.Title.Score != 80 {
		t.Errorf("Expected title 80, got %d", v.Detail.Title.Score)
	}
	if v.Detail.Sources.Score != 85 {
		t.Errorf("Expected sources 85, got %d", v.Detail.Sources.Score)
	}
	if len(v.Sources.Confirming) != 1 || v.Sources.Confirming[0].URL != "https://reuters.com/x" {
		t.Errorf("Unexpected confirming list: %+v", v.Sources.Confirming)
	}
	if v.Detail.IsEmpty() {
		t.Error("Expected detail to be non-empty")
	}

	// Round trip keeps the Portuguese field names
	var generic map[string]interface{}
	if err := json.Unmarshal([]byte(v.JSON()), &generic); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, key := range []string{"pontuacaoGeral", "resumoGeral", "analiseDetalhada", "fontesVerificadas"} {
		if _, ok := generic[key]; !ok {
			t.Errorf("Expected key %s in serialized verdict", key)
		}
	}
	if _, ok := generic["degradado"]; ok {
		t.Error("Expected degradado to be omitted for a parsed verdict")
	}
}

func TestDefaultVerdict(t *testing.T) {
	v := DefaultVerdict(70)

	if v.OverallScore != 70 {
		t.Errorf("Expected score 70, got %d", v.OverallScore)
	}
	if !v.Degraded {
		t.Error("Expected default verdict to be flagged as degraded")
	}
	if v.Summary == "" {
		t.Error("Expected summary to explain the degraded result")
	}
	if !v.Detail.IsEmpty() {
		t.Error("Expected empty detail")
	}
	if v.Sources.Confirming == nil || v.Sources.Contesting == nil {
		t.Error("Expected non-nil source lists")
	}
}

func TestPoints_Clamp(t *testing.T) {
	tests := []struct {
		in, want Points
	}{
		{-5, 0}, {0, 0}, {55, 55}, {100, 100}, {140, 100},
	}
	for _, tt := range tests {
		if got := tt.in.Clamp(); got != tt.want {
			t.Errorf("Clamp(%d): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}
