package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Verdict is the wire contract produced by the synthesizer and consumed by the presentation layer.
// Field names follow the JSON schema the language model is asked to emit.
type Verdict struct {
	OverallScore Points          `json:"pontuacaoGeral"`
	Summary      string          `json:"resumoGeral"`
	Detail       Detail          `json:"analiseDetalhada"`
	Sources      VerifiedSources `json:"fontesVerificadas"`

	// Degraded marks a neutral default substituted for an unparsable model reply
	Degraded bool `json:"degradado,omitempty"`
}

// Detail holds the three sub-scores, plus the image-integrity stub for image analyses
type Detail struct {
	Facts     SubScore  `json:"fatos"`
	Title     SubScore  `json:"titulo"`
	Sources   SubScore  `json:"fontes"`
	Integrity *SubScore `json:"integridade,omitempty"`
}

// IsEmpty reports whether the model gave no sub-scores or texts at all
func (d Detail) IsEmpty() bool {
	return d.Facts == (SubScore{}) && d.Title == (SubScore{}) && d.Sources == (SubScore{})
}

// SubScore is one scored dimension of the verdict
type SubScore struct {
	Score Points `json:"score"`
	Text  string `json:"texto"`
}

// VerifiedSources lists cited evidence URLs split by stance
type VerifiedSources struct {
	Confirming []SourceRef `json:"confirmam"`
	Contesting []SourceRef `json:"contestam"`
}

// SourceRef is a cited URL. It decodes from either {"url": "..."} or a bare string;
// anything else decodes to an empty URL, which the sanitizer drops.
type SourceRef struct {
	URL string `json:"url"`
}

// UnmarshalJSON implements tolerant decoding for model-produced citations
func (s *SourceRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	s.URL = ""
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err == nil {
			s.URL = strings.TrimSpace(str)
		}
	case '{':
		var obj struct {
			URL  any `json:"url"`
			Link any `json:"link"`
		}
		if err := json.Unmarshal(data, &obj); err == nil {
			if str, ok := obj.URL.(string); ok {
				s.URL = strings.TrimSpace(str)
			} else if str, ok := obj.Link.(string); ok {
				s.URL = strings.TrimSpace(str)
			}
		}
	}
	return nil
}

// Points is an integer 0-100 score. Models sometimes emit floats, numeric strings or "85%";
// all decode to the nearest integer. Unparsable values decode to 0.
type Points int

// UnmarshalJSON implements tolerant numeric decoding
func (p *Points) UnmarshalJSON(data []byte) error {
	*p = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(str), "%"))
		raw = strings.ReplaceAll(raw, ",", ".")
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*p = Points(math.Round(f))
	return nil
}

// Clamp bounds the score to [0, 100]
func (p Points) Clamp() Points {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// DefaultVerdict is the neutral verdict substituted when the model reply cannot be parsed
func DefaultVerdict(score int) Verdict {
	return Verdict{
		OverallScore: Points(score),
		Summary:      "Não foi possível interpretar a resposta do modelo de IA; um resultado neutro está sendo exibido e deve ser tratado com cautela.",
		Sources: VerifiedSources{
			Confirming: []SourceRef{},
			Contesting: []SourceRef{},
		},
		Degraded: true,
	}
}

// JSON returns the verdict serialized as the persisted result text
func (v Verdict) JSON() string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// SourceURLs returns every cited URL, confirming first
func (v Verdict) SourceURLs() []string {
	urls := make([]string, 0, len(v.Sources.Confirming)+len(v.Sources.Contesting))
	for _, s := range v.Sources.Confirming {
		urls = append(urls, s.URL)
	}
	for _, s := range v.Sources.Contesting {
		urls = append(urls, s.URL)
	}
	return urls
}
