package score

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/ppiankov/truthcheck/internal/model"
)

func newTestRecalibrator() *Recalibrator {
	cfg := model.DefaultConfig()
	return NewRecalibrator(cfg.Recalibration, cfg.Analysis.Weights, nil)
}

func verdict(overall, facts, sources, title int) model.Verdict {
	return model.Verdict{
		OverallScore: model.Points(overall),
		Detail: model.Detail{
			Facts:   model.SubScore{Score: model.Points(facts), Text: "f"},
			Sources: model.SubScore{Score: model.Points(sources), Text: "s"},
			Title:   model.SubScore{Score: model.Points(title), Text: "t"},
		},
	}
}

func items(n int, trusted bool, host string) []model.EvidenceItem {
	out := make([]model.EvidenceItem, n)
	for i := range out {
		out[i] = model.EvidenceItem{
			Title:     fmt.Sprintf("item %d", i),
			Link:      fmt.Sprintf("https://%s/%d", host, i),
			IsTrusted: trusted,
		}
	}
	return out
}

func hasSignal(signals []model.Signal, typ model.SignalType) bool {
	for _, s := range signals {
		if s.Type == typ {
			return true
		}
	}
	return false
}

func TestRecalibrate_BaseIgnoresReportedScore(t *testing.T) {
	r := newTestRecalibrator()
	evidence := model.EvidenceSet{Affirmative: items(1, false, "example.com")}

	got, signals := r.Recalibrate(verdict(99, 50, 50, 50), evidence, "")

	if got.OverallScore != 50 {
		t.Errorf("Expected weighted base 50, got %d", got.OverallScore)
	}
	if len(signals) == 0 || signals[0].Type != model.SignalBaseScore {
		t.Errorf("Expected base signal first, got %+v", signals)
	}
	if got.Summary != "" || got.Detail.Facts.Score != 50 {
		t.Error("Expected fields other than the overall score to be untouched")
	}
}

func TestRecalibrate_Rules(t *testing.T) {
	tests := []struct {
		verdict  model.Verdict
		evidence model.EvidenceSet
		text     string
		expected int
		signal   model.SignalType
		desc     string
	}{
		{
			verdict:  verdict(40, 40, 40, 40),
			evidence: model.EvidenceSet{Affirmative: items(3, true, "reuters.com")},
			expected: 90,
			signal:   model.SignalTrustedFloor,
			desc:     "three trusted confirmations floor at 90",
		},
		{
			verdict:  verdict(40, 40, 40, 40),
			evidence: model.EvidenceSet{Affirmative: items(2, true, "reuters.com")},
			expected: 85,
			signal:   model.SignalTrustedFloor,
			desc:     "two trusted confirmations floor at 85",
		},
		{
			verdict:  verdict(70, 70, 70, 70),
			evidence: model.EvidenceSet{Skeptical: items(1, true, "aosfatos.org")},
			expected: 60,
			signal:   model.SignalSkepticalPenalty,
			desc:     "one trusted contestation costs 10",
		},
		{
			verdict:  verdict(70, 70, 70, 70),
			evidence: model.EvidenceSet{Skeptical: items(5, true, "aosfatos.org")},
			expected: 50,
			signal:   model.SignalSkepticalPenalty,
			desc:     "penalty capped at 20",
		},
		{
			verdict:  verdict(80, 80, 80, 80),
			evidence: model.EvidenceSet{Affirmative: items(1, false, "example.com")},
			text:     "Estudo mostra que chá cura o câncer",
			expected: 35,
			signal:   model.SignalMedicalCap,
			desc:     "medical claim without academic source",
		},
		{
			verdict:  verdict(80, 80, 80, 80),
			evidence: model.EvidenceSet{Affirmative: items(1, true, "nih.gov")},
			text:     "Pesquisa sobre vacina, ainda não foi publicada em revista",
			expected: 30,
			signal:   model.SignalNoPeerReview,
			desc:     "medical claim admitting no peer review",
		},
		{
			verdict:  verdict(80, 80, 80, 80),
			evidence: model.EvidenceSet{Affirmative: items(1, true, "nih.gov")},
			text:     "Estudo sobre vacina publicado na revista",
			expected: 80,
			desc:     "medical claim with academic backing is not capped",
		},
		{
			verdict:  verdict(80, 80, 80, 80),
			evidence: model.EvidenceSet{},
			expected: 25,
			signal:   model.SignalNoEvidence,
			desc:     "zero evidence cap",
		},
		{
			verdict:  verdict(80, 80, 80, 80),
			evidence: model.EvidenceSet{Affirmative: items(3, true, "reuters.com")},
			text:     "Remédio milagroso emagrece 10 kg",
			expected: 90,
			signal:   model.SignalMedicalCap,
			desc:     "strong floor survives the medical cap",
		},
		{
			verdict:  verdict(100, 150, 150, 150),
			evidence: model.EvidenceSet{Affirmative: items(1, false, "example.com")},
			expected: 100,
			signal:   model.SignalClamp,
			desc:     "out-of-range sub-scores are clamped",
		},
	}

	r := newTestRecalibrator()
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, signals := r.Recalibrate(tt.verdict, tt.evidence, tt.text)
			if int(got.OverallScore) != tt.expected {
				t.Errorf("Expected %d for %s, got %d", tt.expected, tt.desc, got.OverallScore)
			}
			if tt.signal != "" && !hasSignal(signals, tt.signal) {
				t.Errorf("Expected signal %s for %s, got %+v", tt.signal, tt.desc, signals)
			}
		})
	}
}

func TestRecalibrate_DegradedUsesReportedScore(t *testing.T) {
	r := newTestRecalibrator()
	evidence := model.EvidenceSet{Affirmative: items(1, false, "example.com")}

	got, signals := r.Recalibrate(model.DefaultVerdict(70), evidence, "")

	if got.OverallScore != 70 {
		t.Errorf("Expected default score 70, got %d", got.OverallScore)
	}
	if !hasSignal(signals, model.SignalDegraded) {
		t.Error("Expected degraded signal")
	}
}

func randomVerdict(r *rand.Rand) model.Verdict {
	v := verdict(r.Intn(300)-100, r.Intn(300)-100, r.Intn(300)-100, r.Intn(300)-100)
	if r.Intn(5) == 0 {
		v.Detail = model.Detail{}
	}
	return v
}

func randomEvidence(r *rand.Rand) model.EvidenceSet {
	hosts := []string{"reuters.com", "nih.gov", "example.com", "facebook.com"}
	var set model.EvidenceSet
	for i := r.Intn(6); i > 0; i-- {
		host := hosts[r.Intn(len(hosts))]
		set.Affirmative = append(set.Affirmative, model.EvidenceItem{Link: "https://" + host + "/a", IsTrusted: host == "reuters.com" || host == "nih.gov"})
	}
	for i := r.Intn(4); i > 0; i-- {
		host := hosts[r.Intn(len(hosts))]
		set.Skeptical = append(set.Skeptical, model.EvidenceItem{Link: "https://" + host + "/s", IsTrusted: host == "reuters.com" || host == "nih.gov"})
	}
	return set
}

var randomTexts = []string{"", "Estudo mostra que chá cura o câncer", "preprint sobre vacina", "Prefeito inaugura ponte"}

func TestRecalibrate_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rc := newTestRecalibrator()

	for i := 0; i < 2000; i++ {
		v := randomVerdict(rng)
		set := randomEvidence(rng)
		text := randomTexts[rng.Intn(len(randomTexts))]

		got, _ := rc.Recalibrate(v, set, text)
		score := int(got.OverallScore)

		if score < 0 || score > 100 {
			t.Fatalf("Expected score in [0, 100], got %d (verdict %+v)", score, v)
		}
		if set.IsEmpty() && score > 25 {
			t.Fatalf("Expected zero-evidence score <= 25, got %d", score)
		}
		if aff, _ := set.TrustedCounts(); aff >= 3 && score < 90 {
			t.Fatalf("Expected score >= 90 with %d trusted confirmations, got %d", aff, score)
		}
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Saúde", "saude"},
		{"INFECÇÃO", "infeccao"},
		{"não", "nao"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Fold(tt.input); got != tt.expected {
				t.Errorf("Expected %q for %s, got %q", tt.expected, tt.input, got)
			}
		})
	}
}

func TestFold_Concurrent(t *testing.T) {
	const input = "Estudo científico sobre Saúde e vacinação"
	const expected = "estudo cientifico sobre saude e vacinacao"

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if got := Fold(input); got != expected {
					errs <- got
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Errorf("Expected %q for concurrent fold, got %q", expected, got)
	}
}

func TestIsMedicalClaim(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
		desc     string
	}{
		{"Cientistas descobrem tratamento para diabetes", true, "health plus science"},
		{"Chá milagroso elimina a gordura", true, "efficacy marketing"},
		{"Hospital inaugura nova ala", false, "health without science"},
		{"Estudo aponta alta no desemprego", false, "science without health"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := IsMedicalClaim(tt.input); got != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.desc, got)
			}
		})
	}
}
