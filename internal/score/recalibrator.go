package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/truthcheck/internal/metrics"
	"github.com/ppiankov/truthcheck/internal/model"
	"github.com/ppiankov/truthcheck/internal/validate"
)

// Recalibrator re-derives the overall score from the model's sub-scores and
// auditable evidence counts. It never fails and only touches OverallScore.
type Recalibrator struct {
	cfg        model.RecalibrationConfig
	weights    model.Weights
	classifier *validate.DomainClassifier
}

// NewRecalibrator creates a recalibrator. A nil classifier uses the default domain lists.
func NewRecalibrator(cfg model.RecalibrationConfig, weights model.Weights, classifier *validate.DomainClassifier) *Recalibrator {
	if classifier == nil {
		classifier = validate.NewDomainClassifier(nil)
	}
	return &Recalibrator{cfg: cfg, weights: weights, classifier: classifier}
}

// Recalibrate applies the rules in order and returns the adjusted verdict with
// one signal per rule that fired. text is the article content checked by the
// domain-risk heuristics.
func (r *Recalibrator) Recalibrate(v model.Verdict, evidence model.EvidenceSet, text string) (model.Verdict, []model.Signal) {
	var signals []model.Signal
	affTrusted, skeTrusted := evidence.TrustedCounts()

	// 1. Base score
	score, base := r.baseScore(v)
	signals = append(signals, base)
	if v.Degraded {
		signals = append(signals, model.Signal{
			Type:        model.SignalDegraded,
			Severity:    model.SeverityWarning,
			Description: "Model reply could not be parsed; neutral default used as base",
			Data:        map[string]interface{}{"score": int(v.OverallScore)},
		})
	}

	// 2. Trusted confirmation floors
	if sig, ok := r.applyFloor(&score, affTrusted); ok {
		signals = append(signals, sig)
	}

	// 3. Skeptical penalty
	if skeTrusted > 0 {
		penalty := skeTrusted * r.cfg.SkepticalPenaltyPerSource
		if penalty > r.cfg.MaxSkepticalPenalty {
			penalty = r.cfg.MaxSkepticalPenalty
		}
		before := score
		score -= float64(penalty)
		signals = append(signals, model.Signal{
			Type:        model.SignalSkepticalPenalty,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%d trusted source(s) contest the claim", skeTrusted),
			Data: map[string]interface{}{
				"skeptical_trusted": skeTrusted,
				"penalty":           penalty,
				"before":            before,
				"after":             score,
				"formula":           fmt.Sprintf("min(skeptical_trusted * %d, %d)", r.cfg.SkepticalPenaltyPerSource, r.cfg.MaxSkepticalPenalty),
			},
		})
	}

	// 4. Domain-risk heuristics
	if IsMedicalClaim(text) {
		academic := r.countAcademic(evidence.Affirmative)
		if academic == 0 && score > float64(r.cfg.MedicalCap) {
			before := score
			score = float64(r.cfg.MedicalCap)
			signals = append(signals, model.Signal{
				Type:        model.SignalMedicalCap,
				Severity:    model.SeverityCritical,
				Description: "Health claim without academic or public-health backing",
				Data: map[string]interface{}{
					"academic_sources": academic,
					"cap":              r.cfg.MedicalCap,
					"before":           before,
				},
			})
		}
		if AdmitsNoPeerReview(text) && score > float64(r.cfg.NoPeerReviewCap) {
			before := score
			score = float64(r.cfg.NoPeerReviewCap)
			signals = append(signals, model.Signal{
				Type:        model.SignalNoPeerReview,
				Severity:    model.SeverityCritical,
				Description: "Text admits the findings were not peer reviewed",
				Data: map[string]interface{}{
					"cap":    r.cfg.NoPeerReviewCap,
					"before": before,
				},
			})
		}
	}

	// 5. Zero-evidence cap
	if evidence.IsEmpty() && score > float64(r.cfg.NoEvidenceCap) {
		before := score
		score = float64(r.cfg.NoEvidenceCap)
		signals = append(signals, model.Signal{
			Type:        model.SignalNoEvidence,
			Severity:    model.SeverityCritical,
			Description: "No external evidence found",
			Data: map[string]interface{}{
				"cap":    r.cfg.NoEvidenceCap,
				"before": before,
			},
		})
	}

	// 6. The strong floor holds over every cap above
	if affTrusted >= r.cfg.StrongFloorCount && score < float64(r.cfg.StrongFloor) {
		before := score
		score = float64(r.cfg.StrongFloor)
		signals = append(signals, model.Signal{
			Type:        model.SignalTrustedFloor,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Floor re-applied: %d trusted sources confirm", affTrusted),
			Data: map[string]interface{}{
				"affirmative_trusted": affTrusted,
				"floor":               r.cfg.StrongFloor,
				"before":              before,
			},
		})
	}

	// 7. Clamp and round
	final := math.Round(score)
	if final < 0 || final > 100 {
		signals = append(signals, model.Signal{
			Type:        model.SignalClamp,
			Severity:    model.SeverityInfo,
			Description: "Score bounded to [0, 100]",
			Data:        map[string]interface{}{"before": final},
		})
		final = math.Max(0, math.Min(100, final))
	}

	for _, s := range signals {
		if s.Type != model.SignalBaseScore {
			metrics.RecordRule(string(s.Type))
		}
	}

	v.OverallScore = model.Points(final)
	return v, signals
}

// baseScore combines the sub-scores. Degraded or detail-less verdicts fall back
// to the model's own overall score.
func (r *Recalibrator) baseScore(v model.Verdict) (float64, model.Signal) {
	if v.Degraded || v.Detail.IsEmpty() {
		score := float64(v.OverallScore)
		return score, model.Signal{
			Type:        model.SignalBaseScore,
			Severity:    model.SeverityWarning,
			Description: "No sub-scores available; using the reported overall score",
			Data: map[string]interface{}{
				"reported": int(v.OverallScore),
				"score":    score,
			},
		}
	}

	facts := float64(v.Detail.Facts.Score)
	sources := float64(v.Detail.Sources.Score)
	title := float64(v.Detail.Title.Score)
	score := r.weights.Combine(facts, sources, title)
	fp, sp, tp := r.weights.Percent()

	return score, model.Signal{
		Type:        model.SignalBaseScore,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("Weighted sub-scores: %.1f (model reported %d)", score, int(v.OverallScore)),
		Data: map[string]interface{}{
			"facts":    facts,
			"sources":  sources,
			"title":    title,
			"reported": int(v.OverallScore),
			"score":    score,
			"formula":  fmt.Sprintf("facts*%.2f + sources*%.2f + title*%.2f", float64(fp)/100, float64(sp)/100, float64(tp)/100),
		},
	}
}

func (r *Recalibrator) applyFloor(score *float64, affTrusted int) (model.Signal, bool) {
	floor := 0
	switch {
	case affTrusted >= r.cfg.StrongFloorCount:
		floor = r.cfg.StrongFloor
	case affTrusted >= r.cfg.ModerateFloorCount:
		floor = r.cfg.ModerateFloor
	default:
		return model.Signal{}, false
	}
	if *score >= float64(floor) {
		return model.Signal{}, false
	}

	before := *score
	*score = float64(floor)
	return model.Signal{
		Type:        model.SignalTrustedFloor,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("%d trusted sources confirm the claim", affTrusted),
		Data: map[string]interface{}{
			"affirmative_trusted": affTrusted,
			"floor":               floor,
			"before":              before,
		},
	}, true
}

func (r *Recalibrator) countAcademic(items []model.EvidenceItem) int {
	count := 0
	for _, it := range items {
		if r.classifier.IsAcademic(it.Link) {
			count++
		}
	}
	return count
}
