package validate

import "github.com/ppiankov/truthcheck/internal/model"

// TrustFilter applies the trust/relevance rules to search results
type TrustFilter struct {
	classifier *DomainClassifier
}

// NewTrustFilter creates a filter backed by the given classifier
func NewTrustFilter(classifier *DomainClassifier) *TrustFilter {
	if classifier == nil {
		classifier = NewDomainClassifier(nil)
	}
	return &TrustFilter{classifier: classifier}
}

// Dedupe removes items with a repeated link, keeping the first occurrence in order
func Dedupe(items []model.EvidenceItem) []model.EvidenceItem {
	seen := make(map[string]bool, len(items))
	out := make([]model.EvidenceItem, 0, len(items))
	for _, it := range items {
		if seen[it.Link] {
			continue
		}
		seen[it.Link] = true
		out = append(out, it)
	}
	return out
}

// FilterToTrustedIfAny drops low-trust items that are not themselves trusted, but only
// when at least one trusted item is present. Without a trusted item the input is returned as is.
func (f *TrustFilter) FilterToTrustedIfAny(items []model.EvidenceItem) []model.EvidenceItem {
	if model.CountTrusted(items) == 0 {
		return items
	}
	return f.dropLowTrust(items)
}

// Apply dedupes and filters each framing independently
func (f *TrustFilter) Apply(set model.EvidenceSet) model.EvidenceSet {
	return model.EvidenceSet{
		Affirmative: f.FilterToTrustedIfAny(Dedupe(set.Affirmative)),
		Skeptical:   f.FilterToTrustedIfAny(Dedupe(set.Skeptical)),
	}
}

// Merge appends fresh results to prior evidence. Prior items are kept untouched, fresh
// items already present are skipped, and the low-trust rule is applied to the remaining
// fresh items using the trust evidence of the merged framing. The result is always a
// superset of prior.
func (f *TrustFilter) Merge(prior, fresh model.EvidenceSet) (merged model.EvidenceSet, added int) {
	aff, n1 := f.mergeFraming(prior.Affirmative, fresh.Affirmative)
	skep, n2 := f.mergeFraming(prior.Skeptical, fresh.Skeptical)
	return model.EvidenceSet{Affirmative: aff, Skeptical: skep}, n1 + n2
}

func (f *TrustFilter) mergeFraming(prior, fresh []model.EvidenceItem) ([]model.EvidenceItem, int) {
	seen := make(map[string]bool, len(prior))
	for _, it := range prior {
		seen[it.Link] = true
	}

	var novel []model.EvidenceItem
	for _, it := range Dedupe(fresh) {
		if !seen[it.Link] {
			novel = append(novel, it)
		}
	}

	if model.CountTrusted(prior)+model.CountTrusted(novel) > 0 {
		novel = f.dropLowTrust(novel)
	}

	out := make([]model.EvidenceItem, 0, len(prior)+len(novel))
	out = append(out, prior...)
	out = append(out, novel...)
	return out, len(novel)
}

func (f *TrustFilter) dropLowTrust(items []model.EvidenceItem) []model.EvidenceItem {
	out := make([]model.EvidenceItem, 0, len(items))
	for _, it := range items {
		if !it.IsTrusted && f.classifier.IsLowTrust(it.Link) {
			continue
		}
		out = append(out, it)
	}
	return out
}
