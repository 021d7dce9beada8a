package validate

import (
	"net/url"
	"strings"

	"github.com/ppiankov/truthcheck/internal/model"
)

// AllowedLinks builds the set of links actually shown to the model
func AllowedLinks(set model.EvidenceSet) map[string]bool {
	allowed := make(map[string]bool, set.Len())
	for _, link := range set.Links() {
		if link != "" {
			allowed[link] = true
		}
	}
	return allowed
}

// Sanitize filters the verdict's cited sources down to entries in allowed. Empty,
// non-http(s) or unlisted entries are dropped. Both lists are always non-nil.
func Sanitize(v model.Verdict, allowed map[string]bool) (model.Verdict, int) {
	confirming, dropped1 := filterRefs(v.Sources.Confirming, allowed)
	contesting, dropped2 := filterRefs(v.Sources.Contesting, allowed)
	v.Sources = model.VerifiedSources{Confirming: confirming, Contesting: contesting}
	return v, dropped1 + dropped2
}

func filterRefs(refs []model.SourceRef, allowed map[string]bool) ([]model.SourceRef, int) {
	out := make([]model.SourceRef, 0, len(refs))
	dropped := 0
	for _, ref := range refs {
		link := strings.TrimSpace(ref.URL)
		if !isWebURL(link) || !allowed[link] {
			dropped++
			continue
		}
		out = append(out, model.SourceRef{URL: link})
	}
	return out, dropped
}

func isWebURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
