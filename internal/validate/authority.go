package validate

import (
	"net/url"
	"strings"

	"github.com/ppiankov/truthcheck/internal/model"
)

// Tier classifies a source domain
type Tier string

const (
	TierAcademic Tier = "academic"  // Public health, science, government
	TierTrusted  Tier = "trusted"   // Wire services, major outlets, fact-checkers
	TierLowTrust Tier = "low_trust" // Social, UGC, wiki, blog platforms
	TierUnknown  Tier = "unknown"
)

// DomainClassifier classifies URLs against the curated domain lists
type DomainClassifier struct {
	academic []string
	trusted  []string
	lowTrust []string
}

// NewDomainClassifier creates a classifier. A nil config uses the default lists.
func NewDomainClassifier(config *model.DomainConfig) *DomainClassifier {
	if config == nil {
		config = &model.DefaultConfig().Domains
	}

	return &DomainClassifier{
		academic: normalizeDomains(config.Academic),
		trusted:  normalizeDomains(config.Trusted),
		lowTrust: normalizeDomains(config.LowTrust),
	}
}

// Classify returns the tier of a URL. Academic wins over trusted, trusted over low-trust.
func (c *DomainClassifier) Classify(rawURL string) Tier {
	host := Host(rawURL)
	if host == "" {
		return TierUnknown
	}

	switch {
	case matchesAny(host, c.academic):
		return TierAcademic
	case matchesAny(host, c.trusted):
		return TierTrusted
	case matchesAny(host, c.lowTrust):
		return TierLowTrust
	default:
		return TierUnknown
	}
}

// IsTrusted reports whether the URL's domain is on the academic or trusted list
func (c *DomainClassifier) IsTrusted(rawURL string) bool {
	tier := c.Classify(rawURL)
	return tier == TierAcademic || tier == TierTrusted
}

// IsAcademic reports whether the URL's domain is on the academic list
func (c *DomainClassifier) IsAcademic(rawURL string) bool {
	return c.Classify(rawURL) == TierAcademic
}

// IsLowTrust reports whether the URL's domain is on the low-trust list.
// Checked independently of tier so that a trusted subdomain of a UGC host is still detected.
func (c *DomainClassifier) IsLowTrust(rawURL string) bool {
	host := Host(rawURL)
	return host != "" && matchesAny(host, c.lowTrust)
}

// Host returns the lowercased host of a URL without port or leading "www."
func Host(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}

	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// matchesAny reports whether host equals or is a subdomain of any entry
func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "www.")
		d = strings.Trim(d, ".")
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}
