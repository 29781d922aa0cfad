package domain

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

// ConfidenceLevel buckets a statistical confidence value for display.
type ConfidenceLevel string

const (
	ConfidenceVeryHigh     ConfidenceLevel = "very_high"
	ConfidenceHigh         ConfidenceLevel = "high"
	ConfidenceModerate     ConfidenceLevel = "moderate"
	ConfidenceLow          ConfidenceLevel = "low"
	ConfidenceInsufficient ConfidenceLevel = "insufficient"
)

// SignificanceThreshold is the confidence at which a result counts as significant.
const SignificanceThreshold = 0.95

func (c ConfidenceLevel) Label() string {
	switch c {
	case ConfidenceVeryHigh:
		return "Very high"
	case ConfidenceHigh:
		return "High"
	case ConfidenceModerate:
		return "Moderate"
	case ConfidenceLow:
		return "Low"
	default:
		return "Not significant"
	}
}

// NormalizeConfidence accepts either a fraction (0..1) or a percentage (0..100).
func NormalizeConfidence(c float64) float64 {
	if c > 1 {
		c = c / 100
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// ConfidenceLabel buckets a confidence value.
func ConfidenceLabel(confidence float64) ConfidenceLevel {
	c := NormalizeConfidence(confidence)
	switch {
	case c >= 0.99:
		return ConfidenceVeryHigh
	case c >= 0.95:
		return ConfidenceHigh
	case c >= 0.90:
		return ConfidenceModerate
	case c >= 0.80:
		return ConfidenceLow
	default:
		return ConfidenceInsufficient
	}
}

func IsSignificant(confidence float64) bool {
	return NormalizeConfidence(confidence) >= SignificanceThreshold
}

const (
	UpliftPositive = "positive"
	UpliftNegative = "negative"
	UpliftNeutral  = "neutral"
)

// UpliftColor classifies an uplift for coloring. Only significant results
// are colored; everything else is neutral.
func UpliftColor(uplift, confidence float64) string {
	if !IsSignificant(confidence) {
		return UpliftNeutral
	}
	switch {
	case uplift > 0:
		return UpliftPositive
	case uplift < 0:
		return UpliftNegative
	default:
		return UpliftNeutral
	}
}

func normalizeName(s string, keep func(r rune) bool) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || keep(r) {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	return b.String()
}

// NormalizeVariationName lowercases a name and collapses every run of
// non-alphanumeric characters into a single underscore.
func NormalizeVariationName(name string) string {
	return normalizeName(name, func(rune) bool { return false })
}

// MatchVariationPattern matches a variation name against a pattern that may
// contain * and ? wildcards. Case and separators are ignored on both sides.
func MatchVariationPattern(pattern, name string) bool {
	p := normalizeName(pattern, func(r rune) bool { return r == '*' || r == '?' })
	n := NormalizeVariationName(name)
	if p == "" {
		return n == ""
	}
	ok, err := path.Match(p, n)
	return err == nil && ok
}

var (
	controlName = regexp.MustCompile(`^(control|ctrl|baseline|original|default)(_?[0-9]+)?$`)
	aliasName   = regexp.MustCompile(`^(?:(?:variant|variation|var|version|group|arm|v)_?)?([a-z]|[0-9]+)$`)
)

// IsControlName reports whether a name conventionally denotes the control arm.
func IsControlName(name string) bool {
	return controlName.MatchString(NormalizeVariationName(name))
}

// ResolveVariation maps a variation label reported by the analysis service
// onto one of the defined variations. It tries, in order: an exact
// normalized match, a control alias, then a positional alias where letters
// count from A and numbers from 1 (so "B", "variant_b" and "v2" all name the
// second variation).
func ResolveVariation(name string, variations []Variation) (*Variation, bool) {
	norm := NormalizeVariationName(name)
	if norm == "" {
		return nil, false
	}

	for i := range variations {
		if NormalizeVariationName(variations[i].Name) == norm {
			return &variations[i], true
		}
	}

	if controlName.MatchString(norm) {
		for i := range variations {
			if variations[i].IsControl {
				return &variations[i], true
			}
		}
	}

	m := aliasName.FindStringSubmatch(norm)
	if m == nil {
		return nil, false
	}
	idx := -1
	if n, err := strconv.Atoi(m[1]); err == nil {
		idx = n - 1
	} else if len(m[1]) == 1 {
		idx = int(m[1][0] - 'a')
	}
	if idx < 0 || idx >= len(variations) {
		return nil, false
	}
	return &variations[idx], true
}
