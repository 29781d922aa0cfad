package domain

import (
	"fmt"
	"time"
)

type TestVersion struct {
	ID            string
	TestID        string
	VersionNumber int
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
	Variations    []Variation
}

type Variation struct {
	ID            string
	VersionID     string
	Name          string
	Description   string
	IsControl     bool
	TrafficWeight int
}

// Control returns the control variation, or nil when none is marked.
func (v *TestVersion) Control() *Variation {
	for i := range v.Variations {
		if v.Variations[i].IsControl {
			return &v.Variations[i]
		}
	}
	return nil
}

// Validate checks the variation set of a version before it is stored:
// at least two variations, exactly one control, unique names, and
// traffic weights that sum to 100.
func (v *TestVersion) Validate() error {
	verr := &ValidationError{}

	if len(v.Variations) < 2 {
		verr.Add("variations", "at least two variations are required")
	}

	controls := 0
	total := 0
	seen := make(map[string]bool, len(v.Variations))
	for i, variation := range v.Variations {
		field := fmt.Sprintf("variations[%d]", i)
		norm := NormalizeVariationName(variation.Name)
		if norm == "" {
			verr.Add(field+".name", "name is required")
		} else if seen[norm] {
			verr.Add(field+".name", fmt.Sprintf("duplicate variation name %q", variation.Name))
		}
		seen[norm] = true

		if variation.TrafficWeight < 0 || variation.TrafficWeight > 100 {
			verr.Add(field+".traffic_weight", "weight must be between 0 and 100")
		}
		total += variation.TrafficWeight
		if variation.IsControl {
			controls++
		}
	}

	if len(v.Variations) > 0 {
		if controls != 1 {
			verr.Add("variations", "exactly one control variation is required")
		}
		if total != 100 {
			verr.Add("variations", fmt.Sprintf("traffic weights must sum to 100, got %d", total))
		}
	}

	return verr.OrNil()
}

// EvenWeights splits 100 across n variations, giving the remainder to the first ones.
func EvenWeights(n int) []int {
	if n <= 0 {
		return nil
	}
	weights := make([]int, n)
	base := 100 / n
	rem := 100 % n
	for i := range weights {
		weights[i] = base
		if i < rem {
			weights[i]++
		}
	}
	return weights
}
