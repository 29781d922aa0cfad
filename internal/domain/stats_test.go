package domain

import "testing"

func TestConfidenceLabel(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		expected   ConfidenceLevel
	}{
		{"very high fraction", 0.995, ConfidenceVeryHigh},
		{"exactly 99", 0.99, ConfidenceVeryHigh},
		{"high", 0.96, ConfidenceHigh},
		{"exactly 95", 0.95, ConfidenceHigh},
		{"moderate", 0.91, ConfidenceModerate},
		{"low", 0.85, ConfidenceLow},
		{"insufficient", 0.5, ConfidenceInsufficient},
		{"percentage input", 97.5, ConfidenceHigh},
		{"percentage very high", 99.9, ConfidenceVeryHigh},
		{"negative clamps to zero", -3, ConfidenceInsufficient},
		{"zero", 0, ConfidenceInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConfidenceLabel(tt.confidence); got != tt.expected {
				t.Errorf("ConfidenceLabel(%v) = %s, want %s", tt.confidence, got, tt.expected)
			}
		})
	}
}

func TestConfidenceLevel_Label(t *testing.T) {
	if ConfidenceHigh.Label() != "High" {
		t.Errorf("expected High, got %s", ConfidenceHigh.Label())
	}
	if ConfidenceLevel("bogus").Label() != "Not significant" {
		t.Errorf("unknown levels should read as not significant")
	}
}

func TestUpliftColor(t *testing.T) {
	tests := []struct {
		name       string
		uplift     float64
		confidence float64
		expected   string
	}{
		{"significant win", 0.12, 0.97, UpliftPositive},
		{"significant loss", -0.08, 0.99, UpliftNegative},
		{"flat significant", 0, 0.99, UpliftNeutral},
		{"win not significant", 0.3, 0.80, UpliftNeutral},
		{"loss not significant", -0.3, 0.94, UpliftNeutral},
		{"percentage confidence", 0.05, 96, UpliftPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UpliftColor(tt.uplift, tt.confidence); got != tt.expected {
				t.Errorf("UpliftColor(%v, %v) = %s, want %s", tt.uplift, tt.confidence, got, tt.expected)
			}
		})
	}
}

func TestNormalizeVariationName(t *testing.T) {
	tests := map[string]string{
		"Variant B":       "variant_b",
		"  control  ":     "control",
		"new--checkout.v2": "new_checkout_v2",
		"Ümlaut Test":     "mlaut_test",
		"":                "",
		"___":             "",
	}
	for in, want := range tests {
		if got := NormalizeVariationName(in); got != want {
			t.Errorf("NormalizeVariationName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatchVariationPattern(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"variant*", "Variant B", true},
		{"VARIANT_?", "variant-c", true},
		{"variant_?", "variant_cc", false},
		{"control", "Control", true},
		{"*checkout*", "New Checkout Flow", true},
		{"treatment", "control", false},
		{"", "", true},
		{"", "x", false},
	}
	for _, tt := range tests {
		if got := MatchVariationPattern(tt.pattern, tt.name); got != tt.want {
			t.Errorf("MatchVariationPattern(%q, %q) = %v, want %v", tt.pattern, tt.name, got, tt.want)
		}
	}
}

func TestIsControlName(t *testing.T) {
	for _, name := range []string{"Control", "ctrl", "Baseline", "original", "control_1", "Control 2"} {
		if !IsControlName(name) {
			t.Errorf("expected %q to be a control name", name)
		}
	}
	for _, name := range []string{"variant", "controlled", "treatment", ""} {
		if IsControlName(name) {
			t.Errorf("expected %q not to be a control name", name)
		}
	}
}

func TestResolveVariation(t *testing.T) {
	variations := []Variation{
		{ID: "v-a", Name: "Original Checkout", IsControl: true},
		{ID: "v-b", Name: "One Page Checkout"},
		{ID: "v-c", Name: "Express"},
	}

	tests := []struct {
		name   string
		input  string
		wantID string
		wantOK bool
	}{
		{"exact", "Express", "v-c", true},
		{"normalized", "one-page checkout", "v-b", true},
		{"control alias", "control", "v-a", true},
		{"letter alias", "B", "v-b", true},
		{"variant letter", "Variant C", "v-c", true},
		{"numbered", "v2", "v-b", true},
		{"out of range", "variant_d", "", false},
		{"unknown", "mystery", "", false},
		{"empty", " ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveVariation(tt.input, variations)
			if ok != tt.wantOK {
				t.Fatalf("ResolveVariation(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got.ID != tt.wantID {
				t.Errorf("ResolveVariation(%q) = %s, want %s", tt.input, got.ID, tt.wantID)
			}
		})
	}
}
