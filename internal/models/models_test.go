package models

import "testing"

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{"headliner", TierHeadliner, false},
		{"Sub-Headliner", TierSubHeadliner, false},
		{"sub", TierSubHeadliner, false},
		{"mid", TierMidTier, false},
		{"opener", TierUndercard, false},
		{" undercard ", TierUndercard, false},
		{"", "", false},
		{"megastar", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTier(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTier(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseCountMode(t *testing.T) {
	tests := []struct {
		in      string
		want    CountMode
		wantErr bool
	}{
		{"tier-based", CountTierBased, false},
		{"tier", CountTierBased, false},
		{"custom", CountCustom, false},
		{"per-tier", CountCustomPerTier, false},
		{"Per-Artist", CountPerArtist, false},
		{"", "", false},
		{"random", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCountMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCountMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCountMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSelectionMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SelectionMode
		wantErr bool
	}{
		{"popular", SelectPopular, false},
		{"balanced", SelectBalanced, false},
		{"deep-cuts", SelectDeepCuts, false},
		{"deep", SelectDeepCuts, false},
		{"", "", false},
		{"shallow", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSelectionMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSelectionMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSelectionMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
