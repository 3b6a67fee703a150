package regioncode

import "testing"

func TestCode(t *testing.T) {
	tests := []struct {
		region string
		want   string
	}{
		{"አማራ", "AMH"},
		{"Amhara", "AMH"},
		{"ኦሮሚያ", "ORO"},
		{"ትግራይ", "TIG"},
		{"አዲስ አበባ", "AA"},
		{"Addis Ababa", "AA"},
		{"ድሬዳዋ", "DD"},
		{"ደቡብ ኢትዮጵያ", "SOET"},
		{"ደቡብ ምዕራብ ኢትዮጵያ", "SWET"},
		{"ሐረር", "HAR"},
		{"አፋር", "AFR"},
		{"ሶማሌ", "SOM"},
		{"ጋምቤላ", "GAM"},
		{"ቤኒሻንጉል ጉሙዝ", "BEN"},
		{"ሲዳማ", "SID"},
		{"Sidama", "SID"},
		{"Unknown Region", "OTH"},
		{"", "OTH"},
		{"  አማራ  ", "AMH"},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			if got := Code(tt.region); got != tt.want {
				t.Errorf("Code(%q) = %q, want %q", tt.region, got, tt.want)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	if !Known("አማራ") {
		t.Error("expected አማራ to be known")
	}
	if Known("Atlantis") {
		t.Error("expected Atlantis to be unknown")
	}
}

func TestRegionsAllMap(t *testing.T) {
	for _, r := range Regions() {
		if Code(r) == Fallback {
			t.Errorf("form region %q maps to fallback", r)
		}
	}
}
