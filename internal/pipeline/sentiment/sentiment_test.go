package sentiment

import "testing"

func TestAnalyzeLabelBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		title   string
		content string
		want    Label
	}{
		{"no matches is neutral", "Weather update", "Sunny skies across the region today.", LabelNeutral},
		{"positive terms dominate", "City hails breakthrough", "Officials praised the achievement and celebrated the success of the recovery program.", LabelPositive},
		{"negative terms dominate", "Senator slams agency", "Critics condemned the scandal and corruption linked to the failed project.", LabelNegative},
		{"tied counts land on neutral boundary", "Mixed reaction", "The crowd cheered the win but later protested the controversy.", LabelNeutral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Analyze(tc.title, tc.content)
			if result.Label != tc.want {
				t.Errorf("Analyze().Label = %q, want %q (score=%v, +%d/-%d)",
					result.Label, tc.want, result.Score, result.PositiveHits, result.NegativeHits)
			}
		})
	}
}

func TestAnalyzeScoreRange(t *testing.T) {
	result := Analyze("Breakthrough and scandal", "A breakthrough win was overshadowed by a corruption scandal and outrage.")
	if result.Score < -1 || result.Score > 1 {
		t.Errorf("Score out of [-1,1] range: %v", result.Score)
	}
}

func TestAnalyzeNoMatchesHasZeroConfidence(t *testing.T) {
	result := Analyze("Routine update", "Nothing notable happened today.")
	if result.ConfidenceHint != 0 {
		t.Errorf("ConfidenceHint = %v, want 0 with no matches", result.ConfidenceHint)
	}
}
