package bias

import (
	"testing"

	"newsdesk/internal/pipeline/lexicon"
)

func testLexicon() *lexicon.Lexicon {
	return &lexicon.Lexicon{
		Version: "test_v1",
		ProGovernment: map[string][]string{
			"current_admin":  {"the administration", "malacañang"},
			"administration": {"government program"},
			"policies":       {"economic recovery plan"},
			"positive_terms": {"commendable progress"},
		},
		ProOpposition: map[string][]string{
			"current_admin":  {"the opposition", "critics of the administration"},
			"administration": {"government overreach"},
			"policies":       {"budget insertion"},
			"positive_terms": {"accountability push"},
		},
		Neutral: map[string][]string{
			"current_admin": {"the national government"},
		},
	}
}

func TestScoreNeutralOnNoMatches(t *testing.T) {
	result := Score("Weather forecast", "Sunny skies expected across the region.", testLexicon())
	if result.Direction != DirectionNeutral {
		t.Errorf("Direction = %q, want neutral", result.Direction)
	}
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0 with no keyword matches", result.Score)
	}
}

func TestScoreLeansProGovernment(t *testing.T) {
	result := Score(
		"Malacañang touts economic recovery plan",
		"The administration's commendable progress on its government program drew praise from allies.",
		testLexicon(),
	)
	if result.Direction != DirectionProGovernment {
		t.Errorf("Direction = %q, want pro_government (score=%v, matches=%v)", result.Direction, result.Score, result.KeywordMatches)
	}
}

func TestScoreLeansProOpposition(t *testing.T) {
	result := Score(
		"Critics of the administration slam budget insertion",
		"The opposition demanded an accountability push after reports of government overreach.",
		testLexicon(),
	)
	if result.Direction != DirectionProOpposition {
		t.Errorf("Direction = %q, want pro_opposition (score=%v, matches=%v)", result.Direction, result.Score, result.KeywordMatches)
	}
}

func TestScoreKeywordMatchesAreSidePrefixed(t *testing.T) {
	result := Score(
		"Marcos administration praised",
		"Allies called the move successful for the country.",
		&lexicon.Lexicon{
			Version: "test_v1",
			ProGovernment: map[string][]string{
				"current_admin":  {"marcos administration"},
				"positive_terms": {"successful"},
			},
			ProOpposition: map[string][]string{
				"current_admin": {"marcos administration opposition"},
			},
		},
	)
	if result.Direction != DirectionProGovernment {
		t.Fatalf("Direction = %q, want pro_government", result.Direction)
	}
	if result.KeywordMatches["pro_gov_current_admin"] != 1 {
		t.Errorf("KeywordMatches[pro_gov_current_admin] = %d, want 1 (got %v)", result.KeywordMatches["pro_gov_current_admin"], result.KeywordMatches)
	}
	if result.KeywordMatches["pro_gov_positive_terms"] != 1 {
		t.Errorf("KeywordMatches[pro_gov_positive_terms] = %d, want 1 (got %v)", result.KeywordMatches["pro_gov_positive_terms"], result.KeywordMatches)
	}
	if _, ok := result.KeywordMatches["current_admin"]; ok {
		t.Errorf("unprefixed key leaked into KeywordMatches: %v", result.KeywordMatches)
	}
}

func TestScoreConfidenceWithinBounds(t *testing.T) {
	result := Score(
		"Malacañang announces economic recovery plan",
		"The administration's government program won commendable progress across the country repeatedly.",
		testLexicon(),
	)
	if result.Confidence < 0 || result.Confidence > 1 {
		t.Errorf("Confidence out of [0,1]: %v", result.Confidence)
	}
	if result.KeywordScore < 0 || result.KeywordScore > 1 {
		t.Errorf("KeywordScore out of [0,1]: %v", result.KeywordScore)
	}
}

func TestCountTermPrefersMultiWordOverSubstring(t *testing.T) {
	categories := map[string][]string{
		"current_admin": {"the administration", "administration"},
	}
	counts, total := weightedCategoryCounts("the administration announced a new policy", categories)
	if total.matches == 0 {
		t.Fatal("expected at least one match")
	}
	if counts["current_admin"] != 1 {
		t.Errorf("expected \"the administration\" to count once and not again as \"administration\", got %v", counts)
	}
}
