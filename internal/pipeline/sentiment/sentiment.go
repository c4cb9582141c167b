// Package sentiment scores article text on a lexicon-matched positive vs.
// negative term count, the same coarse approach the funds classifier uses
// for its own positive/negative overrides, generalized into a standalone
// [-1, 1] score with a three-way label.
package sentiment

import "regexp"

// Positive and Negative are deliberately simple word-list patterns rather
// than a trained model - this pipeline stage is a fast, explainable first
// pass; model_metadata records how many terms of each side matched.
var Positive = regexp.MustCompile(`(?i)\b(hail|praise|commend|success|breakthrough|win|victory|improve(d|ment)?|recover(y|ed)?|boost|growth|approve[sd]?|celebrat\w*|relief|achiev\w*)\b`)

var Negative = regexp.MustCompile(`(?i)\b(slam|criticiz\w*|condemn\w*|fail(ure|ed)?|crisis|collapse|decline|protest|corrupt\w*|scandal|controvers\w*|outrage|violat\w*|casualt(y|ies)|death|killed|arrest\w*)\b`)

// Label is the coarse bucket a score resolves to.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNeutral  Label = "neutral"
	LabelNegative Label = "negative"
)

// Result carries the score, label, and the raw counts used to derive it.
type Result struct {
	Score          float64
	Label          Label
	PositiveHits   int
	NegativeHits   int
	ConfidenceHint float64
}

// boundary is the |score| threshold below which a result is labeled
// neutral rather than positive/negative.
const boundary = 0.05

// Analyze scores title+content and returns a Result. Score is
// (positive-negative)/(positive+negative), 0 when no terms matched at all.
func Analyze(title, content string) Result {
	text := title + " " + content

	positiveHits := len(Positive.FindAllString(text, -1))
	negativeHits := len(Negative.FindAllString(text, -1))

	total := positiveHits + negativeHits
	var score float64
	if total > 0 {
		score = float64(positiveHits-negativeHits) / float64(total)
	}

	label := LabelNeutral
	switch {
	case score >= boundary:
		label = LabelPositive
	case score <= -boundary:
		label = LabelNegative
	}

	confidence := 0.0
	if total > 0 {
		// More matched terms -> more confidence in the label, capped at 1.
		confidence = minFloat(1.0, float64(total)/10.0)
	}

	return Result{
		Score:          score,
		Label:          label,
		PositiveHits:   positiveHits,
		NegativeHits:   negativeHits,
		ConfidenceHint: confidence,
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
