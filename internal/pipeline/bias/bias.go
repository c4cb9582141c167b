// Package bias scores an article's political lean against the active
// pro-government/pro-opposition/neutral keyword lexicon
// (internal/pipeline/lexicon).
package bias

import (
	"regexp"
	"sort"
	"strings"

	"newsdesk/internal/pipeline/lexicon"
	"newsdesk/internal/pipeline/sentiment"
)

// Direction is the resolved lean of one scored article.
type Direction string

const (
	DirectionProGovernment Direction = "pro_government"
	DirectionProOpposition Direction = "pro_opposition"
	DirectionNeutral       Direction = "neutral"
)

// Result carries the final score, its direction, and every component that
// fed it, for persistence in bias_analysis.model_metadata.
type Result struct {
	Score            float64
	Direction        Direction
	Confidence       float64
	KeywordMatches   map[string]int // "pro_gov_<category>"/"pro_opp_<category>" -> matches on that side
	KeywordScore     float64
	SourcePattern    float64
	LanguagePatterns float64
	SentimentContext float64
	LexiconVersion   string
}

var governanceTermPattern = regexp.MustCompile(`(?i)\b(DPWH|DBM|DOH|DepEd|DSWD|Malacañang|Palace|Congress|Senate)\b`)

var informalCues = regexp.MustCompile(`(?i)\b(lol|grabe|sana|talaga|omg|chismis)\b`)
var formalCues = regexp.MustCompile(`(?i)\b(pursuant to|hereby|whereas|notwithstanding|in accordance with)\b`)

// Score implements the weighted pro-government/pro-opposition/neutral
// scoring algorithm: per-category weighted matches produce a keyword
// score, combined with small source-pattern, language-pattern, and
// sentiment-context adjustments into a final [0,1] bias_score, then
// classified into a Direction.
func Score(title, content string, lex *lexicon.Lexicon) Result {
	text := title + " " + content

	govCounts, govTotal := weightedCategoryCounts(text, lex.ProGovernment)
	oppCounts, oppTotal := weightedCategoryCounts(text, lex.ProOpposition)
	_, neutralTotal := weightedCategoryCounts(text, lex.Neutral)

	totalMatches := govTotal.matches + oppTotal.matches + neutralTotal.matches

	keywordScore := 0.0
	if totalMatches > 0 {
		keywordScore = maxFloat(govTotal.weighted, oppTotal.weighted) / float64(maxInt(totalMatches, 1))
		keywordScore = minFloat(keywordScore, 1.0)
	}

	sourcePattern := 0.0
	if governanceTermPattern.MatchString(text) {
		sourcePattern = 0.1
	}

	languagePatterns := 0.0
	informal := len(informalCues.FindAllString(text, -1))
	formal := len(formalCues.FindAllString(text, -1))
	switch {
	case informal > formal:
		languagePatterns = 0.2
	case formal > informal:
		languagePatterns = -0.1
	}

	sentimentResult := sentiment.Analyze(title, content)
	sentimentContext := 0.0
	if absFloat(sentimentResult.Score) > 0.3 {
		sentimentContext = absFloat(sentimentResult.Score)
	}

	score := 0.6*keywordScore + 0.1*sourcePattern + 0.1*absFloat(languagePatterns) + 0.2*sentimentContext

	direction := DirectionNeutral
	switch {
	case govTotal.weighted > oppTotal.weighted && score > 0.1:
		direction = DirectionProGovernment
	case oppTotal.weighted > govTotal.weighted && score > 0.1:
		direction = DirectionProOpposition
	}

	// Keys are side-prefixed so a pro-government and a pro-opposition
	// match in the same category (e.g. "current_admin") don't collide.
	matches := map[string]int{}
	for category, count := range govCounts {
		if count > 0 {
			matches["pro_gov_"+category] = count
		}
	}
	for category, count := range oppCounts {
		if count > 0 {
			matches["pro_opp_"+category] = count
		}
	}

	confidence := minFloat(1.0, score+float64(totalMatches)/20.0)

	return Result{
		Score:            score,
		Direction:        direction,
		Confidence:       confidence,
		KeywordMatches:   matches,
		KeywordScore:     keywordScore,
		SourcePattern:    sourcePattern,
		LanguagePatterns: languagePatterns,
		SentimentContext: sentimentContext,
		LexiconVersion:   lex.Version,
	}
}

type categoryTotal struct {
	matches  int
	weighted float64
}

// weightedCategoryCounts matches every term in each category against
// text, case-insensitively, sorting terms within a category by descending
// length first so a longer multi-word term is preferred over a shorter
// term it contains.
func weightedCategoryCounts(text string, categories map[string][]string) (map[string]int, categoryTotal) {
	counts := map[string]int{}
	var total categoryTotal

	lowerText := strings.ToLower(text)

	for category, terms := range categories {
		sorted := append([]string(nil), terms...)
		sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

		matchCount := 0
		remaining := lowerText
		for _, term := range sorted {
			var n int
			n, remaining = countTerm(remaining, term)
			matchCount += n
		}

		counts[category] = matchCount
		weight := lexiconWeight(category)
		total.matches += matchCount
		total.weighted += float64(matchCount) * weight
	}

	return counts, total
}

// countTerm counts term in lowerText and returns the text with those
// occurrences blanked out, so a shorter term checked afterwards cannot
// count the same words again.
func countTerm(lowerText, term string) (int, string) {
	term = strings.ToLower(term)
	if strings.Contains(term, " ") {
		return strings.Count(lowerText, term), strings.ReplaceAll(lowerText, term, " ")
	}
	pattern := `\b` + regexp.QuoteMeta(term) + `\b`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, lowerText
	}
	return len(re.FindAllString(lowerText, -1)), re.ReplaceAllString(lowerText, " ")
}

func lexiconWeight(category string) float64 {
	if w, ok := weightsOverride[category]; ok {
		return w
	}
	return 0.1
}

// weightsOverride mirrors lexicon.CategoryWeights; kept as a package-level
// var here so it stays importable without a lexicon.Store dependency in
// tests that only exercise Score directly against a literal Lexicon.
var weightsOverride = map[string]float64{
	"current_admin":  0.4,
	"administration": 0.3,
	"policies":       0.2,
	"positive_terms": 0.1,
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func absFloat(a float64) float64 {
	if a < 0 {
		return -a
	}
	return a
}
