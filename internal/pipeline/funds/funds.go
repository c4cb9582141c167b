// Package funds flags articles about public funds - government spending,
// budget allocations, and corruption involving public money - and builds
// the supplemental FundsInsight summary over everything flagged so far.
package funds

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"newsdesk/internal/models"
)

// Money matches the public-funds money vocabulary: generic fiscal terms
// as well as currency/magnitude words ("fund", "budget", "P2.3 billion",
// "₱500 million", "50,000 pesos") - this is the classifier's money gate.
var Money = regexp.MustCompile(`(?i)\b(fund|funds|budget|budgets|appropriation|appropriations|allocation|allocations|disbursement|disbursements|audit|audits|coa|php|peso|pesos|billion|billions|million|millions|trillion|trillions)\b`)

// MoneyAmount matches an explicit peso amount or spelled-out magnitude.
// It is used only to extract figures for FundsInsight, not as the
// classifier's money gate (see Money above).
var MoneyAmount = regexp.MustCompile(`(?i)(₱|php|p)\s?[\d,]+(\.\d+)?\s?(billion|million|thousand|trillion|m|b|k)?|[\d,]+(\.\d+)?\s?(billion|million|trillion)\s?pesos`)

// PHGovernment matches the public-sector agencies and offices whose
// spending is in scope.
var PHGovernment = regexp.MustCompile(`(?i)\b(DPWH|DBM|DOH|DepEd|DSWD|COA|Commission on Audit|Department of Budget|Department of Public Works|national budget|barangay fund|pork barrel|confidential fund|intelligence fund|malasakit|ayuda|SAP|AKAP|congress(ional)? fund)\b`)

// Corruption matches terms indicating misuse or investigation of public
// money. This is the SAME term set Classify consults, on its own, for the
// independent check that overrides a sports/crime/disaster veto - there is
// no separate "public sector" list, and a PHGovernment match alone does
// not override the veto.
var Corruption = regexp.MustCompile(`(?i)\b(corruption|graft|plunder|anomal(y|ous)|ghost (project|delivery|beneficiary)|overprice|kickback|ombudsman|sandiganbayan|misuse of funds|fund scam|embezzle)\b`)

// Sports, Crime, Disasters and Damage match money-adjacent terms whose
// presence alongside Money should NOT trip the classifier - prize money,
// stolen cash, and disaster damage estimates are not public-funds stories.
// Disasters deliberately avoids bare "flood" (which would veto legitimate
// "flood control" infrastructure spending stories) in favor of the
// flash-flood/flooding-incident phrasing that actually signals a weather
// disaster.
var Sports = regexp.MustCompile(`(?i)\b(prize money|cash prize|tournament|championship|PBA|UAAP|boxing purse)\b`)
var Crime = regexp.MustCompile(`(?i)\b(stolen|robbery|heist|ransom|extortion)\b`)
var Disasters = regexp.MustCompile(`(?i)\b(typhoon|earthquake|landslide|eruption)\b|flash\s+flood|flooding\s+incident`)
var Damage = regexp.MustCompile(`(?i)\b(damage(s)? (estimated|worth|amounting)|infrastructure damage|crop damage)\b`)

// Classify reports whether an article's title+content describes public
// funds: a money cue co-occurring with a government agency or a
// corruption term, and not overridden by a sports/crime/disaster money
// mention that explains the amount away - unless a corruption cue
// appears independently of that veto (e.g. graft in disaster-relief fund
// disbursement is still a funds story).
func Classify(title, content string) bool {
	text := title + " " + content

	if !Money.MatchString(text) {
		return false
	}

	govMatch := PHGovernment.MatchString(text)
	corruptionMatch := Corruption.MatchString(text)
	if !govMatch && !corruptionMatch {
		return false
	}

	if Sports.MatchString(text) || Crime.MatchString(text) || Disasters.MatchString(text) || Damage.MatchString(text) {
		if !corruptionMatch {
			return false
		}
	}

	return true
}

// NERHook is the optional named-entity augmentation point behind the
// USE_SPACY_FUNDS toggle: given the rule-based verdict, it gets the final
// say on whether the article is really a funds story. A nil hook means
// the classifier runs in pure rule mode.
type NERHook func(title, content string, ruleVerdict bool) bool

// Classifier pairs the rule-based check with an optional NER hook,
// modeling the upstream augmentation toggle as an explicit two-variant
// type instead of a hidden global flag: Classifier{augment: nil} is the
// Pure(rule) variant, Classifier{augment: f} is Augmented(rule, f).
type Classifier struct {
	augment NERHook
}

// NewClassifier builds a Classifier. Pass a nil hook to run rule-only.
func NewClassifier(augment NERHook) *Classifier {
	return &Classifier{augment: augment}
}

func (c *Classifier) Classify(title, content string) bool {
	verdict := Classify(title, content)
	if c.augment == nil {
		return verdict
	}
	return c.augment(title, content, verdict)
}

// Insight summarizes everything flagged is_funds=true so far: agency
// mention counts, corruption-term counts, every distinct money amount
// matched, the top sources/categories carrying funds stories, and the
// per-article entity enrichment (see ExtractEntities). It is computed on
// demand (see internal/repository) rather than persisted.
func Insight(articles []*models.Article) models.FundsInsight {
	insight := models.FundsInsight{
		TopAgencies:        map[string]int{},
		TopCorruptionTerms: map[string]int{},
		TopSources:         map[string]int{},
		TopCategories:      map[string]int{},
		GeneratedAt:        time.Now(),
	}

	amountSeen := map[string]bool{}
	for _, a := range articles {
		if !a.IsFunds {
			continue
		}
		insight.TotalFundsArticles++
		text := a.Title + " " + a.Content

		for _, m := range PHGovernment.FindAllString(text, -1) {
			insight.TopAgencies[m]++
		}
		for _, m := range Corruption.FindAllString(text, -1) {
			insight.TopCorruptionTerms[m]++
		}
		for _, m := range MoneyAmount.FindAllString(text, -1) {
			if !amountSeen[m] {
				amountSeen[m] = true
				insight.MoneyAmounts = append(insight.MoneyAmounts, m)
			}
		}

		insight.TopSources[a.Source]++
		if a.Category != nil && *a.Category != "" {
			insight.TopCategories[*a.Category]++
		}

		insight.Articles = append(insight.Articles, models.ArticleFundsEntities{
			ArticleID:     a.ID,
			FundsEntities: ExtractEntities(a.Title, a.Content),
		})
	}

	sort.Strings(insight.MoneyAmounts)
	return insight
}

// contractorPattern matches a capitalized company name ending in a
// construction-industry suffix ("ABC Builders Corp.").
var contractorPattern = regexp.MustCompile(`\b[A-Z][\w&.]*(?:\s+[A-Z][\w&.]*)*\s+(?:Construction|Builders|Corp\.?|Corporation|Inc\.?)\b`)

// projectLocationPattern matches a capitalized place name following "in",
// the common way article text introduces where a project is located.
var projectLocationPattern = regexp.MustCompile(`\bin\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)\b`)

// ExtractEntities builds the per-article enrichment for an is_funds=true
// article: primary agency, contractors, project locations, total peso
// amount, and corruption indicators. It reuses the classifier's own term
// families - there is no spaCy-equivalent NER dependency in the example
// pack for this tier, so extraction is deliberately regex-only.
func ExtractEntities(title, content string) models.FundsEntities {
	text := title + " " + content
	entities := models.FundsEntities{}

	if agencies := PHGovernment.FindAllString(text, -1); len(agencies) > 0 {
		entities.PrimaryAgency = agencies[0]
	}

	seenContractor := map[string]bool{}
	for _, m := range contractorPattern.FindAllString(text, -1) {
		if !seenContractor[m] {
			seenContractor[m] = true
			entities.Contractors = append(entities.Contractors, m)
		}
	}

	seenLocation := map[string]bool{}
	for _, m := range projectLocationPattern.FindAllStringSubmatch(text, -1) {
		loc := m[1]
		if !seenLocation[loc] {
			seenLocation[loc] = true
			entities.ProjectLocations = append(entities.ProjectLocations, loc)
		}
	}

	if matches := MoneyAmount.FindAllString(text, -1); len(matches) > 0 {
		entities.TotalAmount = parseAmount(matches[0])
	}

	seenCorruption := map[string]bool{}
	for _, m := range Corruption.FindAllString(text, -1) {
		if !seenCorruption[m] {
			seenCorruption[m] = true
			entities.CorruptionIndicators = append(entities.CorruptionIndicators, m)
		}
	}

	return entities
}

// parseAmount converts a matched MoneyAmount string ("P5 billion",
// "₱500 million", "50,000 pesos") into a peso count.
func parseAmount(s string) *int64 {
	parts := amountNumberPattern.FindStringSubmatch(s)
	if parts == nil {
		return nil
	}

	numStr := strings.ReplaceAll(parts[1], ",", "")
	value, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return nil
	}

	multiplier := 1.0
	switch strings.ToLower(parts[2]) {
	case "trillion":
		multiplier = 1e12
	case "billion", "b":
		multiplier = 1e9
	case "million", "m":
		multiplier = 1e6
	case "thousand", "k":
		multiplier = 1e3
	}

	total := int64(value * multiplier)
	return &total
}

var amountNumberPattern = regexp.MustCompile(`(?i)([\d,]+(?:\.\d+)?)\s?(billion|million|thousand|trillion|m|b|k)?`)
