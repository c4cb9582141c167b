package funds

import (
	"testing"

	"newsdesk/internal/models"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		title   string
		content string
		want    bool
	}{
		{
			name:    "money plus agency is funds",
			title:   "DPWH flood control project",
			content: "The agency allocated P2.3 billion for the flood control project this year.",
			want:    true,
		},
		{
			name:    "money plus corruption term is funds",
			title:   "Ombudsman probes anomalous disbursement",
			content: "Investigators found P500 million in ghost deliveries linked to the contractor.",
			want:    true,
		},
		{
			name:    "no money amount is never funds",
			title:   "DPWH opens new bridge",
			content: "The Department of Public Works inaugurated a new bridge in the province.",
			want:    false,
		},
		{
			name:    "money without public-sector or corruption cue is not funds",
			title:   "Local bakery doubles revenue",
			content: "The small business reported P2 million in sales growth this quarter.",
			want:    false,
		},
		{
			name:    "sports prize money is vetoed even with an agency mention",
			title:   "PBA star wins tournament purse",
			content: "The boxer earned a P5 million cash prize after being honored by a government commission on audit.",
			want:    false,
		},
		{
			name:    "disaster damage estimate is vetoed",
			title:   "Typhoon damage estimated at P2 billion",
			content: "The national budget office said infrastructure damage from the typhoon reached P2 billion pesos.",
			want:    false,
		},
		{
			name:    "generic budget keyword without an explicit amount is still funds",
			title:   "DBM defends the 2025 national budget",
			content: "The budget secretary faced questions from lawmakers about the allocation for infrastructure.",
			want:    true,
		},
		{
			name:    "disaster veto without an independent corruption cue is not funds",
			title:   "Typhoon relief fund released",
			content: "DSWD released the typhoon relief fund worth P2 billion to affected families.",
			want:    false,
		},
		{
			name:    "disaster veto is overridden by an independent corruption cue",
			title:   "Typhoon relief fund diverted",
			content: "DSWD's typhoon relief fund worth P2 billion was diverted in an alleged ghost beneficiary scheme, the ombudsman said.",
			want:    true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.title, tc.content); got != tc.want {
				t.Errorf("Classify() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExtractEntitiesMatchesFundsPositiveScenario(t *testing.T) {
	entities := ExtractEntities(
		"DPWH allocates P5 billion for flood control projects",
		"The Department of Public Works and Highways announced the allocation for infrastructure projects in Manila.",
	)
	if entities.PrimaryAgency != "DPWH" {
		t.Errorf("PrimaryAgency = %q, want DPWH", entities.PrimaryAgency)
	}
	if entities.TotalAmount == nil || *entities.TotalAmount != 5_000_000_000 {
		t.Errorf("TotalAmount = %v, want 5000000000", entities.TotalAmount)
	}
}

func TestInsightCountsOnlyFlaggedArticles(t *testing.T) {
	category := "Politics"
	articles := []*models.Article{
		{Source: "inquirer", Category: &category, Title: "DPWH project", Content: "P2 billion allocation amid graft probe", IsFunds: true},
		{Source: "gma", Title: "Weather update", Content: "Sunny skies expected", IsFunds: false},
	}

	insight := Insight(articles)
	if insight.TotalFundsArticles != 1 {
		t.Errorf("TotalFundsArticles = %d, want 1", insight.TotalFundsArticles)
	}
	if insight.TopSources["gma"] != 0 {
		t.Errorf("non-funds article leaked into TopSources: %v", insight.TopSources)
	}
	if insight.TopCategories["Politics"] != 1 {
		t.Errorf("TopCategories[Politics] = %d, want 1", insight.TopCategories["Politics"])
	}
}
