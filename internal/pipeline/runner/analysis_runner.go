package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"newsdesk/internal/models"
	"newsdesk/internal/pipeline/bias"
	"newsdesk/internal/pipeline/lexicon"
	"newsdesk/internal/pipeline/sentiment"
	"newsdesk/internal/repository"
	"newsdesk/pkg/logger"
)

// Model versions stamped onto bias_analysis rows, independent of the
// lexicon version: the lexicon can be reloaded without bumping these,
// since the scoring *algorithm* hasn't changed.
const (
	sentimentModelVersion = "sentiment_v1"
	politicalModelVersion = "political_v1"
)

// AnalysisRunner computes sentiment and political-bias scores for a batch
// of articles and upserts one bias_analysis row per (article, model_type).
type AnalysisRunner struct {
	repo    *repository.ArticleRepository
	lexicon *lexicon.Store
	log     *logger.Logger
}

func NewAnalysisRunner(repo *repository.ArticleRepository, lex *lexicon.Store, log *logger.Logger) *AnalysisRunner {
	return &AnalysisRunner{repo: repo, lexicon: lex, log: log}
}

// Run analyzes the given article ids, skipping any that no longer exist.
func (a *AnalysisRunner) Run(ctx context.Context, articleIDs []int) error {
	articles, err := a.repo.GetByIDs(ctx, articleIDs)
	if err != nil {
		return fmt.Errorf("fetch articles for analysis: %w", err)
	}

	lex := a.lexicon.Current()

	for _, article := range articles {
		start := time.Now()
		sentimentResult := sentiment.Analyze(article.Title, article.Content)
		elapsed := int(time.Since(start) / time.Millisecond)

		sentimentMeta, _ := json.Marshal(map[string]int{
			"positive_hits": sentimentResult.PositiveHits,
			"negative_hits": sentimentResult.NegativeHits,
		})
		label := string(sentimentResult.Label)
		confidence := sentimentResult.ConfidenceHint

		if err := a.repo.UpsertBiasAnalysis(ctx, &models.BiasAnalysis{
			ArticleID:        article.ID,
			ModelVersion:     sentimentModelVersion,
			ModelType:        models.ModelTypeSentiment,
			SentimentScore:   &sentimentResult.Score,
			SentimentLabel:   &label,
			ConfidenceScore:  &confidence,
			ProcessingTimeMs: elapsed,
			ModelMetadata:    sentimentMeta,
		}); err != nil {
			a.log.Error("sentiment upsert failed", "article_id", article.ID, "error", err.Error())
			continue
		}

		start = time.Now()
		biasResult := bias.Score(article.Title, article.Content, lex)
		elapsed = int(time.Since(start) / time.Millisecond)

		biasMeta, _ := json.Marshal(map[string]interface{}{
			"direction":          biasResult.Direction,
			"keyword_matches":    biasResult.KeywordMatches,
			"processing_time_ms": elapsed,
			"lexicon_version":    biasResult.LexiconVersion,
			"analysis_components": map[string]interface{}{
				"keyword_score":     biasResult.KeywordScore,
				"source_pattern":    biasResult.SourcePattern,
				"language_patterns": biasResult.LanguagePatterns,
				"sentiment_context": biasResult.SentimentContext,
				"version":           politicalModelVersion,
			},
		})

		biasConfidence := biasResult.Confidence
		if err := a.repo.UpsertBiasAnalysis(ctx, &models.BiasAnalysis{
			ArticleID:          article.ID,
			ModelVersion:       politicalModelVersion,
			ModelType:          models.ModelTypePoliticalBias,
			PoliticalBiasScore: &biasResult.Score,
			ConfidenceScore:    &biasConfidence,
			ProcessingTimeMs:   elapsed,
			ModelMetadata:      biasMeta,
		}); err != nil {
			a.log.Error("bias upsert failed", "article_id", article.ID, "error", err.Error())
		}
	}

	return nil
}
