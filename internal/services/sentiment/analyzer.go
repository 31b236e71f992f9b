package sentiment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	domsvc "RecoPulse/internal/domain/service"
	"RecoPulse/internal/services/scoring"
	"RecoPulse/pkg/cache"
	applogger "RecoPulse/pkg/logger"
	"RecoPulse/pkg/util"
)

// Overall label thresholds on the 0..100 score.
const (
	PositiveThreshold = 65.0
	NegativeThreshold = 35.0
)

// Settings controls the news search.
type Settings struct {
	MaxNews      int
	LookbackDays int
	CacheTTL     time.Duration
}

// Analyzer scores tickers from classified recent news.
type Analyzer struct {
	news       domrepo.NewsSource
	classifier domsvc.SentimentClassifier
	cache      cache.Service
	settings   Settings
	now        func() time.Time
	log        *applogger.Logger
}

var (
	_ domsvc.SentimentAnalyzer = (*Analyzer)(nil)
	_ domsvc.HealthChecker     = (*Analyzer)(nil)
)

func NewAnalyzer(news domrepo.NewsSource, classifier domsvc.SentimentClassifier, c cache.Service, s Settings, l *applogger.Logger) *Analyzer {
	if l == nil {
		l = applogger.Nop()
	}
	if classifier == nil {
		classifier = KeywordClassifier{}
	}
	if s.MaxNews <= 0 {
		s.MaxNews = 10
	}
	if s.LookbackDays <= 0 {
		s.LookbackDays = 7
	}
	return &Analyzer{news: news, classifier: classifier, cache: c, settings: s, now: time.Now, log: l}
}

func (a *Analyzer) Name() string { return "sentiment" }

// Analyze classifies recent articles and aggregates them into a
// confidence-weighted score. No news yields the neutral reading.
func (a *Analyzer) Analyze(ctx context.Context, ticker string) (models.SentimentResult, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	key := cache.GenerateKey("news", ticker)
	articles, err := cache.GetOrLoad(ctx, a.cache, key, a.settings.CacheTTL, func(ctx context.Context) ([]models.NewsArticle, error) {
		return a.news.Search(ctx, ticker+" stock", a.settings.MaxNews, util.DaysAgo(a.now(), a.settings.LookbackDays))
	})
	if err != nil {
		return models.SentimentResult{}, fmt.Errorf("sentiment %s: %w", ticker, err)
	}
	if len(articles) == 0 {
		return neutralResult(), nil
	}

	results := make([]models.Classification, 0, len(articles))
	for i := range articles {
		cl, err := a.classifier.Classify(ctx, articleText(articles[i]))
		if err != nil {
			if ctx.Err() != nil {
				return models.SentimentResult{}, ctx.Err()
			}
			cl = ClassifyKeywords(articleText(articles[i]))
		}
		articles[i].Sentiment = cl.Label
		articles[i].Confidence = cl.Confidence
		results = append(results, cl)
	}

	score := Aggregate(results)
	res := models.SentimentResult{
		Score:        score,
		Overall:      OverallLabel(score),
		Confidence:   averageConfidence(results),
		NewsCount:    len(articles),
		Distribution: Distribution(results),
		Articles:     articles,
	}
	a.log.Debug("sentiment analysis done",
		applogger.String("ticker", ticker),
		applogger.Int("news", len(articles)),
		applogger.Float("score", score),
	)
	return res, nil
}

// Health checks that the news source answers and the classifier labels text.
func (a *Analyzer) Health(ctx context.Context) error {
	if _, err := a.news.Search(ctx, "stock market", 1, util.DaysAgo(a.now(), 1)); err != nil {
		return err
	}
	_, err := a.classifier.Classify(ctx, "Shares rise after record profit")
	return err
}

// Aggregate maps labels to 100/50/0 and averages them weighted by confidence.
func Aggregate(results []models.Classification) float64 {
	if len(results) == 0 {
		return models.NeutralScore
	}
	var total, weight float64
	for _, r := range results {
		total += r.Label.Value() * r.Confidence
		weight += r.Confidence
	}
	if weight == 0 {
		return models.NeutralScore
	}
	return scoring.Round(total/weight, 2)
}

// OverallLabel buckets the aggregate score.
func OverallLabel(score float64) models.SentimentLabel {
	switch {
	case score >= PositiveThreshold:
		return models.SentimentPositive
	case score <= NegativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Distribution counts articles per label.
func Distribution(results []models.Classification) map[models.SentimentLabel]int {
	d := map[models.SentimentLabel]int{
		models.SentimentPositive: 0,
		models.SentimentNegative: 0,
		models.SentimentNeutral:  0,
	}
	for _, r := range results {
		d[r.Label]++
	}
	return d
}

func averageConfidence(results []models.Classification) float64 {
	if len(results) == 0 {
		return scoring.DefaultSentimentConfidence
	}
	sum := 0.0
	for _, r := range results {
		sum += r.Confidence
	}
	return scoring.Round(sum/float64(len(results)), 3)
}

func neutralResult() models.SentimentResult {
	return models.SentimentResult{
		Score:        models.NeutralScore,
		Overall:      models.SentimentNeutral,
		Confidence:   scoring.DefaultSentimentConfidence,
		Distribution: Distribution(nil),
	}
}

func articleText(a models.NewsArticle) string {
	if a.Description == "" {
		return a.Title
	}
	return a.Title + ". " + a.Description
}
