package usecase

import (
	"context"
	"fmt"
	"sync"

	"RecoPulse/internal/domain/models"
	applogger "RecoPulse/pkg/logger"
)

const (
	sourceTechnical   = "technical"
	sourceFundamental = "fundamental"
	sourceSentiment   = "sentiment"
	sourceMacro       = "macro"
)

// subResults holds one ticker's extractor outputs after fallback substitution.
type subResults struct {
	technical   models.TechnicalResult
	fundamental models.FundamentalResult
	sentiment   models.SentimentResult
	errors      map[string]string
}

// collect runs the three per-ticker extractors concurrently. A failed or
// panicking extractor is replaced by its neutral result here and only here.
func (e *RecommendationEngine) collect(ctx context.Context, ticker string) subResults {
	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	spawn := func(name string, fn func() (interface{}, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					ch <- item{name, nil, fmt.Errorf("panic: %v", r)}
				}
			}()
			v, err := fn()
			ch <- item{name, v, err}
		}()
	}

	spawn(sourceTechnical, func() (interface{}, error) { return e.technical.Analyze(ctx, ticker) })
	spawn(sourceFundamental, func() (interface{}, error) { return e.fundamental.Analyze(ctx, ticker) })
	spawn(sourceSentiment, func() (interface{}, error) { return e.sentiment.Analyze(ctx, ticker) })

	go func() {
		wg.Wait()
		close(ch)
	}()

	res := subResults{
		technical:   neutralTechnical(""),
		fundamental: neutralFundamental(e.fundamental.Covers(ticker), ""),
		sentiment:   neutralSentiment(""),
		errors:      map[string]string{},
	}
	for it := range ch {
		if it.err != nil {
			res.errors[it.name] = it.err.Error()
			e.metrics.RecordSourceError(it.name)
			e.log.Warn("analysis fell back to neutral",
				applogger.String("ticker", ticker),
				applogger.String("source", it.name),
				applogger.Error(it.err),
			)
			e.applyFallback(&res, ticker, it.name, it.err.Error())
			continue
		}
		switch it.name {
		case sourceTechnical:
			res.technical = it.val.(models.TechnicalResult)
		case sourceFundamental:
			res.fundamental = it.val.(models.FundamentalResult)
		case sourceSentiment:
			res.sentiment = it.val.(models.SentimentResult)
		}
	}
	return res
}

func (e *RecommendationEngine) applyFallback(res *subResults, ticker, name, msg string) {
	switch name {
	case sourceTechnical:
		res.technical = neutralTechnical(msg)
	case sourceFundamental:
		res.fundamental = neutralFundamental(e.fundamental.Covers(ticker), msg)
	case sourceSentiment:
		res.sentiment = neutralSentiment(msg)
	}
}

func neutralTechnical(msg string) models.TechnicalResult {
	return models.TechnicalResult{Score: models.NeutralScore, Error: msg}
}

func neutralFundamental(covered bool, msg string) models.FundamentalResult {
	return models.FundamentalResult{Score: models.NeutralScore, Supported: covered, Error: msg}
}

func neutralSentiment(msg string) models.SentimentResult {
	return models.SentimentResult{
		Score:      models.NeutralScore,
		Overall:    models.SentimentNeutral,
		Confidence: 0.5,
		Error:      msg,
	}
}
