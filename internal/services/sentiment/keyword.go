package sentiment

import (
	"context"
	"strings"
	"unicode"

	"RecoPulse/internal/domain/models"
	domsvc "RecoPulse/internal/domain/service"
)

var positiveWords = toSet(
	// en
	"surge", "surges", "rise", "rises", "rising", "gain", "gains", "profit", "profits",
	"growth", "record", "beat", "beats", "upgrade", "upgraded", "strong", "rally",
	"bullish", "outperform", "recovery", "positive", "success", "opportunity",
	// es
	"subió", "sube", "aumentó", "ganancia", "beneficio", "crecimiento", "positivo",
	"bueno", "excelente", "récord", "éxito", "rentable", "inversión", "oportunidad",
	"alza", "recuperación",
)

var negativeWords = toSet(
	// en
	"fall", "falls", "drop", "drops", "loss", "losses", "crisis", "decline", "declines",
	"risk", "concern", "concerns", "downgrade", "downgraded", "weak", "recession",
	"deficit", "debt", "bearish", "plunge", "plunges", "uncertainty", "negative", "lawsuit",
	// es
	"bajó", "baja", "cayó", "pérdida", "problema", "negativo", "malo", "declive",
	"riesgo", "preocupación", "caída", "recesión", "déficit", "deuda", "conflicto",
	"incertidumbre",
)

// KeywordClassifier labels text by counting distinct positive and negative
// keywords. It needs no network and is the fallback for model classifiers.
type KeywordClassifier struct{}

var _ domsvc.SentimentClassifier = KeywordClassifier{}

func (KeywordClassifier) Classify(_ context.Context, text string) (models.Classification, error) {
	return ClassifyKeywords(text), nil
}

// ClassifyKeywords is the pure keyword rule: the majority side wins with
// confidence 0.6 plus 0.1 per extra keyword, capped at 0.9; ties are neutral at 0.5.
func ClassifyKeywords(text string) models.Classification {
	pos, neg := 0, 0
	seen := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !unicode.IsLetter(r) }) {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := positiveWords[tok]; ok {
			pos++
		}
		if _, ok := negativeWords[tok]; ok {
			neg++
		}
	}

	switch {
	case pos > neg:
		return models.Classification{Label: models.SentimentPositive, Confidence: keywordConfidence(pos - neg)}
	case neg > pos:
		return models.Classification{Label: models.SentimentNegative, Confidence: keywordConfidence(neg - pos)}
	default:
		return models.Classification{Label: models.SentimentNeutral, Confidence: 0.5}
	}
}

func keywordConfidence(diff int) float64 {
	c := 0.6 + 0.1*float64(diff)
	if c > 0.9 {
		return 0.9
	}
	return c
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
