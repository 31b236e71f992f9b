package sentiment

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"RecoPulse/internal/domain/models"
	"RecoPulse/internal/services/provider"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

type fakeNews struct {
	articles []models.NewsArticle
	err      error
	query    string
}

func (f *fakeNews) Search(_ context.Context, query string, max int, since time.Time) ([]models.NewsArticle, error) {
	f.query = query
	return f.articles, f.err
}

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, string) (models.Classification, error) {
	return models.Classification{}, errors.New("model offline")
}

func TestClassifyKeywords(t *testing.T) {
	cases := []struct {
		text  string
		label models.SentimentLabel
		conf  float64
	}{
		{"YPF shares surge to record profit", models.SentimentPositive, 0.9},
		{"Bank stock plunges amid crisis, debt concerns and recession fears", models.SentimentNegative, 0.9},
		{"Company announces quarterly call", models.SentimentNeutral, 0.5},
		{"Strong growth offsets debt", models.SentimentPositive, 0.7},
		{"La acción cayó por la crisis", models.SentimentNegative, 0.8},
		{"Enterprise software update", models.SentimentNeutral, 0.5},
	}
	for _, tc := range cases {
		got := ClassifyKeywords(tc.text)
		if got.Label != tc.label || !near(got.Confidence, tc.conf) {
			t.Errorf("%q: got %+v, want %s/%v", tc.text, got, tc.label, tc.conf)
		}
	}
}

func TestAggregateAndLabels(t *testing.T) {
	res := []models.Classification{
		{Label: models.SentimentPositive, Confidence: 0.8},
		{Label: models.SentimentNegative, Confidence: 0.2},
	}
	if got := Aggregate(res); !near(got, 80) {
		t.Fatalf("aggregate = %v, want 80", got)
	}
	if Aggregate(nil) != 50 {
		t.Fatalf("empty aggregate should be neutral")
	}
	if Aggregate([]models.Classification{{Label: models.SentimentPositive}}) != 50 {
		t.Fatalf("zero-confidence aggregate should be neutral")
	}
	if OverallLabel(65) != models.SentimentPositive || OverallLabel(35) != models.SentimentNegative || OverallLabel(50) != models.SentimentNeutral {
		t.Fatalf("overall thresholds are inclusive")
	}
}

func TestAnalyzeNoNewsIsNeutral(t *testing.T) {
	a := NewAnalyzer(&fakeNews{}, nil, nil, Settings{}, nil)
	res, err := a.Analyze(context.Background(), "loma")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Score != 50 || res.Overall != models.SentimentNeutral || res.Confidence != 0.5 || res.NewsCount != 0 {
		t.Fatalf("unexpected neutral result %+v", res)
	}
}

func TestAnalyzeClassifiesArticles(t *testing.T) {
	news := &fakeNews{articles: []models.NewsArticle{
		{Title: "Shares surge on profit"},
		{Title: "Analysts upgrade outlook", Description: "Strong growth expected"},
		{Title: "Quarterly call scheduled"},
	}}
	a := NewAnalyzer(news, KeywordClassifier{}, nil, Settings{MaxNews: 10, LookbackDays: 7}, nil)
	res, err := a.Analyze(context.Background(), "GGAL")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if news.query != "GGAL stock" {
		t.Fatalf("unexpected query %q", news.query)
	}
	if res.NewsCount != 3 || res.Distribution[models.SentimentPositive] != 2 || res.Distribution[models.SentimentNeutral] != 1 {
		t.Fatalf("unexpected distribution %+v", res.Distribution)
	}
	// (100*0.8 + 100*0.9 + 50*0.5) / 2.2
	if !near(res.Score, 88.64) || res.Overall != models.SentimentPositive {
		t.Fatalf("unexpected score %v %s", res.Score, res.Overall)
	}
	if !near(res.Confidence, 0.733) {
		t.Fatalf("unexpected confidence %v", res.Confidence)
	}
	if res.Articles[0].Sentiment != models.SentimentPositive {
		t.Fatalf("articles should carry their label")
	}
}

func TestAnalyzeFallsBackWhenClassifierFails(t *testing.T) {
	news := &fakeNews{articles: []models.NewsArticle{{Title: "Stock plunges after loss"}}}
	a := NewAnalyzer(news, failingClassifier{}, nil, Settings{}, nil)
	res, err := a.Analyze(context.Background(), "TEO")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Overall != models.SentimentNegative || res.Score != 0 {
		t.Fatalf("expected keyword fallback, got %+v", res)
	}
}

func TestAnalyzeNewsError(t *testing.T) {
	a := NewAnalyzer(&fakeNews{err: ErrMissingAPIKey}, nil, nil, Settings{}, nil)
	if _, err := a.Analyze(context.Background(), "TEO"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected news error, got %v", err)
	}
}

func TestGNewsClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/search" || q.Get("q") != "YPF stock" || q.Get("token") != "tok" || q.Get("max") != "2" || q.Get("lang") != "en" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"totalArticles": 3, "articles": [
			{"title": "A", "url": "http://a", "publishedAt": "2025-06-01T10:00:00Z", "source": {"name": "Reuters"}},
			{"title": "B", "url": "http://b", "publishedAt": "bad", "source": {}},
			{"title": "C", "url": "http://c"}
		]}`))
	}))
	defer srv.Close()

	c := NewGNewsClient(provider.NewHTTPServiceBase("gnews", srv.URL, time.Second), "tok", "en")
	got, err := c.Search(context.Background(), "YPF stock", 2, time.Now().Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected results capped at 2, got %d", len(got))
	}
	if got[0].Source != "Reuters" || got[0].PublishedAt.IsZero() {
		t.Fatalf("unexpected first article %+v", got[0])
	}
	if got[1].Source != "Unknown" || !got[1].PublishedAt.IsZero() {
		t.Fatalf("unexpected second article %+v", got[1])
	}

	if _, err := NewGNewsClient(provider.NewHTTPServiceBase("gnews", srv.URL, time.Second), "", "en").
		Search(context.Background(), "x", 1, time.Now()); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestOpenAIClassifier(t *testing.T) {
	reply := `{"label": "negative", "confidence": 0.85}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":` + quote(reply) + `},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClassifier(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second}, nil)
	got, err := c.Classify(context.Background(), "Bank hit by fine")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got.Label != models.SentimentNegative || got.Confidence != 0.85 {
		t.Fatalf("unexpected classification %+v", got)
	}

	reply = `{"label": "bullish", "confidence": 3}`
	got, err = c.Classify(context.Background(), "Shares surge to record")
	if err != nil {
		t.Fatalf("fallback must not fail: %v", err)
	}
	if got.Label != models.SentimentPositive || !near(got.Confidence, 0.8) {
		t.Fatalf("invalid model answer should fall back to keywords, got %+v", got)
	}
}

func quote(s string) string {
	out := []byte{'"'}
	for _, r := range s {
		if r == '"' {
			out = append(out, '\\')
		}
		out = append(out, string(r)...)
	}
	return string(append(out, '"'))
}
