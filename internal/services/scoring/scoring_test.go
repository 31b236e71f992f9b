package scoring

import (
	"math"
	"strings"
	"testing"

	"RecoPulse/internal/domain/models"
)

func defaultWeights(t *testing.T) models.Weights {
	t.Helper()
	w, err := models.NewWeights(0.5, 0.3, 0.1, 0.1)
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	return w
}

func defaultThresholds(t *testing.T) models.Thresholds {
	t.Helper()
	th, err := models.NewThresholds(70, 40)
	if err != nil {
		t.Fatalf("thresholds: %v", err)
	}
	return th
}

func TestFuseAndClassifyBuy(t *testing.T) {
	w := defaultWeights(t)
	total := Fuse(w, models.SubScores{Technical: 80, Fundamental: 60, Macro: 50, Sentiment: 70})
	if math.Abs(total-70) > 1e-9 {
		t.Fatalf("expected total 70, got %v", total)
	}
	action := Classify(total, defaultThresholds(t))
	if action != models.ActionBuy {
		t.Fatalf("expected BUY, got %s", action)
	}
	if ColorFor(action) != models.ColorGreen {
		t.Fatalf("expected green for BUY")
	}
}

func TestFuseStaysInRange(t *testing.T) {
	w := defaultWeights(t)
	for _, s := range []models.SubScores{
		{},
		{Technical: 100, Fundamental: 100, Macro: 100, Sentiment: 100},
		{Technical: 0, Fundamental: 100, Macro: 0, Sentiment: 100},
	} {
		got := Fuse(w, s)
		if got < 0 || got > 100 {
			t.Fatalf("fused score %v out of range for %+v", got, s)
		}
	}
}

func TestWeightsValidation(t *testing.T) {
	if _, err := models.NewWeights(0.5, 0.3, 0.1, 0.3); err == nil {
		t.Fatalf("expected error for weights summing to 1.2")
	}
	if _, err := models.NewWeights(0.5, 0.3, 0.1, 0.105); err != nil {
		t.Fatalf("sum within tolerance rejected: %v", err)
	}
	if _, err := models.NewWeights(-0.1, 0.6, 0.3, 0.2); err == nil {
		t.Fatalf("expected error for negative weight")
	}
}

func TestClassifyBoundaries(t *testing.T) {
	th := defaultThresholds(t)
	cases := []struct {
		total float64
		want  models.Action
		color models.Color
	}{
		{100, models.ActionBuy, models.ColorGreen},
		{70, models.ActionBuy, models.ColorGreen},
		{69.99, models.ActionHold, models.ColorYellow},
		{40, models.ActionHold, models.ColorYellow},
		{39.99, models.ActionSell, models.ColorRed},
		{0, models.ActionSell, models.ColorRed},
	}
	for _, c := range cases {
		got := Classify(c.total, th)
		if got != c.want {
			t.Errorf("Classify(%v) = %s, want %s", c.total, got, c.want)
		}
		if ColorFor(got) != c.color {
			t.Errorf("ColorFor(%s) = %s, want %s", got, ColorFor(got), c.color)
		}
	}
}

func TestThresholdsValidation(t *testing.T) {
	if _, err := models.NewThresholds(40, 70); err == nil {
		t.Fatalf("expected error when hold >= buy")
	}
	if _, err := models.NewThresholds(120, 40); err == nil {
		t.Fatalf("expected error when buy > 100")
	}
}

func TestEstimateConfidence(t *testing.T) {
	cases := []struct {
		name string
		in   ConfidenceInputs
		want float64
	}{
		{"complete", ConfidenceInputs{IndicatorCompleteness: 1, FundamentalCovered: true, SentimentConfidence: 1}, 81.5},
		{"partial", ConfidenceInputs{IndicatorCompleteness: 0.9, FundamentalCovered: true, SentimentConfidence: 0.5}, 72.5},
		{"uncovered", ConfidenceInputs{IndicatorCompleteness: 1, SentimentConfidence: 0.5}, 67.5},
		{"error penalty", ConfidenceInputs{IndicatorCompleteness: 1, FundamentalCovered: true, SentimentConfidence: 1, HadError: true}, 65.2},
		{"floor", ConfidenceInputs{HadError: true}, MinConfidence},
		{"no indicators", ConfidenceInputs{FundamentalCovered: true, SentimentConfidence: 0.5}, 36.5},
	}
	for _, c := range cases {
		got := EstimateConfidence(c.in)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
		if got < MinConfidence || got > MaxConfidence {
			t.Errorf("%s: %v outside [%v,%v]", c.name, got, MinConfidence, MaxConfidence)
		}
	}
}

func TestEstimateConfidenceErrorLowers(t *testing.T) {
	in := ConfidenceInputs{IndicatorCompleteness: 0.7, FundamentalCovered: true, SentimentConfidence: 0.8}
	clean := EstimateConfidence(in)
	in.HadError = true
	if flagged := EstimateConfidence(in); flagged >= clean {
		t.Fatalf("error flag should lower confidence: clean=%v flagged=%v", clean, flagged)
	}
}

func TestAssessRisk(t *testing.T) {
	cases := []struct {
		total, sentiment, macro float64
		want                    models.RiskLevel
	}{
		{75, 65, 65, models.RiskLow},
		{35, 80, 80, models.RiskHigh},
		{55, 25, 60, models.RiskHigh},
		{55, 60, 29.9, models.RiskHigh},
		{55, 50, 50, models.RiskMedium},
		{70, 60, 60, models.RiskLow},
		{70, 59.9, 60, models.RiskMedium},
	}
	for _, c := range cases {
		if got := AssessRisk(c.total, c.sentiment, c.macro); got != c.want {
			t.Errorf("AssessRisk(%v,%v,%v) = %s, want %s", c.total, c.sentiment, c.macro, got, c.want)
		}
	}
}

func TestTargetPrice(t *testing.T) {
	price := 100.0
	got := TargetPrice(&price, 65)
	if got == nil || *got != 105 {
		t.Fatalf("expected 105, got %v", got)
	}
	if TargetPrice(nil, 90) != nil {
		t.Fatalf("expected nil target without a price")
	}

	ladder := []struct {
		total float64
		want  float64
	}{
		{80, 115}, {79.99, 110}, {70, 110}, {60, 105}, {59.99, 100}, {40, 100}, {30, 95}, {29.99, 90}, {0, 90},
	}
	for _, l := range ladder {
		if v := TargetPrice(&price, l.total); v == nil || *v != l.want {
			t.Errorf("TargetPrice(100, %v) = %v, want %v", l.total, v, l.want)
		}
	}

	odd := 33.33
	if v := TargetPrice(&odd, 85); v == nil || *v != 38.33 {
		t.Fatalf("expected 38.33, got %v", v)
	}
}

func TestSummary(t *testing.T) {
	s := Summary(models.ActionBuy, &models.TechnicalSignals{RSI: models.SignalOversold, Trend: models.TrendUp}, true, 72.5)
	if s != "Recommended for purchase (RSI oversold) with fundamental analysis - Score: 72.5/100" {
		t.Fatalf("unexpected summary %q", s)
	}
	s = Summary(models.ActionSell, nil, false, 20)
	if !strings.HasPrefix(s, "Consider selling (limited fundamental analysis)") {
		t.Fatalf("unexpected summary %q", s)
	}
	if NeutralSummary("YPF") != "Error analyzing YPF - neutral recommendation" {
		t.Fatalf("unexpected neutral summary")
	}
}

func TestClampScore(t *testing.T) {
	if v, _ := ClampScore(130); v != 100 {
		t.Fatalf("expected 100, got %v", v)
	}
	if v, _ := ClampScore(-3); v != 0 {
		t.Fatalf("expected 0, got %v", v)
	}
	if _, err := ClampScore(math.NaN()); err == nil {
		t.Fatalf("expected NaN rejection")
	}
}
