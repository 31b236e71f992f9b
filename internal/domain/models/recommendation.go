package models

import (
	"fmt"
	"math"
	"time"
)

// Action is the discrete recommendation label.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionHold Action = "HOLD"
	ActionSell Action = "SELL"
)

// RiskLevel is the coarse risk tier of a recommendation.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Color is the display color bound to an Action.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// Weights are the fusion coefficients for the four sub-scores.
// Build them through NewWeights so the sum is checked once at startup.
type Weights struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
	Macro       float64 `json:"macro"`
	Sentiment   float64 `json:"sentiment"`
}

// WeightTolerance is the allowed distance of the weight sum from 1.0.
const WeightTolerance = 0.01

// NewWeights validates and returns a weight set.
func NewWeights(technical, fundamental, macro, sentiment float64) (Weights, error) {
	w := Weights{Technical: technical, Fundamental: fundamental, Macro: macro, Sentiment: sentiment}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Technical + w.Fundamental + w.Macro + w.Sentiment
}

// Validate checks every weight is in [0,1] and the sum is 1.0 within tolerance.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"technical":   w.Technical,
		"fundamental": w.Fundamental,
		"macro":       w.Macro,
		"sentiment":   w.Sentiment,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("weight %s out of range [0,1]: %v", name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > WeightTolerance {
		return fmt.Errorf("weights must sum to 1.0 (+/-%.2f), got %.4f", WeightTolerance, sum)
	}
	return nil
}

// Thresholds are the inclusive lower bounds for BUY and HOLD.
type Thresholds struct {
	BuyMin  float64 `json:"buy_min"`
	HoldMin float64 `json:"hold_min"`
}

// NewThresholds validates and returns classifier thresholds.
func NewThresholds(buyMin, holdMin float64) (Thresholds, error) {
	t := Thresholds{BuyMin: buyMin, HoldMin: holdMin}
	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}

// Validate checks 0 <= hold < buy <= 100.
func (t Thresholds) Validate() error {
	if t.HoldMin < 0 || t.BuyMin > 100 {
		return fmt.Errorf("thresholds must be within [0,100], got buy=%v hold=%v", t.BuyMin, t.HoldMin)
	}
	if t.BuyMin <= t.HoldMin {
		return fmt.Errorf("buy threshold (%v) must be greater than hold threshold (%v)", t.BuyMin, t.HoldMin)
	}
	return nil
}

// SubScores holds the four fusion inputs, each in [0,100].
type SubScores struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
	Macro       float64 `json:"macro"`
	Sentiment   float64 `json:"sentiment"`
}

// Recommendation is the per-ticker output of a daily run.
type Recommendation struct {
	Ticker           string            `json:"ticker"`
	CompanyName      string            `json:"company_name,omitempty"`
	Recommendation   Action            `json:"recommendation"`
	TotalScore       float64           `json:"total_score"`
	TechnicalScore   float64           `json:"technical_score"`
	FundamentalScore float64           `json:"fundamental_score"`
	MacroScore       float64           `json:"macro_score"`
	SentimentScore   float64           `json:"sentiment_score"`
	Confidence       float64           `json:"confidence"`
	RiskLevel        RiskLevel         `json:"risk_level"`
	TargetPrice      *float64          `json:"target_price"`
	CurrentPrice     *float64          `json:"current_price"`
	Summary          string            `json:"summary"`
	Color            Color             `json:"color"`
	Errors           map[string]string `json:"errors,omitempty"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// RecommendationRun is one complete daily generation over the universe.
type RecommendationRun struct {
	RunID           string           `json:"run_id"`
	GeneratedAt     time.Time        `json:"generated_at"`
	Duration        time.Duration    `json:"duration_ns"`
	Macro           MacroContext     `json:"macro"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ScoreBreakdown explains how a ticker's total score was built.
type ScoreBreakdown struct {
	Ticker           string     `json:"ticker"`
	TechnicalScore   float64    `json:"technical_score"`
	FundamentalScore float64    `json:"fundamental_score"`
	MacroScore       float64    `json:"macro_score"`
	SentimentScore   float64    `json:"sentiment_score"`
	TotalScore       float64    `json:"total_score"`
	Weights          Weights    `json:"weights"`
	Thresholds       Thresholds `json:"thresholds"`

	RSI           *float64       `json:"rsi"`
	MACDSignal    string         `json:"macd_signal,omitempty"`
	ROE           *float64       `json:"roe"`
	DebtToEquity  *float64       `json:"debt_to_equity"`
	CERStability  float64        `json:"cer_stability"`
	NewsSentiment SentimentLabel `json:"news_sentiment"`
	NewsCount     int            `json:"news_count"`
}

// TickerAnalysis is the detailed single-ticker view.
type TickerAnalysis struct {
	Ticker         string            `json:"ticker"`
	CompanyName    string            `json:"company_name,omitempty"`
	Sector         string            `json:"sector,omitempty"`
	MarketCap      *float64          `json:"market_cap"`
	CurrentPrice   *float64          `json:"current_price"`
	PriceChange    *float64          `json:"price_change"`
	Recommendation Recommendation    `json:"recommendation"`
	Breakdown      ScoreBreakdown    `json:"score_breakdown"`
	Technical      TechnicalResult   `json:"technical"`
	Fundamental    FundamentalResult `json:"fundamental"`
	Sentiment      SentimentResult   `json:"sentiment"`
	Macro          MacroContext      `json:"macro_context"`
	AnalyzedAt     time.Time         `json:"analyzed_at"`
}

// Candle is a daily OHLCV bar.
type Candle struct {
	Bucket time.Time `json:"t"`
	Symbol string    `json:"s"`
	Open   float64   `json:"o"`
	High   float64   `json:"h"`
	Low    float64   `json:"l"`
	Close  float64   `json:"c"`
	Volume float64   `json:"v"`
}

// SourceHealth is the probe result for one upstream.
type SourceHealth struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthReport aggregates SourceHealth entries.
type HealthReport struct {
	Status    string         `json:"status"`
	Sources   []SourceHealth `json:"sources"`
	CheckedAt time.Time      `json:"checked_at"`
}
