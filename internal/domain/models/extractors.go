package models

import "time"

// NeutralScore is the sub-score substituted when an analysis cannot produce one.
const NeutralScore = 50.0

// TechnicalIndicators are the latest values of the computed indicators.
// A nil field means the history was too short to compute it.
type TechnicalIndicators struct {
	RSI            *float64 `json:"rsi"`
	MACD           *float64 `json:"macd"`
	MACDSignal     *float64 `json:"macd_signal"`
	MACDHistogram  *float64 `json:"macd_histogram"`
	SMA20          *float64 `json:"sma_20"`
	SMA50          *float64 `json:"sma_50"`
	SMA200         *float64 `json:"sma_200"`
	BollingerUpper *float64 `json:"bollinger_upper"`
	BollingerLower *float64 `json:"bollinger_lower"`
	VolumeSMA      *float64 `json:"volume_sma"`
}

func (ti *TechnicalIndicators) fields() []*float64 {
	return []*float64{
		ti.RSI, ti.MACD, ti.MACDSignal, ti.MACDHistogram,
		ti.SMA20, ti.SMA50, ti.SMA200,
		ti.BollingerUpper, ti.BollingerLower, ti.VolumeSMA,
	}
}

// Completeness returns the fraction of non-null indicator fields in [0,1].
// A nil receiver has no indicators at all.
func (ti *TechnicalIndicators) Completeness() float64 {
	if ti == nil {
		return 0
	}
	fs := ti.fields()
	n := 0
	for _, f := range fs {
		if f != nil {
			n++
		}
	}
	return float64(n) / float64(len(fs))
}

// Technical signal values.
const (
	SignalOversold   = "oversold_buy"
	SignalOverbought = "overbought_sell"
	SignalNeutral    = "neutral"
	SignalBullish    = "bullish"
	SignalBearish    = "bearish"
	TrendUp          = "uptrend"
	TrendDown        = "downtrend"
	TrendSideways    = "sideways"
)

// TechnicalSignals are the discrete readings derived from the indicators.
type TechnicalSignals struct {
	RSI   string `json:"rsi_signal,omitempty"`
	MACD  string `json:"macd_signal,omitempty"`
	Trend string `json:"trend,omitempty"`
}

// TechnicalResult is the output of the technical extractor.
type TechnicalResult struct {
	Score        float64              `json:"technical_score"`
	Indicators   *TechnicalIndicators `json:"indicators,omitempty"`
	Signals      *TechnicalSignals    `json:"signals,omitempty"`
	CurrentPrice *float64             `json:"current_price"`
	PriceChange  *float64             `json:"price_change"`
	Error        string               `json:"error,omitempty"`
}

// FundamentalRatios are the latest reported financial ratios.
type FundamentalRatios struct {
	PERatio         *float64 `json:"pe_ratio"`
	PBRatio         *float64 `json:"pb_ratio"`
	ROE             *float64 `json:"roe"`
	ROA             *float64 `json:"roa"`
	DebtToEquity    *float64 `json:"debt_to_equity"`
	CurrentRatio    *float64 `json:"current_ratio"`
	QuickRatio      *float64 `json:"quick_ratio"`
	GrossMargin     *float64 `json:"gross_margin"`
	OperatingMargin *float64 `json:"operating_margin"`
	NetMargin       *float64 `json:"net_margin"`
}

// CompanyProfile is the descriptive company data.
type CompanyProfile struct {
	Name      string   `json:"company_name"`
	Sector    string   `json:"sector,omitempty"`
	MarketCap *float64 `json:"market_cap"`
}

// FundamentalResult is the output of the fundamental extractor.
type FundamentalResult struct {
	Score     float64            `json:"fundamental_score"`
	Supported bool               `json:"supported"`
	Ratios    *FundamentalRatios `json:"ratios,omitempty"`
	Profile   *CompanyProfile    `json:"profile,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// SentimentLabel is a positive / negative / neutral reading.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// Value maps a label onto the 0..100 sentiment scale.
func (l SentimentLabel) Value() float64 {
	switch l {
	case SentimentPositive:
		return 100
	case SentimentNegative:
		return 0
	default:
		return 50
	}
}

// Classification is the result of classifying one text.
type Classification struct {
	Label      SentimentLabel `json:"label"`
	Confidence float64        `json:"confidence"`
}

// NewsArticle is one headline with its classification.
type NewsArticle struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url"`
	Source      string         `json:"source,omitempty"`
	PublishedAt time.Time      `json:"published_at"`
	Sentiment   SentimentLabel `json:"sentiment,omitempty"`
	Confidence  float64        `json:"confidence,omitempty"`
}

// SentimentResult is the output of the sentiment extractor.
type SentimentResult struct {
	Score        float64                `json:"sentiment_score"`
	Overall      SentimentLabel         `json:"overall_sentiment"`
	Confidence   float64                `json:"confidence"`
	NewsCount    int                    `json:"news_count"`
	Distribution map[SentimentLabel]int `json:"distribution,omitempty"`
	Articles     []NewsArticle          `json:"articles,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// MacroIndicators are the latest country-level readings.
type MacroIndicators struct {
	CER         *float64 `json:"cer"`
	USDOfficial *float64 `json:"usd_official"`
	Inflation   *float64 `json:"inflation"`
	CountryRisk *float64 `json:"country_risk"`
}

// Empty reports whether no indicator is available.
func (m MacroIndicators) Empty() bool {
	return m.CER == nil && m.USDOfficial == nil && m.Inflation == nil && m.CountryRisk == nil
}

// Macro trend values.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// Market impact values.
const (
	ImpactPositive = "positive"
	ImpactNegative = "negative"
	ImpactNeutral  = "neutral"
)

// MacroContext is computed once per run and shared by every ticker.
type MacroContext struct {
	Score          float64           `json:"macro_score"`
	Indicators     MacroIndicators   `json:"indicators"`
	Interpretation string            `json:"interpretation,omitempty"`
	Trends         map[string]string `json:"trends,omitempty"`
	MarketImpact   string            `json:"market_impact,omitempty"`
	Mock           bool              `json:"mock,omitempty"`
	Error          string            `json:"error,omitempty"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
