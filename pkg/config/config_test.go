package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Scoring.BatchSize != 3 {
		t.Fatalf("expected batch size 3, got %d", c.Scoring.BatchSize)
	}
	if c.Scoring.Weights.Technical != 0.5 || c.Scoring.Weights.Sentiment != 0.1 {
		t.Fatalf("unexpected default weights %+v", c.Scoring.Weights)
	}
	if c.Scoring.Thresholds.Buy != 70 || c.Scoring.Thresholds.Hold != 40 {
		t.Fatalf("unexpected default thresholds %+v", c.Scoring.Thresholds)
	}
	if len(c.Scoring.Tickers) != len(DefaultUniverse) {
		t.Fatalf("expected default universe, got %v", c.Scoring.Tickers)
	}
	if c.Sources.Macro.CacheTTL != 6*time.Hour {
		t.Fatalf("expected 6h macro cache, got %v", c.Sources.Macro.CacheTTL)
	}
	if len(c.Sources.Fundamental.SupportedTickers) != len(c.Scoring.Tickers) {
		t.Fatalf("supported tickers should default to the universe")
	}
}

func TestParseRejectsBadWeights(t *testing.T) {
	y := `
environment: test
scoring:
  weights:
    technical: 0.6
    fundamental: 0.3
    macro: 0.1
    sentiment: 0.1
`
	_, err := Parse([]byte(y))
	if err == nil || !strings.Contains(err.Error(), "sum to 1.0") {
		t.Fatalf("expected weight sum error, got %v", err)
	}
}

func TestParseRejectsInvertedThresholds(t *testing.T) {
	y := `
environment: test
scoring:
  thresholds:
    buy: 40
    hold: 60
`
	if _, err := Parse([]byte(y)); err == nil {
		t.Fatalf("expected threshold error")
	}
}

func TestParseNormalizesTickers(t *testing.T) {
	y := `
environment: test
scoring:
  tickers: [" ypf", "GGAL", "ggal", ""]
sources:
  fundamental:
    supported_tickers: ["ypf"]
`
	c, err := Parse([]byte(y))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if strings.Join(c.Scoring.Tickers, ",") != "YPF,GGAL" {
		t.Fatalf("unexpected tickers %v", c.Scoring.Tickers)
	}
	if strings.Join(c.Sources.Fundamental.SupportedTickers, ",") != "YPF" {
		t.Fatalf("unexpected supported tickers %v", c.Sources.Fundamental.SupportedTickers)
	}
}

func TestParseRejectsUnknownProvider(t *testing.T) {
	y := `
environment: test
sources:
  technical:
    provider: bloomberg
`
	if _, err := Parse([]byte(y)); err == nil {
		t.Fatalf("expected provider validation error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("environment: test\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("FMP_API_KEY", "fmp-key")
	t.Setenv("TICKERS", "meli,glob")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Sources.Fundamental.APIKey != "fmp-key" {
		t.Fatalf("api key not overridden")
	}
	if strings.Join(c.Scoring.Tickers, ",") != "MELI,GLOB" {
		t.Fatalf("unexpected tickers %v", c.Scoring.Tickers)
	}
}

func TestWarnings(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if len(c.Warnings()) < 2 {
		t.Fatalf("expected missing key warnings, got %v", c.Warnings())
	}
}
