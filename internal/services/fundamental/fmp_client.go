package fundamental

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	"RecoPulse/internal/services/provider"
)

// ErrNoData is returned when FMP answers with an empty list.
var ErrNoData = errors.New("no fundamental data")

// ErrMissingAPIKey is returned when no FMP key is configured.
var ErrMissingAPIKey = errors.New("fmp api key not configured")

type fmpRatios struct {
	PriceEarningsRatio    *float64 `json:"priceEarningsRatio"`
	PriceToBookRatio      *float64 `json:"priceToBookRatio"`
	ReturnOnEquity        *float64 `json:"returnOnEquity"`
	ReturnOnAssets        *float64 `json:"returnOnAssets"`
	DebtEquityRatio       *float64 `json:"debtEquityRatio"`
	CurrentRatio          *float64 `json:"currentRatio"`
	QuickRatio            *float64 `json:"quickRatio"`
	GrossProfitMargin     *float64 `json:"grossProfitMargin"`
	OperatingProfitMargin *float64 `json:"operatingProfitMargin"`
	NetProfitMargin       *float64 `json:"netProfitMargin"`
}

type fmpProfile struct {
	CompanyName string   `json:"companyName"`
	Sector      string   `json:"sector"`
	MktCap      *float64 `json:"mktCap"`
}

// FMPClient reads ratios and profiles from Financial Modeling Prep.
type FMPClient struct {
	base   *provider.HTTPServiceBase
	apiKey string
}

var _ domrepo.FundamentalsSource = (*FMPClient)(nil)

func NewFMPClient(base *provider.HTTPServiceBase, apiKey string) *FMPClient {
	return &FMPClient{base: base, apiKey: apiKey}
}

func (c *FMPClient) query() map[string][]string {
	return map[string][]string{"apikey": {c.apiKey}}
}

// Ratios returns the most recent reported ratios for ticker.
func (c *FMPClient) Ratios(ctx context.Context, ticker string) (*models.FundamentalRatios, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	var rows []fmpRatios
	if err := c.base.GetJSON(ctx, "/ratios/"+url.PathEscape(ticker), c.query(), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ratios %s: %w", ticker, ErrNoData)
	}
	r := rows[0]
	return &models.FundamentalRatios{
		PERatio:         r.PriceEarningsRatio,
		PBRatio:         r.PriceToBookRatio,
		ROE:             r.ReturnOnEquity,
		ROA:             r.ReturnOnAssets,
		DebtToEquity:    r.DebtEquityRatio,
		CurrentRatio:    r.CurrentRatio,
		QuickRatio:      r.QuickRatio,
		GrossMargin:     r.GrossProfitMargin,
		OperatingMargin: r.OperatingProfitMargin,
		NetMargin:       r.NetProfitMargin,
	}, nil
}

// Profile returns company name, sector and market cap for ticker.
func (c *FMPClient) Profile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	var rows []fmpProfile
	if err := c.base.GetJSON(ctx, "/profile/"+url.PathEscape(ticker), c.query(), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile %s: %w", ticker, ErrNoData)
	}
	p := rows[0]
	return &models.CompanyProfile{Name: p.CompanyName, Sector: p.Sector, MarketCap: p.MktCap}, nil
}
