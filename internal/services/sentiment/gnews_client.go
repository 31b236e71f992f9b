package sentiment

import (
	"context"
	"errors"
	"strconv"
	"time"

	"RecoPulse/internal/domain/models"
	domrepo "RecoPulse/internal/domain/repository"
	"RecoPulse/internal/services/provider"
	"RecoPulse/pkg/util"
)

// ErrMissingAPIKey is returned when no GNews token is configured.
var ErrMissingAPIKey = errors.New("gnews api key not configured")

type gnewsResponse struct {
	TotalArticles int `json:"totalArticles"`
	Articles      []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// GNewsClient searches recent articles on gnews.io.
type GNewsClient struct {
	base   *provider.HTTPServiceBase
	apiKey string
	lang   string
}

var _ domrepo.NewsSource = (*GNewsClient)(nil)

func NewGNewsClient(base *provider.HTTPServiceBase, apiKey, lang string) *GNewsClient {
	return &GNewsClient{base: base, apiKey: apiKey, lang: lang}
}

func (c *GNewsClient) Search(ctx context.Context, query string, max int, since time.Time) ([]models.NewsArticle, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	q := map[string][]string{
		"q":     {query},
		"max":   {strconv.Itoa(max)},
		"from":  {since.UTC().Format(time.RFC3339)},
		"token": {c.apiKey},
	}
	if c.lang != "" {
		q["lang"] = []string{c.lang}
	}

	var resp gnewsResponse
	if err := c.base.GetJSON(ctx, "/search", q, &resp); err != nil {
		return nil, err
	}

	out := make([]models.NewsArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}
		out = append(out, models.NewsArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      source,
			PublishedAt: util.ParseTimeDefault(a.PublishedAt, time.Time{}),
		})
	}
	if len(out) > max {
		out = out[:max]
	}
	return out, nil
}
