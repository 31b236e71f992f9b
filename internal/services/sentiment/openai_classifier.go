package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"RecoPulse/internal/domain/models"
	domsvc "RecoPulse/internal/domain/service"
	applogger "RecoPulse/pkg/logger"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You classify the sentiment of financial news about a listed company for an equity investor.
Answer with a JSON object: {"label": "positive" | "negative" | "neutral", "confidence": <number between 0 and 1>}.`

// OpenAIConfig configures the chat model classifier.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// OpenAIClassifier asks a chat model for a label and confidence. Any model
// failure falls back to the keyword rule so classification never fails.
type OpenAIClassifier struct {
	client   *openai.Client
	cfg      OpenAIConfig
	fallback KeywordClassifier
	log      *applogger.Logger
}

var _ domsvc.SentimentClassifier = (*OpenAIClassifier)(nil)

func NewOpenAIClassifier(cfg OpenAIConfig, l *applogger.Logger) *OpenAIClassifier {
	if l == nil {
		l = applogger.Nop()
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(oc),
		cfg:    cfg,
		log:    l,
	}
}

type modelVerdict struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (models.Classification, error) {
	cl, err := c.classify(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return models.Classification{}, ctx.Err()
		}
		c.log.Warn("openai classification failed, using keywords", applogger.Error(err))
		return c.fallback.Classify(ctx, text)
	}
	return cl, nil
}

func (c *OpenAIClassifier) classify(ctx context.Context, text string) (models.Classification, error) {
	apiCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
		Model:               c.cfg.Model,
		Temperature:         c.cfg.Temperature,
		MaxCompletionTokens: 60,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return models.Classification{}, err
	}
	if len(resp.Choices) == 0 {
		return models.Classification{}, fmt.Errorf("empty completion")
	}

	var v modelVerdict
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &v); err != nil {
		return models.Classification{}, fmt.Errorf("decode verdict: %w", err)
	}
	label := models.SentimentLabel(strings.ToLower(strings.TrimSpace(v.Label)))
	switch label {
	case models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral:
	default:
		return models.Classification{}, fmt.Errorf("unknown label %q", v.Label)
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return models.Classification{}, fmt.Errorf("confidence out of range: %v", v.Confidence)
	}
	return models.Classification{Label: label, Confidence: v.Confidence}, nil
}
