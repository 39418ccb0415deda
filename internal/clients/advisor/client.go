// Package advisor provides a Gemini-backed recommendation generator: it maps
// a quiz risk profile to a ranked list of stock suggestions.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/interfaces"
	"github.com/finsightapp/finsight/internal/models"
)

const (
	DefaultModel           = "gemini-2.0-flash"
	DefaultRecommendations = 5
)

// Client implements the AdvisorClient interface
type Client struct {
	client *genai.Client
	model  string
	count  int
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithCount sets how many recommendations to request
func WithCount(count int) ClientOption {
	return func(c *Client) {
		c.count = count
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new advisor client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		count:  DefaultRecommendations,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateRecommendations maps a quiz profile to a ranked suggestion list.
// Failures surface as ErrUpstreamUnavailable; the quiz flow retries on the
// next submission rather than caching an empty result.
func (c *Client) GenerateRecommendations(ctx context.Context, profile *models.RiskProfile) ([]models.Recommendation, error) {
	prompt := buildRecommendationPrompt(profile, c.count)

	c.logger.Debug().Str("model", c.model).Str("risk", profile.RiskTolerance).Msg("Generating recommendations")

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}

	text, err := extractTextFromResponse(result)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}

	var recs []models.Recommendation
	if err := json.Unmarshal([]byte(text), &recs); err != nil {
		return nil, fmt.Errorf("%w: malformed recommendation payload: %v", models.ErrUpstreamUnavailable, err)
	}

	// Normalize symbols and drop entries the model left incomplete.
	out := recs[:0]
	for _, rec := range recs {
		rec.Symbol = models.NormalizeSymbol(rec.Symbol)
		if rec.Symbol == "" || rec.Name == "" {
			continue
		}
		out = append(out, rec)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable recommendations generated", models.ErrUpstreamUnavailable)
	}

	return out, nil
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// buildRecommendationPrompt creates the quiz-to-suggestions prompt.
func buildRecommendationPrompt(profile *models.RiskProfile, count int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are an investment assistant for a beginner-friendly stock tracking app.
Suggest exactly %d US-listed stocks or ETFs for the investor profile below.

Profile:
- Risk tolerance: %s
- Investment horizon: %d years
- Monthly budget: $%.0f
`, count, profile.RiskTolerance, profile.HorizonYears, profile.MonthlyBudget)

	if len(profile.Interests) > 0 {
		fmt.Fprintf(&sb, "- Interests: %s\n", strings.Join(profile.Interests, ", "))
	}

	sb.WriteString(`
Respond with a JSON array only, ordered from best fit to worst. Each element:
{"symbol": "TICKER", "name": "Company Name", "price": 0.0, "description": "one sentence about the company", "reason": "one sentence on why it fits this profile"}
Use a recent approximate price. No prose outside the JSON.`)

	return sb.String()
}

// Ensure Client implements AdvisorClient
var _ interfaces.AdvisorClient = (*Client)(nil)
