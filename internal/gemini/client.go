package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/netguru/dotty-dns/pkg/errors"
)

const DefaultModel = "gemini-1.5-flash"

// Config is used to configure the creation of the Client.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

// Client sends prompts to the Gemini generative language API.
type Client struct {
	logger    *zap.Logger
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// New creates a Gemini client. It returns errors.ErrMissingModelKey when no
// API key is configured.
func New(ctx context.Context, logger *zap.Logger, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.ErrMissingModelKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		logger.Error("Failed to create Gemini client", zap.Error(err))
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.ResponseMIMEType = "application/json"
	if cfg.Temperature > 0 {
		model.SetTemperature(cfg.Temperature)
	}

	return &Client{
		logger:    logger,
		client:    client,
		model:     model,
		modelName: cfg.Model,
	}, nil
}

// Generate submits prompt and returns the concatenated text of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("Sending prompt to model",
		zap.String("model", c.modelName),
		zap.Int("prompt_length", len(prompt)))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		c.logger.Error("Gemini API error", zap.String("model", c.modelName), zap.Error(err))
		return "", classifyError(err)
	}

	text := responseText(resp)
	if text == "" {
		return "", errors.ModelOutput("model returned an empty response", nil)
	}

	c.logger.Debug("Model responded",
		zap.String("model", c.modelName),
		zap.Int("response_length", len(text)))
	return text, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}
