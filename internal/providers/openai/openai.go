// ABOUTME: OpenAI chat-completion client used as the production narrative generator.
// ABOUTME: Sends single-message prompts with fixed model, temperature, and token limit.

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Config holds the generation service settings. The API key is injected here
// instead of being read from the environment at construction time.
type Config struct {
	APIKey      string
	Endpoint    string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Client calls an OpenAI-compatible chat-completion endpoint.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a generator client, filling unset config fields with the
// service defaults.
func NewClient(config Config, logger *logrus.Logger) *Client {
	if config.Endpoint == "" {
		config.Endpoint = defaultEndpoint
	}
	if config.Model == "" {
		config.Model = "gpt-3.5-turbo"
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 50
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Name returns the generator name.
func (c *Client) Name() string {
	return "openai"
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type requestBody struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type responseBody struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate requests one completion for the prompt. Callers are expected to
// absorb errors; this method just reports them.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body := requestBody{
		Model:       c.config.Model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", errors.Wrap(err, "could not encode completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", errors.Wrap(err, "could not create completion request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "completion request failed")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", errors.Errorf("completion request failed: status code %d", res.StatusCode)
	}

	var data responseBody
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return "", errors.Wrap(err, "could not decode completion response")
	}
	if len(data.Choices) == 0 {
		return "", errors.New("completion response contained no choices")
	}

	c.logger.WithField("model", c.config.Model).Debug("Generated completion")

	return data.Choices[0].Message.Content, nil
}
