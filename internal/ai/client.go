package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/ayush/research-workspace/backend/internal/apperr"
)

// Generator turns a prompt into raw model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Gemini API. The SDK client is built on first use
// and shared by every request afterwards. Calls are never retried.
type GeminiClient struct {
	apiKey string
	model  string
	log    *zap.Logger

	once    sync.Once
	client  *genai.Client
	initErr error
}

func NewGeminiClient(apiKey, model string, log *zap.Logger) *GeminiClient {
	return &GeminiClient{apiKey: strings.TrimSpace(apiKey), model: model, log: log}
}

func (c *GeminiClient) handle() (*genai.Client, error) {
	c.once.Do(func() {
		if c.apiKey == "" {
			c.initErr = apperr.Configuration(errors.New("GEMINI_API_KEY is not set"))
			return
		}
		cl, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  c.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			c.initErr = apperr.Configuration(fmt.Errorf("create gemini client: %w", err))
			return
		}
		c.client = cl
		c.log.Info("gemini client initialised", zap.String("model", c.model))
	})
	return c.client, c.initErr
}

// Generate sends prompt to the configured model and returns its text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	cl, err := c.handle()
	if err != nil {
		return "", err
	}

	resp, err := cl.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", apperr.Upstream(upstreamStatus(err), fmt.Errorf("gemini generate: %w", err))
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", apperr.Upstream(http.StatusBadGateway, errors.New("gemini returned an empty response"))
	}
	return text, nil
}

// upstreamStatus pulls the HTTP status out of a Gemini API error, or 0.
func upstreamStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}
