package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/brandlens/brandlens/internal/domain/analysis"
	"github.com/brandlens/brandlens/internal/infra/ai/prompt"
	"github.com/brandlens/brandlens/internal/logging"
)

const (
	defaultModel     = "gpt-4o"
	defaultMaxTokens = 4096
	// Low temperature: report generation favors determinism over creativity.
	defaultTemperature = 0.2
)

// chatAPI is the slice of go-openai the client uses; tests inject a fake.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	api         chatAPI
	model       string
	maxTokens   int
	temperature float32
	log         *logging.Logger
}

func NewClient(apiKey, model string, maxTokens int, temperature float32, log *logging.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	if temperature == 0 {
		temperature = defaultTemperature
	}
	return &Client{
		api:         openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		log:         log,
	}
}

// Generate sends one completion request and applies the single-shot
// completion heuristic: if the provider stopped for length and the text lacks
// the closing section, ask once to continue, concatenate, and sum usage.
// A continuation failure is logged and swallowed; the truncated text stands.
func (c *Client) Generate(ctx context.Context, promptText string) (*analysis.Result, error) {
	start := time.Now()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: promptText},
	}
	resp, err := c.complete(ctx, messages)
	if err != nil {
		return nil, c.mapErr(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &analysis.UpstreamError{Kind: analysis.ErrUnknown, Message: "empty choices in response"}
	}

	choice := resp.Choices[0]
	text := choice.Message.Content
	usage := usageOf(resp)

	if choice.FinishReason == openai.FinishReasonLength && !strings.Contains(text, prompt.ClosingMarker) {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: text},
			openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: "Please continue and complete the previous analysis from exactly where it stopped. Do not repeat earlier sections; make sure the report ends with the " + prompt.ClosingMarker + " section.",
			},
		)
		cont, err := c.complete(ctx, messages)
		if err != nil {
			c.log.Warn("continuation request failed, returning truncated analysis", "error", err)
		} else if len(cont.Choices) > 0 {
			text = text + "\n\n" + cont.Choices[0].Message.Content
			usage = usage.Add(usageOf(cont))
		}
	}

	return &analysis.Result{
		Text:     text,
		Usage:    usage,
		Duration: time.Since(start),
		Model:    c.model,
	}, nil
}

func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (openai.ChatCompletionResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	}
	c.setTokenLimit(&req, c.maxTokens)
	return c.api.CreateChatCompletion(ctx, req)
}

// setTokenLimit picks the token-limit field the model accepts. Reasoning
// models (o1/o3/o4/gpt-5*) reject max_tokens and take max_completion_tokens.
func (c *Client) setTokenLimit(req *openai.ChatCompletionRequest, limit int) {
	if strings.HasPrefix(c.model, "o1") || strings.HasPrefix(c.model, "o3") || strings.HasPrefix(c.model, "o4") || strings.HasPrefix(c.model, "gpt-5") {
		req.MaxCompletionTokens = limit
	} else {
		req.MaxTokens = limit
	}
}

// Status issues a minimal completion to confirm the provider is reachable.
// Used only by the detailed health endpoint.
func (c *Client) Status(ctx context.Context) analysis.ProviderStatus {
	start := time.Now()
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "ping"}},
	}
	c.setTokenLimit(&req, 1)
	_, err := c.api.CreateChatCompletion(ctx, req)
	st := analysis.ProviderStatus{Status: "operational", Latency: time.Since(start)}
	if err != nil {
		st.Status = "error"
		st.Message = err.Error()
	}
	return st
}

func usageOf(resp openai.ChatCompletionResponse) analysis.TokenUsage {
	return analysis.TokenUsage{
		Input:  resp.Usage.PromptTokens,
		Output: resp.Usage.CompletionTokens,
		Total:  resp.Usage.TotalTokens,
	}
}

// mapErr classifies provider failures into the upstream error taxonomy.
func (c *Client) mapErr(err error) *analysis.UpstreamError {
	status := 0
	msg := err.Error()

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatusCode
		msg = apiErr.Message
	} else if errors.As(err, &reqErr) {
		status = reqErr.HTTPStatusCode
	}

	kind := analysis.ErrUnknown
	switch {
	case status == 429:
		kind = analysis.ErrRateLimited
	case status == 401:
		kind = analysis.ErrUnauthorized
	case status == 400:
		kind = analysis.ErrBadRequest
	case status >= 500:
		kind = analysis.ErrUpstreamUnavailable
	}
	return &analysis.UpstreamError{Kind: kind, StatusCode: status, Message: msg, Err: err}
}
