package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI speaks the OpenAI chat completions API. DeepSeek exposes the same
// wire format, so NewOpenAI with a custom name and base URL covers it too.
type OpenAI struct {
	name   string
	model  string
	client *openai.Client
}

func NewOpenAI(name, apiKey, model, baseURL string) *OpenAI {
	if name == "" {
		name = "openai"
	}
	if model == "" {
		model = "gpt-4"
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{name: name, model: model, client: openai.NewClientWithConfig(cfg)}
}

func (o *OpenAI) Name() string  { return o.name }
func (o *OpenAI) Model() string { return o.model }

func (o *OpenAI) Send(ctx context.Context, req Request) (*Response, error) {
	callCtx, cancel := callContext(ctx, req)
	defer cancel()

	model := req.Model
	if model == "" {
		model = o.model
	}
	start := time.Now()
	resp, err := o.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	})
	if err != nil {
		return nil, o.classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Provider: o.name, Kind: InvalidResponse, Err: errors.New("no choices in completion")}
	}
	return &Response{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
		Latency:    time.Since(start),
	}, nil
}

func (o *OpenAI) classify(err error) *Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden:
			return &Error{Provider: o.name, Kind: AuthError, Err: err}
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &Error{Provider: o.name, Kind: RateLimited, Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &Error{Provider: o.name, Kind: TransientNetworkError, Err: err}
		case apiErr.HTTPStatusCode == http.StatusBadRequest:
			return &Error{Provider: o.name, Kind: InvalidResponse, Err: err}
		}
		return &Error{Provider: o.name, Kind: UnknownError, Err: err}
	}
	return classifyTransport(o.name, err)
}
