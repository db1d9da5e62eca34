package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	anthropicAPIVersion = "2023-06-01"
	anthropicBaseURL    = "https://api.anthropic.com/v1/messages"
)

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float32           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Anthropic speaks the messages API directly over HTTP.
type Anthropic struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewAnthropic(apiKey, model, baseURL string) *Anthropic {
	if model == "" {
		model = "claude-3-sonnet-20240229"
	}
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	return &Anthropic{apiKey: apiKey, model: model, baseURL: baseURL, client: &http.Client{}}
}

func (a *Anthropic) Name() string  { return "anthropic" }
func (a *Anthropic) Model() string { return a.model }

func (a *Anthropic) Send(ctx context.Context, req Request) (*Response, error) {
	callCtx, cancel := callContext(ctx, req)
	defer cancel()

	model := req.Model
	if model == "" {
		model = a.model
	}
	temp := req.Temperature
	payload := anthropicRequest{
		Model:     model,
		MaxTokens: req.MaxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}
	if temp > 0 {
		payload.Temperature = &temp
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Provider: a.Name(), Kind: UnknownError, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, a.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Provider: a.Name(), Kind: UnknownError, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	start := time.Now()
	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(a.Name(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return nil, classifyTransport(a.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(a.Name(), resp.StatusCode, string(raw))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &Error{Provider: a.Name(), Kind: InvalidResponse, Err: err}
	}
	if parsed.Error != nil {
		return nil, &Error{Provider: a.Name(), Kind: UnknownError,
			Err: fmt.Errorf("%s: %s", parsed.Error.Type, parsed.Error.Message)}
	}
	if len(parsed.Content) == 0 {
		return nil, &Error{Provider: a.Name(), Kind: InvalidResponse, Err: errors.New("empty content")}
	}
	return &Response{
		Text:       parsed.Content[0].Text,
		TokensUsed: parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		Latency:    time.Since(start),
	}, nil
}
