package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

type ollamaRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Stream  bool   `json:"stream"`
	Options struct {
		Temperature float32 `json:"temperature,omitempty"`
		NumPredict  int     `json:"num_predict,omitempty"`
	} `json:"options"`
}

type ollamaResponse struct {
	Response  string `json:"response"`
	EvalCount int    `json:"eval_count"`
	Done      bool   `json:"done"`
}

// Ollama talks to a local ollama daemon; no credential required.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllama(baseURL, model string) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &Ollama{baseURL: baseURL, model: model, client: &http.Client{}}
}

func (o *Ollama) Name() string  { return "ollama" }
func (o *Ollama) Model() string { return o.model }

func (o *Ollama) Send(ctx context.Context, req Request) (*Response, error) {
	callCtx, cancel := callContext(ctx, req)
	defer cancel()

	model := req.Model
	if model == "" {
		model = o.model
	}
	payload := ollamaRequest{Model: model, Prompt: req.Prompt}
	payload.Options.Temperature = req.Temperature
	payload.Options.NumPredict = req.MaxTokens

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Provider: o.Name(), Kind: UnknownError, Err: err}
	}
	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Provider: o.Name(), Kind: UnknownError, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(o.Name(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return nil, classifyTransport(o.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(o.Name(), resp.StatusCode, string(raw))
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &Error{Provider: o.Name(), Kind: InvalidResponse, Err: err}
	}
	if parsed.Response == "" {
		return nil, &Error{Provider: o.Name(), Kind: InvalidResponse, Err: errors.New("empty response")}
	}
	return &Response{
		Text:       parsed.Response,
		TokensUsed: parsed.EvalCount,
		Latency:    time.Since(start),
	}, nil
}
