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

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type geminiRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
		Temperature     float32 `json:"temperature,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Gemini speaks the generateContent API directly over HTTP.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGemini(apiKey, model, baseURL string) *Gemini {
	if model == "" {
		model = "gemini-pro"
	}
	if baseURL == "" {
		baseURL = geminiBaseURL
	}
	return &Gemini{apiKey: apiKey, model: model, baseURL: baseURL, client: &http.Client{}}
}

func (g *Gemini) Name() string  { return "gemini" }
func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Send(ctx context.Context, req Request) (*Response, error) {
	callCtx, cancel := callContext(ctx, req)
	defer cancel()

	model := req.Model
	if model == "" {
		model = g.model
	}
	var payload geminiRequest
	payload.Contents = make([]struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	}, 1)
	payload.Contents[0].Parts = []struct {
		Text string `json:"text"`
	}{{Text: req.Prompt}}
	payload.GenerationConfig.MaxOutputTokens = req.MaxTokens
	payload.GenerationConfig.Temperature = req.Temperature

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Kind: UnknownError, Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Provider: g.Name(), Kind: UnknownError, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(g.Name(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return nil, classifyTransport(g.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(g.Name(), resp.StatusCode, string(raw))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &Error{Provider: g.Name(), Kind: InvalidResponse, Err: err}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, &Error{Provider: g.Name(), Kind: InvalidResponse, Err: errors.New("no candidates")}
	}
	return &Response{
		Text:       parsed.Candidates[0].Content.Parts[0].Text,
		TokensUsed: parsed.UsageMetadata.TotalTokenCount,
		Latency:    time.Since(start),
	}, nil
}
