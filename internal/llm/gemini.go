package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	genai "google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("llm: empty response from model")

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli   *genai.Client
	model string
	rl    *rpsLimiter
}

// GeminiConfig carries construction options for the Gemini client.
type GeminiConfig struct {
	APIKey string
	Model  string
	RPS    float64
	Burst  int
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{
		cli:   cli,
		model: cfg.Model,
		rl:    newRPSLimiter(cfg.RPS, cfg.Burst),
	}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }

func (g *GeminiClient) Close() error {
	if g.rl != nil {
		g.rl.Stop()
	}
	return nil
}

// GenerateJSON sends the concatenated prompt/input and requests application/json.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	full := prompt
	if input != nil {
		in, _ := json.MarshalIndent(input, "", "  ")
		full = prompt + "\n\n[INPUT JSON]\n" + string(in)
	}
	parts := []*genai.Part{{Text: full}}
	return g.generate(ctx, parts, nil)
}

// GenerateJSONParts sends a multimodal request with inline attachments and an
// optional system instruction, requesting application/json.
func (g *GeminiClient) GenerateJSONParts(ctx context.Context, system, prompt string, attachments []Attachment) (json.RawMessage, error) {
	parts := make([]*genai.Part, 0, len(attachments)+1)
	parts = append(parts, &genai.Part{Text: prompt})
	for _, att := range attachments {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: att.MIMEType, Data: att.Data},
		})
	}
	var sys *genai.Content
	if system != "" {
		sys = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	return g.generate(ctx, parts, sys)
}

func (g *GeminiClient) generate(ctx context.Context, parts []*genai.Part, system *genai.Content) (json.RawMessage, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: system,
	}
	contents := []*genai.Content{{Parts: parts}}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		// Each API call consumes a limiter token, including retries.
		if err := g.rl.Acquire(ctx); err != nil {
			return nil, err
		}
		resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			lastErr = err
		} else if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = ErrEmptyResponse
		} else {
			return json.RawMessage(resp.Candidates[0].Content.Parts[0].Text), nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("llm: %s attempt %d failed: %v", g.Name(), attempt+1, lastErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
		}
	}
	return nil, lastErr
}
