package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiProvider implements the Provider interface for Google's Gemini models
// via the official SDK.
type GeminiProvider struct {
	apiKey string
	model  string
}

// GeminiConfig holds configuration for the Gemini provider
type GeminiConfig struct {
	APIKey string
	Model  string // default: gemini-2.5-flash
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	return &GeminiProvider{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	defer client.Close()

	model := req.Model
	if model == "" {
		model = p.model
	}

	m := client.GenerativeModel(model)
	// Replies are consumed as JSON, so ask for JSON directly.
	m.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
	}
	if req.Temperature > 0 {
		m.GenerationConfig.Temperature = ptrFloat32(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		m.GenerationConfig.MaxOutputTokens = ptrInt32(int32(req.MaxTokens))
	}
	if len(req.StopSequences) > 0 {
		m.GenerationConfig.StopSequences = req.StopSequences
	}
	if req.System != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		// Surface the HTTP status in the same form the other providers use so
		// retry classification treats all providers alike.
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("API error (status %d): %s", apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("generate content: %w", err)
	}

	content := extractText(resp)
	if content == "" {
		return nil, fmt.Errorf("empty response")
	}

	out := &Response{
		Content:      content,
		FinishReason: "stop",
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var content string
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				content += string(t)
			}
		}
		break
	}
	return content
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
