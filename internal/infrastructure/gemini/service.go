package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/office671/nawader/internal/domain/assistant/models"
)

const backendName = "gemini"

type Service struct {
	client *genai.Client
}

// Options are only needed to point the client somewhere other than the public endpoint
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewService(ctx context.Context, apiKey string, opts Options) (*Service, error) {
	log.Info().Msg("Initialising Gemini service")

	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Service{client: client}, nil
}

func (s *Service) Name() string {
	return backendName
}

// Generate sends the request as a single user turn: the instruction alone, or
// [instruction, inline data] when a payload is attached.
func (s *Service) Generate(ctx context.Context, req models.CompiledRequest, cfg models.GenerationConfig) (string, error) {
	contents, err := toContents(req)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Models.GenerateContent(ctx, cfg.Model, contents, toConfig(cfg))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil {
		return "", nil
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		log.Warn().
			Str("block_reason", string(resp.PromptFeedback.BlockReason)).
			Msg("Gemini blocked the prompt")
	}

	return collectText(resp), nil
}

func toContents(req models.CompiledRequest) ([]*genai.Content, error) {
	payload := req.Payload()
	if payload == nil {
		return genai.Text(req.Instruction()), nil
	}

	raw, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		return nil, fmt.Errorf("gemini: invalid payload encoding: %w", err)
	}

	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		switch p.Kind {
		case models.PartKindText:
			parts = append(parts, genai.NewPartFromText(p.Text))
		case models.PartKindInlineData:
			parts = append(parts, genai.NewPartFromBytes(raw, payload.MIMEType))
		}
	}

	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}

func toConfig(cfg models.GenerationConfig) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(cfg.Temperature),
		TopP:            genai.Ptr(cfg.TopP),
		TopK:            genai.Ptr(float32(cfg.TopK)),
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
}

// collectText joins the text parts of the first candidate, skipping thought parts
func collectText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
