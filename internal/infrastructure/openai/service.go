package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/office671/nawader/internal/domain/assistant/models"
)

const backendName = "openai"

// ErrUnsupportedPayload is returned for attachments chat completions cannot read
var ErrUnsupportedPayload = errors.New("attachment type not supported by the openai backend")

type Service struct {
	mu     sync.RWMutex
	client *openai.Client
}

// NewService returns nil when no key is configured, mirroring the other optional services
func NewService(key, baseURL string) *Service {
	log.Info().Msg("Initialising OpenAI service")

	if key == "" {
		log.Warn().Msg("OpenAI service not configured - OPENAI_KEY missing")
		return nil
	}

	cfg := openai.DefaultConfig(key)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Service{
		mu:     sync.RWMutex{},
		client: openai.NewClientWithConfig(cfg),
	}
}

func (s *Service) GetClient() *openai.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

func (s *Service) Name() string {
	return backendName
}

// Generate maps the compiled request onto one chat completion. Image payloads travel
// as data-URL image parts and text/* payloads as decoded text. Anything else fails
// with ErrUnsupportedPayload before the call is made. TopK has no equivalent here.
func (s *Service) Generate(ctx context.Context, req models.CompiledRequest, cfg models.GenerationConfig) (string, error) {
	parts, err := toParts(req)
	if err != nil {
		return "", err
	}

	resp, err := s.GetClient().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               cfg.Model,
		Temperature:         cfg.Temperature,
		TopP:                cfg.TopP,
		MaxCompletionTokens: int(cfg.MaxOutputTokens),
		Messages: []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		}},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			log.Error().
				Int("status", apiErr.HTTPStatusCode).
				Str("type", apiErr.Type).
				Msg("OpenAI API error")
		}
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func toParts(req models.CompiledRequest) ([]openai.ChatMessagePart, error) {
	parts := make([]openai.ChatMessagePart, 0, len(req.Parts))
	for _, p := range req.Parts {
		switch p.Kind {
		case models.PartKindText:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		case models.PartKindInlineData:
			if p.Payload == nil {
				continue
			}
			switch {
			case strings.HasPrefix(p.Payload.MIMEType, "image/"):
				parts = append(parts, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    "data:" + p.Payload.MIMEType + ";base64," + p.Payload.Data,
						Detail: openai.ImageURLDetailAuto,
					},
				})
			case strings.HasPrefix(p.Payload.MIMEType, "text/"):
				raw, err := base64.StdEncoding.DecodeString(p.Payload.Data)
				if err != nil {
					return nil, fmt.Errorf("decode %s attachment: %w", p.Payload.MIMEType, err)
				}
				parts = append(parts, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeText,
					Text: string(raw),
				})
			default:
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedPayload, p.Payload.MIMEType)
			}
		}
	}
	return parts, nil
}
