package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/office671/nawader/internal/domain/assistant/models"
	"github.com/office671/nawader/pkg/tracing"
)

// ErrEmptyResponse is returned when the backend answers without any text
var ErrEmptyResponse = errors.New("no response received from generation service")

// Error carries the raw message of a failed backend call
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return "generation failed: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Backend performs one completion call against a provider
type Backend interface {
	Name() string
	Generate(ctx context.Context, req models.CompiledRequest, cfg models.GenerationConfig) (string, error)
}

// Dispatcher sends compiled requests to a backend with the fixed generation config
type Dispatcher struct {
	backend Backend
	config  models.GenerationConfig
	tracer  trace.Tracer
}

func NewDispatcher(backend Backend, model string) *Dispatcher {
	return &Dispatcher{
		backend: backend,
		config:  models.DefaultGenerationConfig(model),
		tracer:  tracing.Tracer("dispatch"),
	}
}

func (d *Dispatcher) Config() models.GenerationConfig {
	return d.config
}

// Dispatch makes exactly one backend call. It never retries.
func (d *Dispatcher) Dispatch(ctx context.Context, req models.CompiledRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	ctx, span := d.tracer.Start(ctx, "dispatch.generate", trace.WithAttributes(
		attribute.String("gen_ai.system", d.backend.Name()),
		attribute.String("gen_ai.request.model", d.config.Model),
		attribute.Bool("nawader.has_payload", req.Payload() != nil),
	))
	defer span.End()

	text, err := d.backend.Generate(ctx, req, d.config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().
			Err(err).
			Str("backend", d.backend.Name()).
			Str("model", d.config.Model).
			Msg("Generation call failed")
		return "", &Error{Message: err.Error(), Err: err}
	}

	if strings.TrimSpace(text) == "" {
		span.SetStatus(codes.Error, ErrEmptyResponse.Error())
		log.Warn().
			Str("backend", d.backend.Name()).
			Msg("Generation call returned no text")
		return "", ErrEmptyResponse
	}

	span.SetAttributes(attribute.Int("nawader.response_chars", len(text)))
	log.Debug().
		Str("backend", d.backend.Name()).
		Int("chars", len(text)).
		Msg("Generation call succeeded")
	return text, nil
}

// String is used in logs
func (d *Dispatcher) String() string {
	return fmt.Sprintf("%s/%s", d.backend.Name(), d.config.Model)
}
