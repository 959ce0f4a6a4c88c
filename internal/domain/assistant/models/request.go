package models

import "errors"

var ErrMultiplePayloads = errors.New("compiled request carries more than one inline payload")

type PartKind string

const (
	PartKindText       PartKind = "text"
	PartKindInlineData PartKind = "inline_data"
)

// Part is one element of a compiled request: instruction text or an encoded payload
type Part struct {
	Kind    PartKind        `json:"kind"`
	Text    string          `json:"text,omitempty"`
	Payload *EncodedPayload `json:"payload,omitempty"`
}

func TextPart(text string) Part {
	return Part{Kind: PartKindText, Text: text}
}

func PayloadPart(p EncodedPayload) Part {
	return Part{Kind: PartKindInlineData, Payload: &p}
}

// CompiledRequest is the ordered body sent to the completion service
type CompiledRequest struct {
	Parts []Part `json:"parts"`
}

// NewCompiledRequest assembles [instruction] or [instruction, payload]
func NewCompiledRequest(instruction string, payload *EncodedPayload) CompiledRequest {
	parts := []Part{TextPart(instruction)}
	if payload != nil {
		parts = append(parts, PayloadPart(*payload))
	}
	return CompiledRequest{Parts: parts}
}

// Instruction returns the concatenated text parts
func (r CompiledRequest) Instruction() string {
	var text string
	for _, p := range r.Parts {
		if p.Kind == PartKindText {
			text += p.Text
		}
	}
	return text
}

// Payload returns the inline payload, if any
func (r CompiledRequest) Payload() *EncodedPayload {
	for _, p := range r.Parts {
		if p.Kind == PartKindInlineData {
			return p.Payload
		}
	}
	return nil
}

// Validate enforces the at-most-one-payload invariant
func (r CompiledRequest) Validate() error {
	count := 0
	for _, p := range r.Parts {
		if p.Kind == PartKindInlineData {
			count++
		}
	}
	if count > 1 {
		return ErrMultiplePayloads
	}
	return nil
}

// GenerationConfig is the fixed sampling configuration for every dispatch
type GenerationConfig struct {
	Model           string  `json:"model"`
	Temperature     float32 `json:"temperature"`
	TopP            float32 `json:"top_p"`
	TopK            int32   `json:"top_k"`
	MaxOutputTokens int32   `json:"max_output_tokens"`
}

// DefaultGenerationConfig returns the fixed parameters for model
func DefaultGenerationConfig(model string) GenerationConfig {
	return GenerationConfig{
		Model:           model,
		Temperature:     0.7,
		TopP:            0.95,
		TopK:            64,
		MaxOutputTokens: 2048,
	}
}
