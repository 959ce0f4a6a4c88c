package recovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/office671/nawader/internal/services/credential"
	"github.com/office671/nawader/internal/services/dispatch"
	"github.com/office671/nawader/internal/services/prompt"
)

// authFailureMarker is the backend message seen when the selected credential is stale
const authFailureMarker = "Requested entity was not found."

const selectionTimeout = 10 * time.Second

type Kind string

const (
	KindRecoverableAuth Kind = "recoverable_auth"
	KindTerminal        Kind = "terminal"
	KindEmptyResponse   Kind = "empty_response"
)

// Outcome is the user-facing resolution of a dispatch failure
type Outcome struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

// Classifier maps dispatch failures to outcomes and triggers credential
// reselection when the host supports it. Host may be nil.
type Classifier struct {
	host     credential.Host
	messages prompt.Messages
}

func NewClassifier(host credential.Host, messages prompt.Messages) *Classifier {
	return &Classifier{host: host, messages: messages}
}

func (c *Classifier) Classify(ctx context.Context, err error) Outcome {
	if err == nil {
		return Outcome{}
	}

	if errors.Is(err, dispatch.ErrEmptyResponse) {
		return Outcome{Kind: KindEmptyResponse, Message: c.messages.EmptyResponse}
	}

	code := statusCode(err)

	if IsAuthFailure(err) {
		if c.host == nil {
			log.Warn().Err(err).Msg("Authentication failure with no credential host available")
			return Outcome{Kind: KindTerminal, Code: code, Message: c.messages.AuthFailed}
		}

		c.requestSelection(ctx)
		return Outcome{Kind: KindRecoverableAuth, Code: code, Message: c.messages.AuthReselect}
	}

	return Outcome{Kind: KindTerminal, Code: code, Message: c.terminalMessage(err)}
}

// IsAuthFailure matches the stale-credential signal, by message or by the structured API error
func IsAuthFailure(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusNotFound && strings.Contains(apiErr.Message, authFailureMarker) {
			return true
		}
	}
	return strings.Contains(err.Error(), authFailureMarker)
}

// requestSelection does not wait for the user to pick a credential
func (c *Classifier) requestSelection(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, selectionTimeout)
		defer cancel()
		if err := c.host.RequestCredentialSelection(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to request credential reselection")
		}
	}()
}

func (c *Classifier) terminalMessage(err error) string {
	msg := rawMessage(err)
	if msg == "" {
		msg = c.messages.UnknownError
	}
	return fmt.Sprintf(c.messages.ServiceError, msg)
}

// rawMessage strips the dispatcher's own prefix so users see the backend text
func rawMessage(err error) string {
	var dispatchErr *dispatch.Error
	if errors.As(err, &dispatchErr) {
		return dispatchErr.Message
	}
	return err.Error()
}

func statusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
