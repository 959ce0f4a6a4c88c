package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/office671/nawader/internal/domain/assistant/models"
)

type capturedRequest struct {
	Path string
	Key  string
	Body map[string]any
}

func newTestServer(t *testing.T, status int, response string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		captured.Key = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.Body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T, srv *httptest.Server) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), "test-key", Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)
	return svc
}

const okResponse = `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello "},{"text":"there"}]}}]}`

func TestGenerateSendsInstructionAndPayload(t *testing.T) {
	var captured capturedRequest
	svc := newTestService(t, newTestServer(t, http.StatusOK, okResponse, &captured))

	req := models.NewCompiledRequest("summarize this", &models.EncodedPayload{MIMEType: "image/png", Data: "aGVsbG8="})
	text, err := svc.Generate(context.Background(), req, models.DefaultGenerationConfig("gemini-3-pro-preview"))

	require.NoError(t, err)
	assert.Equal(t, "Hello there", text)
	assert.True(t, strings.HasSuffix(captured.Path, "models/gemini-3-pro-preview:generateContent"), captured.Path)
	assert.Equal(t, "test-key", captured.Key)

	contents := captured.Body["contents"].([]any)
	require.Len(t, contents, 1)
	content := contents[0].(map[string]any)
	assert.Equal(t, "user", content["role"])

	parts := content["parts"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "summarize this", parts[0].(map[string]any)["text"])
	inline := parts[1].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "image/png", inline["mimeType"])
	assert.Equal(t, "aGVsbG8=", inline["data"])

	gen := captured.Body["generationConfig"].(map[string]any)
	assert.InDelta(t, 0.7, gen["temperature"], 0.0001)
	assert.InDelta(t, 0.95, gen["topP"], 0.0001)
	assert.InDelta(t, 64, gen["topK"], 0.0001)
	assert.InDelta(t, 2048, gen["maxOutputTokens"], 0.0001)
}

func TestGenerateTextOnly(t *testing.T) {
	var captured capturedRequest
	svc := newTestService(t, newTestServer(t, http.StatusOK, okResponse, &captured))

	_, err := svc.Generate(context.Background(), models.NewCompiledRequest("hello", nil), models.DefaultGenerationConfig("m"))
	require.NoError(t, err)

	parts := captured.Body["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 1)
	assert.Equal(t, "hello", parts[0].(map[string]any)["text"])
}

func TestGenerateEmptyCandidates(t *testing.T) {
	var captured capturedRequest
	svc := newTestService(t, newTestServer(t, http.StatusOK, `{"candidates":[]}`, &captured))

	text, err := svc.Generate(context.Background(), models.NewCompiledRequest("hello", nil), models.DefaultGenerationConfig("m"))

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGenerateNotFoundSurfacesAPIError(t *testing.T) {
	var captured capturedRequest
	body := `{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`
	svc := newTestService(t, newTestServer(t, http.StatusNotFound, body, &captured))

	_, err := svc.Generate(context.Background(), models.NewCompiledRequest("hello", nil), models.DefaultGenerationConfig("m"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Requested entity was not found.")

	var apiErr genai.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.Code)
	assert.Equal(t, "NOT_FOUND", apiErr.Status)
}

func TestNewServiceRequiresKey(t *testing.T) {
	_, err := NewService(context.Background(), "", Options{})
	assert.Error(t, err)
}
