package api

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

	"github.com/monisha-km/resume-agent/internal/engine"
	"github.com/monisha-km/resume-agent/internal/log"
)

// fakeResponder returns a canned answer or error and records what it saw.
type fakeResponder struct {
	answer    string
	sessionID string
	err       error

	gotMessage string
	gotHistory []engine.Message
	gotState   engine.State
}

func (f *fakeResponder) Chat(_ context.Context, message string, history []engine.Message, st engine.State) (string, engine.State, error) {
	f.gotMessage = message
	f.gotHistory = history
	f.gotState = st
	if f.err != nil {
		return "", st, f.err
	}
	if f.sessionID != "" {
		st.SessionID = f.sessionID
	}
	return f.answer, st, nil
}

func newChatServer(responder Responder) http.Handler {
	mux := http.NewServeMux()
	NewChatHandler(responder, log.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestHandleChat_Success(t *testing.T) {
	responder := &fakeResponder{answer: "I built MintLang.", sessionID: "sess-1"}
	srv := newChatServer(responder)

	body := `{"message":"Tell me about MintLang","history":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}],"session_id":"sess-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "I built MintLang.", resp.Answer)
	assert.Equal(t, "sess-1", resp.SessionID)

	assert.Equal(t, "Tell me about MintLang", responder.gotMessage)
	assert.Len(t, responder.gotHistory, 2)
	assert.Equal(t, "sess-1", responder.gotState.SessionID)
}

func TestHandleChat_EchoesMintedSession(t *testing.T) {
	responder := &fakeResponder{answer: "hi there", sessionID: "fresh-session"}
	srv := newChatServer(responder)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"hello"}`))
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fresh-session", resp.SessionID)
	assert.Empty(t, responder.gotState.SessionID, "handler must pass an empty state for a new client")
}

func TestHandleChat_InvalidJSON(t *testing.T) {
	srv := newChatServer(&fakeResponder{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleChat_MissingMessage(t *testing.T) {
	srv := newChatServer(&fakeResponder{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"session_id":"s1"}`))
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestHandleChat_BackendFailureStaysGeneric(t *testing.T) {
	responder := &fakeResponder{err: errors.New("openai: 429 insufficient_quota sk-abc123")}
	srv := newChatServer(responder)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"hello"}`))
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "insufficient_quota",
		"upstream detail must not cross the API boundary")
	assert.NotContains(t, w.Body.String(), "sk-abc123")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "upstream_error", resp.Error)
	assert.NotEmpty(t, resp.Message)
}

func TestHandleChat_MethodNotAllowed(t *testing.T) {
	srv := newChatServer(&fakeResponder{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
