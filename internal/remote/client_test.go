package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeJSON(t *testing.T, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	body, err := json.Marshal(map[string]json.RawMessage{
		"code": json.RawMessage("0"),
		"data": raw,
	})
	require.NoError(t, err)
	return body
}

func TestLoginDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "secret", body["password"])

		w.Write(envelopeJSON(t, LoginResponse{
			Token:     "tok-123",
			TokenType: "Bearer",
			ExpiresIn: 3600,
			User:      User{ID: 1, Username: "alice"},
		}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	resp, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestBearerTokenAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		w.Write(envelopeJSON(t, []ProviderInfo{{Code: "deepseek", Name: "DeepSeek"}}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	c.SetTokenSource(func() string { return "tok-abc" })

	infos, err := c.Providers(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "deepseek", infos[0].Code)
}

func TestUnauthorizedFiresHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	hookFired := false
	c.SetUnauthorizedHook(func() { hookFired = true })

	_, err := c.Config(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, hookFired, "401 must invalidate the session")
}

func TestServerErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{"code": 409, "message": "username taken"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Register(context.Background(), "alice", "a@example.com", "pw")
	require.Error(t, err)

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusConflict, serverErr.Status)
	assert.Equal(t, "username taken", serverErr.Message)
}

func TestServerErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Config(context.Background())

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.Status)
}

func TestNetworkErrorWrapped(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 500*time.Millisecond)
	_, err := c.Config(context.Background())
	assert.True(t, errors.Is(err, ErrNetwork), "expected ErrNetwork, got %v", err)
}

func TestDeleteAPIKeyEscapesCode(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		assert.Equal(t, http.MethodDelete, r.Method)
		w.Write([]byte(`{"code":0}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, c.DeleteAPIKey(context.Background(), "weird/code"))
	assert.Equal(t, "/api-keys/weird%2Fcode", gotPath)
}

func TestMirrorPushesKeyThenSwitch(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.URL.Path)
		mu.Unlock()
		w.Write([]byte(`{"code":0,"data":{}}`))
	}))
	defer srv.Close()

	m := NewMirror(NewClient(srv.URL, 5*time.Second))
	assert.True(t, m.Enqueue(Task{ProviderCode: "deepseek", APIKey: "sk-test"}))
	m.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/api-keys", "/switch"}, calls)
}

func TestMirrorSkipsKeyWhenAbsent(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.URL.Path)
		mu.Unlock()
		w.Write([]byte(`{"code":0,"data":{}}`))
	}))
	defer srv.Close()

	m := NewMirror(NewClient(srv.URL, 5*time.Second))
	m.Enqueue(Task{ProviderCode: "zhipu"})
	m.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/switch"}, calls)
}

func TestMirrorSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var log bytes.Buffer
	m := NewMirror(NewClient(srv.URL, 5*time.Second))
	m.logW = &log
	m.Enqueue(Task{ProviderCode: "deepseek", APIKey: "sk-test"})
	m.Close()

	assert.Contains(t, log.String(), "failed to mirror")
}
