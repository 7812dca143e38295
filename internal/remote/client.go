// Package remote consumes the account service's REST interface. All
// responses arrive in a {code, message, data} envelope; a 401 anywhere
// invalidates the local session through the unauthorized hook.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrUnauthorized indicates a 401 from the remote service.
	ErrUnauthorized = errors.New("unauthorized, please log in again")
	// ErrNetwork indicates a transport-level failure.
	ErrNetwork = errors.New("network error")
)

// ServerError is a non-401 error response from the remote service.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// envelope is the wire format wrapping every response body.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the account service. Requests carry their own fixed
// timeout, independent of the CLI timeout value in the settings file.
type Client struct {
	baseURL string
	http    *http.Client

	// token supplies the Bearer token per request; nil means anonymous.
	token func() string
	// onUnauthorized runs once per 401 so the caller can clear its session.
	onUnauthorized func()
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetTokenSource installs the per-request token supplier.
func (c *Client) SetTokenSource(token func() string) {
	c.token = token
}

// SetUnauthorizedHook installs the 401 callback.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return &ServerError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &ServerError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// User is the remote account profile.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Nickname string `json:"nickname,omitempty"`
	Status   string `json:"status,omitempty"`
}

// LoginResponse is the payload of a successful login or registration.
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
	User      User   `json:"user"`
}

// ProviderInfo describes a provider configured on the remote account.
type ProviderInfo struct {
	ID             int64  `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	BaseURL        string `json:"base_url"`
	ModelName      string `json:"model_name"`
	ModelNameSmall string `json:"model_name_small,omitempty"`
	IsBuiltin      bool   `json:"is_builtin"`
	IsActive       bool   `json:"is_active"`
	HasAPIKey      bool   `json:"has_api_key"`
}

// APIKeyInfo describes a stored remote API key (hint form only).
type APIKeyInfo struct {
	ID           int64  `json:"id"`
	ProviderCode string `json:"provider_code"`
	ProviderName string `json:"provider_name"`
	KeyHint      string `json:"key_hint"`
	IsValid      bool   `json:"is_valid"`
}

// ConfigInfo is the account's current switching state.
type ConfigInfo struct {
	ID              int64        `json:"id"`
	UserID          int64        `json:"user_id"`
	CurrentProvider ProviderInfo `json:"current_provider"`
	APITimeout      int64        `json:"api_timeout"`
	UpdatedAt       string       `json:"updated_at"`
}

// SwitchResult is the outcome of a remote switch command.
type SwitchResult struct {
	Success          bool          `json:"success"`
	Message          string        `json:"message"`
	PreviousProvider *ProviderInfo `json:"previous_provider,omitempty"`
	CurrentProvider  *ProviderInfo `json:"current_provider,omitempty"`
	SwitchedAt       string        `json:"switched_at"`
}

// NLResponse is the outcome of a natural-language switch request. The
// interpretation happens entirely on the remote service.
type NLResponse struct {
	AIResponse      string        `json:"ai_response"`
	SwitchTriggered bool          `json:"switch_triggered"`
	SwitchResult    *SwitchResult `json:"switch_result,omitempty"`
	SessionID       string        `json:"session_id"`
}

// Login authenticates against the remote account service.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a remote account and returns a logged-in session.
func (c *Client) Register(ctx context.Context, username, email, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Providers lists the account's providers.
func (c *Client) Providers(ctx context.Context) ([]ProviderInfo, error) {
	var out []ProviderInfo
	if err := c.do(ctx, http.MethodGet, "/providers/my", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetAPIKey stores an API key on the remote account.
func (c *Client) SetAPIKey(ctx context.Context, providerCode, apiKey string) (*APIKeyInfo, error) {
	body := map[string]string{"provider_code": providerCode, "api_key": apiKey}
	var out APIKeyInfo
	if err := c.do(ctx, http.MethodPost, "/api-keys", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// APIKeys lists the account's stored API keys.
func (c *Client) APIKeys(ctx context.Context) ([]APIKeyInfo, error) {
	var out []APIKeyInfo
	if err := c.do(ctx, http.MethodGet, "/api-keys", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAPIKey removes a stored remote API key.
func (c *Client) DeleteAPIKey(ctx context.Context, providerCode string) error {
	return c.do(ctx, http.MethodDelete, "/api-keys/"+url.PathEscape(providerCode), nil, nil)
}

// Config returns the account's current switching state.
func (c *Client) Config(ctx context.Context) (*ConfigInfo, error) {
	var out ConfigInfo
	if err := c.do(ctx, http.MethodGet, "/config", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Switch issues a remote switch command.
func (c *Client) Switch(ctx context.Context, providerCode string) (*SwitchResult, error) {
	body := map[string]string{"provider_code": providerCode}
	var out SwitchResult
	if err := c.do(ctx, http.MethodPost, "/switch", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SwitchByNL sends a natural-language switching prompt to the remote
// service for interpretation.
func (c *Client) SwitchByNL(ctx context.Context, prompt, sessionID string) (*NLResponse, error) {
	body := map[string]string{"prompt": prompt}
	if sessionID != "" {
		body["session_id"] = sessionID
	}
	var out NLResponse
	if err := c.do(ctx, http.MethodPost, "/ai/switch-by-nl", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
