package models

import (
	"encoding/json"
	"testing"
)

func TestEnvValueUnmarshalString(t *testing.T) {
	var v EnvValue
	if err := json.Unmarshal([]byte(`"sk-test123"`), &v); err != nil {
		t.Fatalf("Failed to unmarshal string: %v", err)
	}
	if v.IsInt() {
		t.Error("Expected a string value")
	}
	if v.StringValue() != "sk-test123" {
		t.Errorf("Expected 'sk-test123', got '%s'", v.StringValue())
	}
}

func TestEnvValueUnmarshalInt(t *testing.T) {
	var v EnvValue
	if err := json.Unmarshal([]byte(`120000`), &v); err != nil {
		t.Fatalf("Failed to unmarshal int: %v", err)
	}
	if !v.IsInt() {
		t.Error("Expected an integer value")
	}
	i, ok := v.IntValue()
	if !ok || i != 120000 {
		t.Errorf("Expected 120000, got %d (ok=%v)", i, ok)
	}
	if v.StringValue() != "120000" {
		t.Errorf("Expected '120000', got '%s'", v.StringValue())
	}
}

func TestEnvValueUnmarshalRejects(t *testing.T) {
	cases := []string{
		`1.5`,
		`true`,
		`null`,
		`[1]`,
		`{"a":1}`,
		``,
	}
	for _, in := range cases {
		var v EnvValue
		if err := json.Unmarshal([]byte(in), &v); err == nil {
			t.Errorf("Expected error for input %q", in)
		}
	}
}

func TestEnvValueMarshalRoundTrip(t *testing.T) {
	for _, v := range []EnvValue{StringEnv("hello"), StringEnv(""), IntEnv(0), IntEnv(-7)} {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("Failed to marshal %v: %v", v, err)
		}
		var back EnvValue
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Failed to unmarshal %s: %v", data, err)
		}
		if back != v {
			t.Errorf("Round trip changed value: %v -> %s -> %v", v, data, back)
		}
	}
}

func TestEnvValueIntValueFromString(t *testing.T) {
	if i, ok := StringEnv("42").IntValue(); !ok || i != 42 {
		t.Errorf("Expected 42, got %d (ok=%v)", i, ok)
	}
	if _, ok := StringEnv("not-a-number").IntValue(); ok {
		t.Error("Expected parse failure for non-numeric string")
	}
}

func TestConfigSetStringEmptyDeletes(t *testing.T) {
	c := New()
	c.SetString(EnvModel, "deepseek-chat")
	if _, ok := c.GetString(EnvModel); !ok {
		t.Fatal("Expected model to be set")
	}

	c.SetString(EnvModel, "")
	if _, ok := c.GetString(EnvModel); ok {
		t.Error("Expected empty value to delete the entry")
	}
}

func TestConfigDefaults(t *testing.T) {
	c := New()
	if c.CurrentModel() != DefaultModel {
		t.Errorf("Expected default model '%s', got '%s'", DefaultModel, c.CurrentModel())
	}
	if c.Timeout() != DefaultTimeoutMS {
		t.Errorf("Expected default timeout %d, got %d", DefaultTimeoutMS, c.Timeout())
	}
	if c.BaseURL() != "" {
		t.Errorf("Expected empty base URL, got '%s'", c.BaseURL())
	}
}

func TestConfigAPITokenFallback(t *testing.T) {
	c := New()
	if _, ok := c.APIToken(); ok {
		t.Error("Expected no token on empty config")
	}

	c.SetString(EnvAPIKey, "sk-api")
	tok, ok := c.APIToken()
	if !ok || tok != "sk-api" {
		t.Errorf("Expected API key fallback 'sk-api', got '%s' (ok=%v)", tok, ok)
	}

	c.SetString(EnvAuthToken, "sk-auth")
	tok, ok = c.APIToken()
	if !ok || tok != "sk-auth" {
		t.Errorf("Expected auth token to win, got '%s' (ok=%v)", tok, ok)
	}
}

func TestConfigCloneIsDeep(t *testing.T) {
	c := New()
	c.SetString(EnvModel, "glm-4.7")
	clone := c.Clone()
	clone.SetString(EnvModel, "glm-4.7-air")

	if got := c.CurrentModel(); got != "glm-4.7" {
		t.Errorf("Clone mutation leaked into original: %s", got)
	}
	if c.Equal(clone) {
		t.Error("Expected configs to differ after clone mutation")
	}
}
