package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Environment variable keys recognized in the Claude Code settings file.
const (
	EnvBaseURL   = "ANTHROPIC_BASE_URL"
	EnvAuthToken = "ANTHROPIC_AUTH_TOKEN"
	EnvAPIKey    = "ANTHROPIC_API_KEY"
	EnvModel     = "ANTHROPIC_MODEL"
	EnvFastModel = "ANTHROPIC_SMALL_FAST_MODEL"
	EnvTimeout   = "API_TIMEOUT_MS"
)

// Defaults used when the corresponding env entry is absent.
const (
	DefaultModel     = "claude-sonnet-4"
	DefaultTimeoutMS = 120000
)

// EnvValue is a single value in the env map. The settings file only ever
// holds string or integer scalars, never nested values.
type EnvValue struct {
	str   string
	num   int64
	isInt bool
}

// StringEnv wraps a string as an EnvValue.
func StringEnv(s string) EnvValue {
	return EnvValue{str: s}
}

// IntEnv wraps an integer as an EnvValue.
func IntEnv(i int64) EnvValue {
	return EnvValue{num: i, isInt: true}
}

// IsInt reports whether the value was stored as an integer.
func (v EnvValue) IsInt() bool {
	return v.isInt
}

// StringValue returns the value as a string. Integers are formatted in
// decimal, matching how Claude Code reads numeric env entries.
func (v EnvValue) StringValue() string {
	if v.isInt {
		return strconv.FormatInt(v.num, 10)
	}
	return v.str
}

// IntValue returns the value as an integer. String values are parsed;
// ok is false when the string does not hold a decimal integer.
func (v EnvValue) IntValue() (int64, bool) {
	if v.isInt {
		return v.num, true
	}
	i, err := strconv.ParseInt(v.str, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// MarshalJSON emits the value as a bare JSON string or number.
func (v EnvValue) MarshalJSON() ([]byte, error) {
	if v.isInt {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON accepts a JSON string or integer and rejects everything
// else, keeping the flat-scalar invariant of the settings file.
func (v *EnvValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("env value must be a string or an integer")
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = StringEnv(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return fmt.Errorf("env value must be a string or an integer")
	}
	i, err := num.Int64()
	if err != nil {
		return fmt.Errorf("env value %s is not an integer", num)
	}
	*v = IntEnv(i)
	return nil
}

// Config is the typed view of the Claude Code settings file: a flat
// mapping from environment variable names to scalar values.
type Config struct {
	Env map[string]EnvValue `json:"env"`
}

// New returns a Config with an empty env mapping.
func New() *Config {
	return &Config{Env: map[string]EnvValue{}}
}

// GetString returns the entry as a string.
func (c *Config) GetString(key string) (string, bool) {
	v, ok := c.Env[key]
	if !ok {
		return "", false
	}
	return v.StringValue(), true
}

// GetInt returns the entry as an integer.
func (c *Config) GetInt(key string) (int64, bool) {
	v, ok := c.Env[key]
	if !ok {
		return 0, false
	}
	return v.IntValue()
}

// SetString sets a string entry. An empty value removes the entry.
func (c *Config) SetString(key, value string) {
	if value == "" {
		delete(c.Env, key)
		return
	}
	c.Env[key] = StringEnv(value)
}

// SetInt sets an integer entry.
func (c *Config) SetInt(key string, value int64) {
	c.Env[key] = IntEnv(value)
}

// Remove deletes an entry.
func (c *Config) Remove(key string) {
	delete(c.Env, key)
}

// BaseURL returns the configured base URL, empty when unset.
func (c *Config) BaseURL() string {
	s, _ := c.GetString(EnvBaseURL)
	return s
}

// CurrentModel returns the configured model name or the default.
func (c *Config) CurrentModel() string {
	if s, ok := c.GetString(EnvModel); ok {
		return s
	}
	return DefaultModel
}

// APIToken returns the auth token, falling back to the plain API key.
func (c *Config) APIToken() (string, bool) {
	if s, ok := c.GetString(EnvAuthToken); ok {
		return s, true
	}
	return c.GetString(EnvAPIKey)
}

// Timeout returns the configured request timeout in milliseconds or the
// 120000ms default.
func (c *Config) Timeout() int64 {
	if i, ok := c.GetInt(EnvTimeout); ok {
		return i
	}
	return DefaultTimeoutMS
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := New()
	for k, v := range c.Env {
		out.Env[k] = v
	}
	return out
}

// Equal reports whether two configs hold the same env mapping.
func (c *Config) Equal(other *Config) bool {
	if len(c.Env) != len(other.Env) {
		return false
	}
	for k, v := range c.Env {
		ov, ok := other.Env[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}
