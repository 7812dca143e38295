// Package providers holds the catalog of AI backends: the fixed built-in
// set, per-provider model overrides, and user-defined custom providers.
package providers

// Built-in provider identifiers.
const (
	Claude      = "claude"
	DeepSeek    = "deepseek"
	Zhipu       = "zhipu"
	OpenRouter  = "openrouter"
	SiliconFlow = "siliconflow"
	Volcano     = "volcano"

	// Custom is the sentinel identifier reported when the configured base
	// URL matches no catalog entry.
	Custom = "custom"
)

// Provider is a built-in AI backend. The set is fixed per release; only the
// default and fast model names are user-overridable, through the catalog's
// override store.
type Provider struct {
	ID           string
	Name         string
	BaseURL      string // empty for the primary provider
	DefaultModel string
	FastModel    string // empty when the provider declares none
	Icon         string
}

// Primary reports whether this is the official provider, which uses the
// plain API key entry and no base URL.
func (p Provider) Primary() bool {
	return p.BaseURL == ""
}

// builtins returns the compiled-in provider set in display order.
func builtins() []Provider {
	return []Provider{
		{
			ID:           Claude,
			Name:         "Claude 官方",
			DefaultModel: "claude-sonnet-4",
			Icon:         "brain",
		},
		{
			ID:           DeepSeek,
			Name:         "DeepSeek",
			BaseURL:      "https://api.deepseek.com/anthropic",
			DefaultModel: "deepseek-chat",
			FastModel:    "deepseek-chat",
			Icon:         "waveform",
		},
		{
			ID:           Zhipu,
			Name:         "智谱 AI",
			BaseURL:      "https://open.bigmodel.cn/api/anthropic",
			DefaultModel: "glm-4.7",
			FastModel:    "glm-4.7-air",
			Icon:         "sparkles",
		},
		{
			ID:           OpenRouter,
			Name:         "OpenRouter",
			BaseURL:      "https://openrouter.ai/api",
			DefaultModel: "openrouter/pony-alpha",
			Icon:         "branch",
		},
		{
			ID:           SiliconFlow,
			Name:         "硅基流动",
			BaseURL:      "https://api.siliconflow.cn/v1",
			DefaultModel: "Qwen/Qwen2.5-72B-Instruct",
			Icon:         "cpu",
		},
		{
			ID:           Volcano,
			Name:         "火山引擎",
			BaseURL:      "https://ark.cn-beijing.volces.com/api/v3",
			DefaultModel: "doubao-pro-32k",
			Icon:         "flame",
		},
	}
}
