package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"cswitch/config/models"
)

// Target is the resolved subject of a switch: either a built-in provider
// (with overrides applied) or a custom provider.
type Target struct {
	ID           string
	Name         string
	BaseURL      string
	DefaultModel string
	FastModel    string
	Custom       bool
}

// Primary reports whether the target is the official provider. The branch
// is chosen by "base URL empty", not by identifier, so a built-in entry
// without a declared base URL always takes the primary path.
func (t Target) Primary() bool {
	return !t.Custom && t.BaseURL == ""
}

// CredentialAccount returns the credential store account for the target:
// built-ins are keyed by display name, custom providers by generated ID.
func (t Target) CredentialAccount() string {
	if t.Custom {
		return t.ID
	}
	return t.Name
}

// Catalog combines the built-in provider set, the model override store and
// the custom provider list.
type Catalog struct {
	builtins  []Provider
	overrides *overrideStore
	custom    *customStore
	byURL     map[string]string // base URL -> built-in id
}

// NewCatalog builds a catalog with its stores rooted in dir. It fails when
// two built-in entries share a base URL, since provider identity is
// inferred by base-URL match.
func NewCatalog(dir string) (*Catalog, error) {
	c := &Catalog{
		builtins:  builtins(),
		overrides: newOverrideStore(filepath.Join(dir, "model_overrides.json")),
		custom:    newCustomStore(filepath.Join(dir, "custom_providers.json")),
		byURL:     make(map[string]string),
	}
	for _, p := range c.builtins {
		if p.BaseURL == "" {
			continue
		}
		if other, dup := c.byURL[p.BaseURL]; dup {
			return nil, fmt.Errorf("catalog providers %s and %s share base URL %s", other, p.ID, p.BaseURL)
		}
		c.byURL[p.BaseURL] = p.ID
	}
	return c, nil
}

// Builtins returns the built-in providers with effective model names
// (override first, compiled-in default otherwise).
func (c *Catalog) Builtins() []Provider {
	out := make([]Provider, len(c.builtins))
	for i, p := range c.builtins {
		out[i] = c.applyOverride(p)
	}
	return out
}

// Get returns a built-in provider by identifier, overrides applied.
func (c *Catalog) Get(id string) (Provider, bool) {
	for _, p := range c.builtins {
		if p.ID == id {
			return c.applyOverride(p), true
		}
	}
	return Provider{}, false
}

func (c *Catalog) applyOverride(p Provider) Provider {
	ov := c.overrides.get(p.ID)
	if ov.DefaultModel != "" {
		p.DefaultModel = ov.DefaultModel
	}
	if ov.FastModel != "" {
		p.FastModel = ov.FastModel
	}
	return p
}

// HasDefaultOverride reports whether a built-in provider's default model
// is user-overridden.
func (c *Catalog) HasDefaultOverride(id string) bool {
	return c.overrides.get(id).DefaultModel != ""
}

// HasFastOverride reports whether a built-in provider's fast model is
// user-overridden.
func (c *Catalog) HasFastOverride(id string) bool {
	return c.overrides.get(id).FastModel != ""
}

// SetDefaultModel overrides a built-in provider's default model. Setting
// the compiled-in default clears the override.
func (c *Catalog) SetDefaultModel(id, model string) error {
	base, ok := c.builtin(id)
	if !ok {
		return fmt.Errorf("unknown provider: %s", id)
	}
	if model == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	return c.overrides.update(id, func(ov *modelOverride) {
		if model == base.DefaultModel {
			ov.DefaultModel = ""
		} else {
			ov.DefaultModel = model
		}
	})
}

// SetFastModel overrides a built-in provider's fast model. An empty model
// or the compiled-in default clears the override.
func (c *Catalog) SetFastModel(id, model string) error {
	base, ok := c.builtin(id)
	if !ok {
		return fmt.Errorf("unknown provider: %s", id)
	}
	return c.overrides.update(id, func(ov *modelOverride) {
		if model == "" || model == base.FastModel {
			ov.FastModel = ""
		} else {
			ov.FastModel = model
		}
	})
}

// builtin returns the compiled-in entry without overrides.
func (c *Catalog) builtin(id string) (Provider, bool) {
	for _, p := range c.builtins {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// Customs returns all custom providers in stored order.
func (c *Catalog) Customs() []CustomProvider {
	return c.custom.load()
}

// SaveCustom upserts a custom provider by ID, generating one when absent.
func (c *Catalog) SaveCustom(p *CustomProvider) error {
	return c.custom.save(p)
}

// DeleteCustom removes a custom provider.
func (c *Catalog) DeleteCustom(id string) error {
	return c.custom.delete(id)
}

// GetCustom finds a custom provider by ID or name.
func (c *Catalog) GetCustom(idOrName string) (CustomProvider, bool) {
	for _, p := range c.custom.load() {
		if p.ID == idOrName || strings.EqualFold(p.Name, idOrName) {
			return p, true
		}
	}
	return CustomProvider{}, false
}

// ProviderForBaseURL maps a base URL back to a provider identifier for
// display. Built-ins take precedence over custom entries when a custom
// provider reuses a built-in base URL.
func (c *Catalog) ProviderForBaseURL(baseURL string) (string, bool) {
	if id, ok := c.byURL[baseURL]; ok {
		return id, true
	}
	for _, p := range c.custom.load() {
		if p.BaseURL == baseURL {
			return p.ID, true
		}
	}
	return "", false
}

// Infer maps a configuration back to a provider label: no base URL means
// the primary provider, an unmatched base URL means custom.
func (c *Catalog) Infer(cfg *models.Config) string {
	baseURL := cfg.BaseURL()
	if baseURL == "" {
		return Claude
	}
	if id, ok := c.ProviderForBaseURL(baseURL); ok {
		return id
	}
	return Custom
}

// DisplayName returns the human-readable name for a provider identifier,
// covering built-ins, custom providers and the custom sentinel.
func (c *Catalog) DisplayName(id string) string {
	if p, ok := c.Get(id); ok {
		return p.Name
	}
	if p, ok := c.GetCustom(id); ok {
		return p.Name
	}
	if id == Custom {
		return "自定义"
	}
	return id
}

// Resolve finds a switch target by built-in identifier, built-in name,
// custom provider ID or custom provider name, in that order.
func (c *Catalog) Resolve(arg string) (Target, error) {
	for _, p := range c.builtins {
		if strings.EqualFold(p.ID, arg) || p.Name == arg {
			eff := c.applyOverride(p)
			return Target{
				ID:           eff.ID,
				Name:         eff.Name,
				BaseURL:      eff.BaseURL,
				DefaultModel: eff.DefaultModel,
				FastModel:    eff.FastModel,
			}, nil
		}
	}
	if p, ok := c.GetCustom(arg); ok {
		return CustomTarget(p), nil
	}
	return Target{}, fmt.Errorf("unknown provider: %s", arg)
}

// BuiltinTarget converts a built-in provider into a switch target.
func BuiltinTarget(p Provider) Target {
	return Target{
		ID:           p.ID,
		Name:         p.Name,
		BaseURL:      p.BaseURL,
		DefaultModel: p.DefaultModel,
		FastModel:    p.FastModel,
	}
}

// CustomTarget converts a custom provider into a switch target.
func CustomTarget(p CustomProvider) Target {
	return Target{
		ID:           p.ID,
		Name:         p.Name,
		BaseURL:      p.BaseURL,
		DefaultModel: p.DefaultModel,
		FastModel:    p.FastModel,
		Custom:       true,
	}
}
