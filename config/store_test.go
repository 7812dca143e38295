package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"cswitch/config/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStoreAt(filepath.Join(t.TempDir(), "settings.json"))
}

func TestLoadCreatesMissingFile(t *testing.T) {
	store := setupTestStore(t)

	if store.Exists() {
		t.Fatal("Expected settings file to not exist yet")
	}

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(cfg.Env) != 0 {
		t.Errorf("Expected empty env, got %d entries", len(cfg.Env))
	}
	if !store.Exists() {
		t.Error("Expected load to persist an empty settings file")
	}

	raw, err := store.ReadRaw()
	if err != nil {
		t.Fatalf("Failed to read raw: %v", err)
	}
	if !strings.Contains(string(raw), `"env"`) {
		t.Errorf("Expected env block in created file, got: %s", raw)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	cfg := models.New()
	cfg.SetString(models.EnvAuthToken, "sk-test")
	cfg.SetString(models.EnvBaseURL, "https://api.deepseek.com/anthropic")
	cfg.SetInt(models.EnvTimeout, 30000)

	if err := store.Save(cfg); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if !loaded.Equal(cfg) {
		t.Errorf("Loaded config differs: %+v vs %+v", loaded.Env, cfg.Env)
	}
}

func TestSavePreservesForeignKeys(t *testing.T) {
	store := setupTestStore(t)

	seed := `{
  "permissions": {"allow": ["Bash"]},
  "env": {"ANTHROPIC_MODEL": "old-model"},
  "theme": "dark"
}`
	if err := os.WriteFile(store.Path(), []byte(seed), 0600); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}

	cfg := models.New()
	cfg.SetString(models.EnvModel, "deepseek-chat")
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	raw, err := store.ReadRaw()
	if err != nil {
		t.Fatalf("Failed to read raw: %v", err)
	}
	text := string(raw)
	if !strings.Contains(text, `"permissions"`) || !strings.Contains(text, `"theme"`) {
		t.Errorf("Foreign top-level keys lost: %s", text)
	}
	if strings.Contains(text, "old-model") {
		t.Errorf("Expected env block to be replaced, got: %s", text)
	}
	if !strings.Contains(text, "deepseek-chat") {
		t.Errorf("Expected new model in env block, got: %s", text)
	}
}

func TestLoadMalformed(t *testing.T) {
	cases := map[string]string{
		"invalid JSON":   `{not json`,
		"not an object":  `[1, 2, 3]`,
		"env not object": `{"env": "oops"}`,
		"env value bool": `{"env": {"ANTHROPIC_MODEL": true}}`,
		"env value list": `{"env": {"ANTHROPIC_MODEL": [1]}}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			store := setupTestStore(t)
			if err := os.WriteFile(store.Path(), []byte(content), 0600); err != nil {
				t.Fatalf("Failed to seed file: %v", err)
			}
			_, err := store.Load()
			if !errors.Is(err, ErrParse) {
				t.Errorf("Expected ErrParse, got %v", err)
			}
		})
	}
}

func TestLoadEmptyFile(t *testing.T) {
	store := setupTestStore(t)
	if err := os.WriteFile(store.Path(), []byte("  \n"), 0600); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load empty file: %v", err)
	}
	if len(cfg.Env) != 0 {
		t.Errorf("Expected empty env, got %d entries", len(cfg.Env))
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	store := setupTestStore(t)

	cfg := models.New()
	cfg.SetString(models.EnvModel, "glm-4.7")
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only settings.json, found %v", names)
	}
}

// genEnv generates arbitrary flat env maps of strings and integers.
func genEnv() gopter.Gen {
	key := gen.AlphaString().Map(func(s string) string {
		if s == "" {
			s = "KEY"
		}
		return strings.ToUpper(s)
	})
	strValue := gen.AlphaString().Map(func(s string) models.EnvValue {
		if s == "" {
			s = "x"
		}
		return models.StringEnv(s)
	})
	intValue := gen.Int64().Map(models.IntEnv)
	return gen.MapOf(key, gen.OneGenOf(strValue, intValue))
}

func TestSaveLoadProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("save then load returns an equal config", prop.ForAll(
		func(env map[string]models.EnvValue) bool {
			store := NewStoreAt(filepath.Join(t.TempDir(), "settings.json"))
			cfg := &models.Config{Env: env}
			if err := store.Save(cfg); err != nil {
				return false
			}
			loaded, err := store.Load()
			if err != nil {
				return false
			}
			return loaded.Equal(cfg)
		},
		genEnv(),
	))

	properties.TestingRun(t)
}
