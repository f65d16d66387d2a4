package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
subject:
  name: "Giuseppe"
embedding:
  backend: mock
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Embedding.Backend != EmbeddingBackendMock {
		t.Errorf("embedding backend %q", cfg.Embedding.Backend)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_defaults(t *testing.T) {
	path := writeConfig(t, `
embedding:
  backend: mock
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if cfg.Subject.Name != "Giuseppe" {
		t.Errorf("subject default: %q", cfg.Subject.Name)
	}
	if cfg.Generation.Backend != GenerationBackendNone {
		t.Errorf("generation default: %q", cfg.Generation.Backend)
	}
	if cfg.Generation.TimeoutSeconds != 30 {
		t.Errorf("generation timeout default: %d", cfg.Generation.TimeoutSeconds)
	}
	if cfg.Search.MaxResults != 5 || cfg.Search.MinConfidence != 0.3 {
		t.Errorf("search defaults: %+v", cfg.Search)
	}
	if cfg.RateLimit.Requests != 30 || cfg.RateLimit.WindowSeconds != 60 {
		t.Errorf("rate limit defaults: %+v", cfg.RateLimit)
	}
}

func TestLoad_localBackendDimensions(t *testing.T) {
	path := writeConfig(t, `
embedding:
  backend: local
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("local backend dimensions default = %d, want 384", cfg.Embedding.Dimensions)
	}
}

func TestLoad_unknownBackendRejected(t *testing.T) {
	path := writeConfig(t, `
embedding:
  backend: quantum
`)
	if _, err := Load(path); err == nil {
		t.Error("unknown embedding backend accepted")
	}

	path = writeConfig(t, `
embedding:
  backend: mock
generation:
  backend: claude
`)
	if _, err := Load(path); err == nil {
		t.Error("unknown generation backend accepted")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
embedding:
  backend: mock
content:
  ai_content_path: "./data/cv_ai_content.json"
sessions:
  database_path: "./data/sessions.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Dir(path)
	wantContent := filepath.Join(dir, "data", "cv_ai_content.json")
	if cfg.Content.AIContentPath != wantContent {
		t.Errorf("ai_content_path = %q, want %q", cfg.Content.AIContentPath, wantContent)
	}
	wantDB := filepath.Join(dir, "data", "sessions.db")
	if cfg.Sessions.DatabasePath != wantDB {
		t.Errorf("database_path = %q, want %q", cfg.Sessions.DatabasePath, wantDB)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing config file accepted")
	}
}
