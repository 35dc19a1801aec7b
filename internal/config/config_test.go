package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.Cache.Kind != "file" || cfg.Store.Kind != "memory" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "erdraw.toml")
	content := `
addr = ":9000"
frontend_dir = "static"

[cache]
kind = "redis"
redis_addr = "localhost:6379"

[store]
kind = "mongo"
mongo_uri = "mongodb://localhost:27017"

[chat]
model = "deepseek-v3.2"
api_key_env = "TEST_CHAT_KEY"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEST_CHAT_KEY", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.FrontendDir != "static" {
		t.Errorf("server section: %+v", cfg)
	}
	if cfg.Cache.Kind != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache section: %+v", cfg.Cache)
	}
	if cfg.Store.MongoDB != DefaultMongoDB {
		t.Errorf("mongo_db default missing: %+v", cfg.Store)
	}
	if cfg.Chat.APIKey != "secret" {
		t.Errorf("api key not resolved from env: %+v", cfg.Chat)
	}
}

func TestLoadValidation(t *testing.T) {
	write := func(content string) string {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	if _, err := Load(write("[cache]\nkind = \"memcached\"\n")); err == nil {
		t.Error("unknown cache kind should fail")
	}
	if _, err := Load(write("[cache]\nkind = \"redis\"\n")); err == nil {
		t.Error("redis without addr should fail")
	}
	if _, err := Load(write("[store]\nkind = \"mongo\"\n")); err == nil {
		t.Error("mongo without uri should fail")
	}
}
