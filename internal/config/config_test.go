package config

import (
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := cfg.RafiqConnectorCfg.Url, "http://localhost:8000"; got != want {
		t.Errorf("RAFIQ_SERVICE_URL: got %q, want %q", got, want)
	}
	if got, want := cfg.RafiqConnectorCfg.IngestEndpoint, "/ingest/"; got != want {
		t.Errorf("ingest endpoint: got %q, want %q", got, want)
	}
	if got, want := cfg.RafiqConnectorCfg.ChatEndpoint, "/chat/"; got != want {
		t.Errorf("chat endpoint: got %q, want %q", got, want)
	}
	if got := cfg.RafiqConnectorCfg.Retry.Attempts; got != 1 {
		t.Errorf("retry attempts: got %d, want 1", got)
	}
	if got := cfg.StoreCfg.Driver; got != StoreDriverMemory {
		t.Errorf("store driver: got %q, want %q", got, StoreDriverMemory)
	}
	if got, want := cfg.WebCfg.CookieName, "rafiq_session"; got != want {
		t.Errorf("cookie name: got %q, want %q", got, want)
	}
	if got, want := cfg.WebCfg.PollInterval, 2*time.Second; got != want {
		t.Errorf("poll interval: got %s, want %s", got, want)
	}
}

func TestParse_FromEnvironment(t *testing.T) {
	t.Setenv("RAFIQ_SERVICE_URL", "http://rafiq:9000")
	t.Setenv("RAFIQ_RETRY_ATTEMPTS", "3")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_ADDRS", "a:6379,b:6379")
	t.Setenv("WATCH_DIR", "/srv/inbox")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RafiqConnectorCfg.Url != "http://rafiq:9000" {
		t.Errorf("url: got %q", cfg.RafiqConnectorCfg.Url)
	}
	if cfg.RafiqConnectorCfg.Retry.Attempts != 3 {
		t.Errorf("attempts: got %d", cfg.RafiqConnectorCfg.Retry.Attempts)
	}
	if len(cfg.RedisCfg.Addrs) != 2 || cfg.RedisCfg.Addrs[1] != "b:6379" {
		t.Errorf("redis addrs: got %v", cfg.RedisCfg.Addrs)
	}
	if cfg.WatchCfg.Dir != "/srv/inbox" {
		t.Errorf("watch dir: got %q", cfg.WatchCfg.Dir)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}, "STORE_DRIVER"},
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres"}, "DATABASE_URL"},
		{"zero attempts", map[string]string{"RAFIQ_RETRY_ATTEMPTS": "0"}, "RAFIQ_RETRY_ATTEMPTS"},
		{"fast polling", map[string]string{"WEB_POLL_INTERVAL": "10ms"}, "WEB_POLL_INTERVAL"},
		{"file larger than upload", map[string]string{"FILE_UPLOAD_MAX_FILE_SIZE": "99999999"}, "FILE_UPLOAD_MAX_FILE_SIZE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestGetEnvFile(t *testing.T) {
	tests := map[string]string{
		"prod":    ".env.prod",
		"local":   ".env.local",
		"dev":     ".env.local",
		"staging": ".env.staging",
	}
	for in, want := range tests {
		if got := getEnvFile(in); got != want {
			t.Errorf("getEnvFile(%q) = %q, want %q", in, got, want)
		}
	}
}
