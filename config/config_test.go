package config

import (
	"strings"
	"testing"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "DEEPGRAM_API_KEY", "DEEPGRAM_URL",
		"TRANSCRIBE_PROVIDER", "TRANSCRIBE_MODE", "TRANSCRIBE_MODEL", "TRANSCRIBE_LANGUAGE",
		"ALLOWED_HOSTS", "PORT", "STAGING_DIR", "AUDIO_FORMAT", "BODY_LIMIT_MB",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		// viper treats empty variables as unset, so defaults apply.
		t.Setenv(k, "")
	}
}

func TestLoadMissingOpenAIKey(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected error, got config %+v", cfg)
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("error should name the missing variable, got %q", err)
	}
}

func TestLoadMissingDeepgramKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TRANSCRIBE_PROVIDER", "deepgram")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DEEPGRAM_API_KEY") {
		t.Fatalf("expected DEEPGRAM_API_KEY error, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OPENAI_API_KEY", " sk-test ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("OpenAIAPIKey = %q", cfg.OpenAIAPIKey)
	}
	if cfg.Provider != ProviderOpenAI || cfg.Mode != ModeTranslate || cfg.Model != "" {
		t.Errorf("unexpected provider settings: %+v", cfg)
	}
	if cfg.BodyLimit() != 25*1024*1024 {
		t.Errorf("BodyLimit = %d", cfg.BodyLimit())
	}
	if len(cfg.AllowedHosts) != 0 {
		t.Errorf("AllowedHosts = %v, want empty", cfg.AllowedHosts)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"provider", "TRANSCRIBE_PROVIDER", "azure"},
		{"mode", "TRANSCRIBE_MODE", "summarize"},
		{"body limit", "BODY_LIMIT_MB", "lots"},
		{"zero body limit", "BODY_LIMIT_MB", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("OPENAI_API_KEY", "sk-test")
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestAllowedHostsParsing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ALLOWED_HOSTS", " example.com, ,https://Widget.example.org/,localhost:8080,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"example.com", "widget.example.org", "localhost:8080"}
	if strings.Join(cfg.AllowedHosts, "|") != strings.Join(want, "|") {
		t.Fatalf("AllowedHosts = %v, want %v", cfg.AllowedHosts, want)
	}

	origins := cfg.AllowedOrigins()
	if origins[0] != "https://example.com" || origins[2] != "https://localhost:8080" {
		t.Errorf("AllowedOrigins = %v", origins)
	}
}

func TestHostAllowed(t *testing.T) {
	cfg := &Config{AllowedHosts: []string{"example.com", "localhost:8080"}}

	tests := []struct {
		host string
		want bool
	}{
		{"example.com", true},
		{"EXAMPLE.com", true},
		{"https://example.com", true},
		{"example.com:443", true},
		{"localhost:8080", true},
		{"localhost:9090", false},
		{"evil.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := cfg.HostAllowed(tt.host); got != tt.want {
			t.Errorf("HostAllowed(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}

	open := &Config{}
	if !open.HostAllowed("anything.example") {
		t.Error("empty allow-list should allow every host")
	}
}
