package config

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	ProviderOpenAI   = "openai"
	ProviderDeepgram = "deepgram"

	ModeTranslate  = "translate"
	ModeTranscribe = "transcribe"
)

// Config is built once at startup and is read-only afterwards.
type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string

	DeepgramAPIKey string
	DeepgramURL    string

	Provider string
	Mode     string
	Model    string
	Language string

	AllowedHosts []string

	Port        string
	StagingDir  string
	AudioFormat string
	BodyLimitMB int

	LogLevel  string
	LogFormat string
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("TRANSCRIBE_PROVIDER", ProviderOpenAI)
	v.SetDefault("TRANSCRIBE_MODE", ModeTranslate)
	v.SetDefault("DEEPGRAM_URL", "https://api.deepgram.com/v1/listen")
	v.SetDefault("PORT", "3000")
	v.SetDefault("STAGING_DIR", os.TempDir())
	v.SetDefault("AUDIO_FORMAT", "webm")
	v.SetDefault("BODY_LIMIT_MB", "25")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	cfg := &Config{
		OpenAIAPIKey:   strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OpenAIBaseURL:  v.GetString("OPENAI_BASE_URL"),
		DeepgramAPIKey: strings.TrimSpace(v.GetString("DEEPGRAM_API_KEY")),
		DeepgramURL:    v.GetString("DEEPGRAM_URL"),
		Provider:       strings.ToLower(v.GetString("TRANSCRIBE_PROVIDER")),
		Mode:           strings.ToLower(v.GetString("TRANSCRIBE_MODE")),
		Model:          v.GetString("TRANSCRIBE_MODEL"),
		Language:       v.GetString("TRANSCRIBE_LANGUAGE"),
		AllowedHosts:   splitHosts(v.GetString("ALLOWED_HOSTS")),
		Port:           v.GetString("PORT"),
		StagingDir:     v.GetString("STAGING_DIR"),
		AudioFormat:    strings.TrimPrefix(v.GetString("AUDIO_FORMAT"), "."),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
	}

	limit, err := strconv.Atoi(strings.TrimSpace(v.GetString("BODY_LIMIT_MB")))
	if err != nil || limit <= 0 {
		return nil, errors.Errorf("BODY_LIMIT_MB must be a positive integer (got %q)", v.GetString("BODY_LIMIT_MB"))
	}
	cfg.BodyLimitMB = limit

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected provider can be reached with the
// configured credentials.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("missing OPENAI_API_KEY environment variable")
		}
	case ProviderDeepgram:
		if c.DeepgramAPIKey == "" {
			return errors.New("missing DEEPGRAM_API_KEY environment variable")
		}
	default:
		return errors.Errorf("unknown TRANSCRIBE_PROVIDER %q (want %s or %s)", c.Provider, ProviderOpenAI, ProviderDeepgram)
	}

	if c.Mode != ModeTranslate && c.Mode != ModeTranscribe {
		return errors.Errorf("unknown TRANSCRIBE_MODE %q (want %s or %s)", c.Mode, ModeTranslate, ModeTranscribe)
	}
	if c.AudioFormat == "" {
		return errors.New("AUDIO_FORMAT must not be empty")
	}
	return nil
}

// BodyLimit returns the upload limit in bytes.
func (c *Config) BodyLimit() int {
	return c.BodyLimitMB * 1024 * 1024
}

// AllowedOrigins renders the allow-list as https origins for CORS.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(c.AllowedHosts))
	for _, h := range c.AllowedHosts {
		origins = append(origins, "https://"+h)
	}
	return origins
}

// HostAllowed reports whether the caller host may use the upload routes.
// An empty allow-list allows everyone.
func (c *Config) HostAllowed(host string) bool {
	if len(c.AllowedHosts) == 0 {
		return true
	}
	host = normalizeHost(host)
	if host == "" {
		return false
	}
	bare := stripPort(host)
	for _, allowed := range c.AllowedHosts {
		if allowed == host || allowed == bare {
			return true
		}
	}
	return false
}

// splitHosts parses a comma separated allow-list, dropping blank entries.
func splitHosts(raw string) []string {
	var hosts []string
	for _, part := range strings.Split(raw, ",") {
		if h := normalizeHost(part); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// normalizeHost accepts "example.com", "Example.com:8443" or
// "https://example.com" and returns the lower-cased host[:port].
func normalizeHost(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		s = u.Host
	}
	return strings.TrimSuffix(s, "/")
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
