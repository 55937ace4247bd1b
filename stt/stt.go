package stt

//go:generate mockgen -destination=mocks/mock_transcriber.go -package=mocks github.com/mrsingh-rishi/transcribe-widget/stt Transcriber

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/transcribe-widget/config"
)

// Request describes one staged recording to be converted to text.
type Request struct {
	AudioPath string
	Format    string // container tag, e.g. "webm"
	Model     string
	Language  string
}

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}

// New returns the backend selected by cfg.Provider.
func New(cfg *config.Config) (Transcriber, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model, cfg.Mode == config.ModeTranslate), nil
	case config.ProviderDeepgram:
		return NewDeepgramClient(cfg.DeepgramAPIKey, cfg.DeepgramURL, cfg.Model), nil
	default:
		return nil, errors.Errorf("unknown transcription provider %q", cfg.Provider)
	}
}
