package stt

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient sends staged recordings to the Whisper audio endpoints.
// In translate mode the result is always English.
type OpenAIClient struct {
	Client    *openai.Client
	Model     string
	Translate bool
}

func NewOpenAIClient(apiKey string, baseURL string, model string, translate bool) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIClient{
		Client:    openai.NewClientWithConfig(cfg),
		Model:     model,
		Translate: translate,
	}
}

func (c *OpenAIClient) Transcribe(ctx context.Context, req Request) (string, error) {
	model := c.Model
	if req.Model != "" {
		model = req.Model
	}

	audioReq := openai.AudioRequest{
		Model:    model,
		FilePath: req.AudioPath,
	}

	var (
		resp openai.AudioResponse
		err  error
	)
	if c.Translate {
		resp, err = c.Client.CreateTranslation(ctx, audioReq)
	} else {
		audioReq.Language = req.Language
		resp, err = c.Client.CreateTranscription(ctx, audioReq)
	}
	if err != nil {
		return "", errors.Wrap(err, "openai audio request")
	}

	return resp.Text, nil
}
