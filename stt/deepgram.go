package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/pkg/errors"
)

const defaultDeepgramModel = "nova-2"

// DeepgramClient calls Deepgram's pre-recorded /v1/listen endpoint.
type DeepgramClient struct {
	APIKey     string
	Endpoint   string
	Model      string
	HTTPClient *http.Client
}

// prerecordedResponse is the subset of Deepgram's response we read.
type prerecordedResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func NewDeepgramClient(apiKey string, endpoint string, model string) *DeepgramClient {
	if endpoint == "" {
		endpoint = "https://api.deepgram.com/v1/listen"
	}
	if model == "" {
		model = defaultDeepgramModel
	}
	return &DeepgramClient{
		APIKey:     apiKey,
		Endpoint:   endpoint,
		Model:      model,
		HTTPClient: &http.Client{},
	}
}

func (dg *DeepgramClient) Transcribe(ctx context.Context, req Request) (string, error) {
	f, err := os.Open(req.AudioPath)
	if err != nil {
		return "", errors.Wrap(err, "open staged audio")
	}
	defer f.Close()

	u, err := dg.listenURL(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, f)
	if err != nil {
		return "", errors.Wrap(err, "build deepgram request")
	}
	httpReq.Header.Set("Authorization", fmt.Sprintf("Token %s", dg.APIKey))
	if req.Format != "" {
		httpReq.Header.Set("Content-Type", "audio/"+req.Format)
	}

	resp, err := dg.HTTPClient.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "deepgram request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", errors.Errorf("deepgram error (status %d): %s", resp.StatusCode, string(body))
	}

	var result prerecordedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.Wrap(err, "decode deepgram response")
	}

	if len(result.Results.Channels) == 0 || len(result.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return result.Results.Channels[0].Alternatives[0].Transcript, nil
}

func (dg *DeepgramClient) listenURL(req Request) (string, error) {
	base, err := url.Parse(dg.Endpoint)
	if err != nil {
		return "", errors.Wrapf(err, "parse deepgram endpoint %q", dg.Endpoint)
	}

	model := dg.Model
	if req.Model != "" {
		model = req.Model
	}

	q := base.Query()
	q.Set("model", model)
	q.Set("punctuate", "true")
	q.Set("smart_format", "true")
	if req.Language != "" {
		q.Set("language", req.Language)
	}
	base.RawQuery = q.Encode()
	return base.String(), nil
}
