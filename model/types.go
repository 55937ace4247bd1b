package model

// TranscriptionResponse is the JSON body returned for a successful upload.
type TranscriptionResponse struct {
	Text string `json:"text"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
}
