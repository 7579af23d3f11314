package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelgate/reelgate/pkg/models"
)

// HTTPTransport talks to the generation service over its JSON HTTP API.
type HTTPTransport struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewHTTP creates an HTTPTransport for the given endpoint.
func NewHTTP(baseURL, apiKey string, log zerolog.Logger) *HTTPTransport {
	return &HTTPTransport{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

type submitPayload struct {
	Prompt      string  `json:"prompt"`
	Duration    float64 `json:"duration"`
	AspectRatio string  `json:"aspect_ratio,omitempty"`
	Quality     string  `json:"quality"`
	Style       string  `json:"style,omitempty"`
}

type submitResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type pollResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	VideoURL string `json:"video_url"`
	Error    string `json:"error"`
}

// Submit posts the generation request and returns the service's job id.
func (t *HTTPTransport) Submit(ctx context.Context, req models.GenerationRequest) (string, error) {
	payload := submitPayload{
		Prompt:      req.Prompt,
		Duration:    req.DurationSeconds,
		AspectRatio: string(req.Aspect),
		Quality:     string(req.Tier),
		Style:       string(req.Style),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &Error{Op: "submit", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Op: "submit", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", &Error{Op: "submit", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{Op: "submit", Err: httpStatusError(resp)}
	}

	var sr submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", &Error{Op: "submit", Err: fmt.Errorf("decode response: %w", err)}
	}
	if sr.ID == "" {
		return "", &Error{Op: "submit", Err: fmt.Errorf("response missing job id")}
	}

	t.log.Debug().Str("job_id", sr.ID).Str("status", sr.Status).Msg("generation submitted")
	return sr.ID, nil
}

// Poll fetches the current state of a job.
func (t *HTTPTransport) Poll(ctx context.Context, jobID string) (JobUpdate, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/"+jobID, nil)
	if err != nil {
		return JobUpdate{}, &Error{Op: "poll", Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return JobUpdate{}, &Error{Op: "poll", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return JobUpdate{}, &Error{Op: "poll", Err: httpStatusError(resp)}
	}

	var pr pollResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return JobUpdate{}, &Error{Op: "poll", Err: fmt.Errorf("decode response: %w", err)}
	}

	status, err := mapJobStatus(pr.Status)
	if err != nil {
		return JobUpdate{}, &Error{Op: "poll", Err: err}
	}
	return JobUpdate{Status: status, OutputRef: pr.VideoURL}, nil
}

// mapJobStatus translates service status strings into the client's job
// statuses. "processing" and "pending" are both in-flight.
func mapJobStatus(s string) (models.JobStatus, error) {
	switch s {
	case "pending", "processing", "queued":
		return models.JobPending, nil
	case "completed", "succeeded":
		return models.JobCompleted, nil
	case "failed", "cancelled":
		return models.JobFailed, nil
	default:
		return "", fmt.Errorf("unknown job status %q", s)
	}
}

func httpStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(body) == 0 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
}
