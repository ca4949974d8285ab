package narration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPEngine drives a speech-synthesis sidecar over its REST API.
// POST /v1/speak starts an utterance, DELETE /v1/speak/{id} cancels it, and
// GET /v1/speak/{id} reports status; completion is detected by polling.
type HTTPEngine struct {
	BaseURL      string
	Client       *http.Client
	PollInterval time.Duration
}

var _ Engine = &HTTPEngine{}

func NewHTTPEngine(baseURL string) *HTTPEngine {
	return &HTTPEngine{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
		PollInterval: 500 * time.Millisecond,
	}
}

type speakRequest struct {
	Text string `json:"text"`
}

type speakResponse struct {
	UtteranceId string `json:"utterance_id"`
}

type speakStatus struct {
	State string `json:"state"` // "speaking" | "done" | "cancelled"
}

func (e *HTTPEngine) Speak(text string, onDone func()) (Handle, error) {
	payload, err := json.Marshal(speakRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	resp, err := e.Client.Post(e.BaseURL+"/v1/speak", "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("speech error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var speakRes speakResponse
	if err := json.Unmarshal(body, &speakRes); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	go e.watchCompletion(speakRes.UtteranceId, onDone)

	return Handle(speakRes.UtteranceId), nil
}

func (e *HTTPEngine) Cancel(handle Handle) {
	req, err := http.NewRequest("DELETE", fmt.Sprintf("%s/v1/speak/%s", e.BaseURL, handle), nil)
	if err != nil {
		return
	}
	resp, err := e.Client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

// watchCompletion polls the utterance status until it leaves the speaking
// state, then fires onDone for natural completion only.
func (e *HTTPEngine) watchCompletion(utteranceID string, onDone func()) {
	for {
		time.Sleep(e.PollInterval)

		resp, err := e.Client.Get(fmt.Sprintf("%s/v1/speak/%s", e.BaseURL, utteranceID))
		if err != nil {
			return
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil || resp.StatusCode != http.StatusOK {
			return
		}

		var status speakStatus
		if err := json.Unmarshal(body, &status); err != nil {
			return
		}

		switch status.State {
		case "speaking":
			continue
		case "done":
			if onDone != nil {
				onDone()
			}
			return
		default:
			// cancelled or unknown: no completion callback
			return
		}
	}
}
