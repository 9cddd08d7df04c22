// Package speech provides the speech-to-text and text-to-speech clients.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client talks to the OpenAI audio endpoints.
type Client struct {
	baseURL         string
	apiKey          string
	transcribeModel string
	ttsModel        string
	ttsVoice        string
	httpClient      *http.Client
}

// NewClient creates a new speech client.
func NewClient(baseURL, apiKey, transcribeModel, ttsModel, ttsVoice string, timeout time.Duration) *Client {
	return &Client{
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		apiKey:          apiKey,
		transcribeModel: transcribeModel,
		ttsModel:        ttsModel,
		ttsVoice:        ttsVoice,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Transcribe uploads a WAV byte stream and returns the transcript.
// An empty transcript is a valid result for silent input.
func (c *Client) Transcribe(ctx context.Context, wavData []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fw, err := w.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := fw.Write(wavData); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	_ = w.WriteField("model", c.transcribeModel)
	_ = w.WriteField("response_format", "text")
	_ = w.WriteField("language", "en")
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription API error [%d]: %s", resp.StatusCode, truncate(string(b), 400))
	}

	// response_format=text returns the bare transcript, no JSON.
	return strings.TrimSpace(string(b)), nil
}

// Synthesize converts reply text to spoken audio bytes (MP3).
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	reqBody := map[string]any{
		"model": c.ttsModel,
		"voice": c.ttsVoice,
		"input": text,
	}
	jb, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/speech", bytes.NewReader(jb))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech API error [%d]: %s", resp.StatusCode, truncate(string(b), 400))
	}

	return b, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
