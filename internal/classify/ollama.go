package classify

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TextClassifier is the external generative classifier collaborator:
// it takes a prompt and returns free-text label output.
type TextClassifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// OllamaClassifier calls the Ollama generate API. Responses stream as
// newline-delimited JSON fragments that are reassembled into a single
// string before label extraction.
type OllamaClassifier struct {
	generateURL string
	model       string
	httpClient  *http.Client
}

func NewOllamaClassifier(generateURL, model string, timeout time.Duration) *OllamaClassifier {
	return &OllamaClassifier{
		generateURL: generateURL,
		model:       model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type generateRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type generateChunk struct {
	Response string `json:"response"`
}

// Classify sends the prompt and reassembles the streamed output.
// Lines that do not parse as JSON are appended verbatim; stream shape
// is a lenient concern, not an error.
func (c *OllamaClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:     c.model,
		Prompt:    prompt,
		MaxTokens: 50,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("classifier api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classifier api status %d", resp.StatusCode)
	}

	var combined strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		var chunk generateChunk
		if err := json.Unmarshal([]byte(line), &chunk); err == nil {
			combined.WriteString(chunk.Response)
		} else {
			combined.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}

	return combined.String(), nil
}

// Close releases resources.
func (c *OllamaClassifier) Close() {
	c.httpClient.CloseIdleConnections()
}
