package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaClient implements Client against an Ollama-compatible streaming
// generate endpoint. The response body is read as newline-delimited JSON.
type OllamaClient struct {
	http   *http.Client
	config *Config
}

// NewOllamaClient creates a client. A nil httpClient uses one with config.Timeout.
func NewOllamaClient(config *Config, httpClient *http.Client) *OllamaClient {
	if config == nil {
		config = DefaultOllamaConfig()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	return &OllamaClient{http: httpClient, config: config}
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

// ollamaChunk covers the chunk shapes seen from Ollama and OpenAI-style
// completion servers.
type ollamaChunk struct {
	Response *string `json:"response"`
	Text     *string `json:"text"`
	Choices  []struct {
		Text string `json:"text"`
	} `json:"choices"`
	Done bool `json:"done"`
}

// complete streams a completion and returns the concatenated text.
func (c *OllamaClient) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:   c.config.GetModel(),
		Prompt:  prompt,
		Stream:  true,
		Options: ollamaOptions{NumPredict: c.config.MaxTokens},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call %s: %w", c.config.APIURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("llm returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	text, err := readStream(resp.Body)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from llm")
	}
	return text, nil
}

// GenerateJSON generates text and extracts the first JSON object from it.
func (c *OllamaClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	text, err := c.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	obj := ExtractJSONObject(text)
	if obj == "" {
		return "", fmt.Errorf("no JSON object in response")
	}
	return obj, nil
}

// Model returns the model name
func (c *OllamaClient) Model() string {
	return c.config.GetModel()
}

// Close is a no-op; the HTTP client holds no dedicated resources.
func (c *OllamaClient) Close() error {
	return nil
}

// readStream concatenates chunk text until a done marker or EOF. Lines that
// are not JSON are kept verbatim.
func readStream(r io.Reader) (string, error) {
	var sb strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var chunk ollamaChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			sb.WriteString(line)
			continue
		}

		switch {
		case chunk.Response != nil:
			sb.WriteString(*chunk.Response)
		case chunk.Text != nil:
			sb.WriteString(*chunk.Text)
		case len(chunk.Choices) > 0:
			sb.WriteString(chunk.Choices[0].Text)
		}

		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return sb.String(), fmt.Errorf("failed to read llm stream: %w", err)
	}
	return sb.String(), nil
}
