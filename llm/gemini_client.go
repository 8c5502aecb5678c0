package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/SaiNageswarS/go-api-boot/logger"
)

type GeminiClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewGeminiClient(model string) *GeminiClient {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		// Providers are designed for dependency injection.
		// If the API key is not set, we log a fatal error.
		logger.Fatal("GEMINI_API_KEY environment variable is not set")
		return nil
	}

	return &GeminiClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		baseURL:    "https://generativelanguage.googleapis.com",
		model:      model,
	}
}

func (c *GeminiClient) GetModel() string {
	return c.model
}

func (c *GeminiClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	settings := LLMSettings{
		model:       c.model,
		temperature: 0.7,
		maxTokens:   2048,
	}

	// Apply options
	for _, opt := range opts {
		opt(&settings)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, settings.model, c.apiKey)

	body, err := c.doRequest(ctx, url, buildGeminiRequest(messages, settings))
	if err != nil {
		return err
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}

	text := response.firstText()
	if text == "" {
		return fmt.Errorf("no response from Gemini API")
	}

	return callback(text)
}

// GenerateInferenceStream issues the same request against the SSE-flavored
// endpoint and decodes "data: " frames into incremental token callbacks.
// Malformed frames are skipped; the provider's [DONE] sentinel ends the
// stream.
func (c *GeminiClient) GenerateInferenceStream(ctx context.Context, messages []Message, callback func(token string) error, opts ...LLMOption) error {
	settings := LLMSettings{
		model:       c.model,
		temperature: 0.7,
	}

	for _, opt := range opts {
		opt(&settings)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?alt=sse&key=%s", c.baseURL, settings.model, c.apiKey)

	jsonData, err := json.Marshal(buildGeminiRequest(messages, settings))
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("streaming API error: %s", geminiErrorMessage(resp.StatusCode, body))
	}

	dec := newSSEDecoder(resp.Body)
	for {
		payload, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading stream: %w", err)
		}

		if payload == sseDoneSentinel {
			return nil
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Transient partial chunks are expected in SSE framing.
			continue
		}

		if text := chunk.firstText(); text != "" {
			if err := callback(text); err != nil {
				return err
			}
		}
	}
}

func (c *GeminiClient) doRequest(ctx context.Context, url string, request geminiRequest) ([]byte, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gemini API error: %s", geminiErrorMessage(resp.StatusCode, body))
	}

	return body, nil
}

// buildGeminiRequest converts provider-agnostic messages into the Gemini
// contents shape. Gemini enforces strict user/model turn alternation, so any
// role other than "model" maps to a user turn.
func buildGeminiRequest(messages []Message, settings LLMSettings) geminiRequest {
	contents := make([]geminiContent, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == "model" {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	request := geminiRequest{
		Contents: contents,
		GenerationConfig: geminiGenerationConfig{
			Temperature:     settings.temperature,
			TopK:            settings.topK,
			TopP:            settings.topP,
			MaxOutputTokens: settings.maxTokens,
		},
	}

	if settings.system != "" {
		request.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: settings.system}},
		}
	}

	return request
}

// geminiErrorMessage extracts the endpoint's reported message from an error
// body, falling back to the HTTP status.
func geminiErrorMessage(statusCode int, body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}

	return fmt.Sprintf("HTTP %d", statusCode)
}

// Gemini API types
type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

func (r *geminiResponse) firstText() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}
