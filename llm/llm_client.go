package llm

import (
	"context"
)

type LLMClient interface {
	// GenerateInference issues one blocking model call and delivers the full
	// response text through callback.
	GenerateInference(
		ctx context.Context,
		messages []Message,
		callback func(chunk string) error,
		opts ...LLMOption,
	) error

	// GenerateInferenceStream issues a streaming model call and delivers
	// incremental text fragments through callback as they are decoded.
	GenerateInferenceStream(
		ctx context.Context,
		messages []Message,
		callback func(token string) error,
		opts ...LLMOption,
	) error

	GetModel() string
}

type LLMSettings struct {
	model       string  // model name
	temperature float64 // randomness (0.0 to 1.0)
	topK        int     // top-K sampling cutoff
	topP        float64 // nucleus sampling cutoff
	maxTokens   int     // maximum tokens to generate
	system      string  // system instruction
}

type LLMOption func(*LLMSettings)

// Common options for all LLM providers
func WithLLMModel(model string) LLMOption {
	return func(s *LLMSettings) { s.model = model }
}

func WithTemperature(temp float64) LLMOption {
	return func(s *LLMSettings) { s.temperature = temp }
}

func WithTopK(k int) LLMOption {
	return func(s *LLMSettings) { s.topK = k }
}

func WithTopP(p float64) LLMOption {
	return func(s *LLMSettings) { s.topP = p }
}

func WithMaxTokens(tokens int) LLMOption {
	return func(s *LLMSettings) { s.maxTokens = tokens }
}

func WithSystemPrompt(prompt string) LLMOption {
	return func(s *LLMSettings) { s.system = prompt }
}

type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "model"
	Content string `json:"content"` // the message content
}
