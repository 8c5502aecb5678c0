package prompts

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.uber.org/zap"

	"github.com/vytalcare/health-navigator/llm"
	"github.com/vytalcare/health-navigator/schema"
)

// HistoryWindow is the number of prior turns included in the outbound
// request. Older turns are dropped to bound prompt size.
const HistoryWindow = 10

// CombinedReasoning performs the single reasoning call: intent detection,
// triage, grounding on the retrieved context, and answer generation in one
// request with a JSON-only output contract.
func CombinedReasoning(ctx context.Context, client llm.LLMClient, message string, history []schema.ChatMessage, contextBlock string) <-chan async.Result[*schema.ReasoningResult] {
	return async.Go(func() (*schema.ReasoningResult, error) {
		promptContext := contextBlock
		if promptContext == "" {
			promptContext = schema.PromptNoContext
		}

		systemPrompt, err := loadPrompt("templates/combined_reasoning_system.md", map[string]string{
			"Context": promptContext,
		})
		if err != nil {
			logger.Error("Failed to load reasoning system prompt", zap.Error(err))
			return nil, err
		}

		messages := BuildConversation(history, message)

		var raw strings.Builder
		err = client.GenerateInference(ctx, messages, func(chunk string) error {
			raw.WriteString(chunk)
			return nil
		},
			llm.WithTemperature(0.7),
			llm.WithTopK(40),
			llm.WithTopP(0.95),
			llm.WithMaxTokens(2048),
			llm.WithSystemPrompt(systemPrompt),
		)
		if err != nil {
			logger.Error("Reasoning call failed", zap.Error(err))
			return nil, err
		}

		return ParseReasoningResult(raw.String()), nil
	})
}

// StreamingSystemPrompt renders the lighter system instruction used by the
// streaming flow, which asks for natural language instead of JSON.
func StreamingSystemPrompt(contextBlock string) (string, error) {
	promptContext := contextBlock
	if promptContext == "" {
		promptContext = schema.PromptNoContext
	}

	return loadPrompt("templates/streaming_system.md", map[string]string{
		"Context": promptContext,
	})
}

// BuildConversation windows history to the last HistoryWindow turns, in
// original relative order, and appends the current message as the final user
// turn. Assistant and model turns map to the model role; everything else is a
// user turn.
func BuildConversation(history []schema.ChatMessage, message string) []llm.Message {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	messages := make([]llm.Message, 0, len(history)+1)
	for _, turn := range history {
		if turn.Role == "" && turn.Text == "" {
			continue
		}

		role := schema.RoleUser
		if turn.Role == schema.RoleModel || turn.Role == schema.RoleAssistant {
			role = schema.RoleModel
		}

		messages = append(messages, llm.Message{Role: role, Content: turn.Text})
	}

	return append(messages, llm.Message{Role: schema.RoleUser, Content: message})
}

// Known code-fence wrappers, tried in order. Parsing never attempts
// unbounded repair beyond these.
var (
	jsonFencePattern  = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	plainFencePattern = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// ParseReasoningResult decodes the model's raw text into a ReasoningResult.
// Two-stage: direct parse, then one fence-stripped retry. If both fail, a
// degraded result is constructed carrying the raw text as the answer so no
// information is dropped silently.
func ParseReasoningResult(raw string) *schema.ReasoningResult {
	if result, ok := unmarshalReasoning(strings.TrimSpace(raw)); ok {
		if result.AnswerText() == "" {
			result.Answer = raw
		}
		return result
	}

	if stripped, found := stripCodeFence(raw); found {
		if result, ok := unmarshalReasoning(stripped); ok {
			if result.AnswerText() == "" {
				result.Answer = raw
			}
			return result
		}
	}

	logger.Log.Warn("Failed to parse reasoning response, using raw text", zap.Int("length", len(raw)))
	return &schema.ReasoningResult{
		Intent:            schema.IntentOther,
		Urgency:           schema.UrgencyLow,
		NeedsProfessional: true,
		Answer:            raw,
		SafetyNotes:       schema.DefaultSafetyNote,
	}
}

func unmarshalReasoning(text string) (*schema.ReasoningResult, bool) {
	result := &schema.ReasoningResult{}
	if err := json.Unmarshal([]byte(text), result); err != nil {
		return nil, false
	}
	return result, true
}

func stripCodeFence(raw string) (string, bool) {
	if match := jsonFencePattern.FindStringSubmatch(raw); match != nil {
		return match[1], true
	}
	if match := plainFencePattern.FindStringSubmatch(raw); match != nil {
		return match[1], true
	}
	return "", false
}
