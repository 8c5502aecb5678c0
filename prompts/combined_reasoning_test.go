package prompts

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaiNageswarS/go-collection-boot/async"

	"github.com/vytalcare/health-navigator/llm"
	"github.com/vytalcare/health-navigator/schema"
)

type mockLLMClient struct {
	response string
	err      error
	model    string
	captured [][]llm.Message
}

func (m *mockLLMClient) GetModel() string { return m.model }

func (m *mockLLMClient) GenerateInference(
	ctx context.Context,
	messages []llm.Message,
	callback func(string) error,
	options ...llm.LLMOption,
) error {
	m.captured = append(m.captured, messages)
	if m.err != nil {
		return m.err
	}
	return callback(m.response)
}

func (m *mockLLMClient) GenerateInferenceStream(
	ctx context.Context,
	messages []llm.Message,
	callback func(string) error,
	options ...llm.LLMOption,
) error {
	return m.GenerateInference(ctx, messages, callback, options...)
}

func TestParseReasoningResult(t *testing.T) {
	t.Run("direct JSON", func(t *testing.T) {
		raw := `{"intent":"medical_question","urgency":"low","needs_professional":true,"answer":"Drink fluids.","key_points":["rest","hydrate"],"safety_notes":"See a doctor if it persists."}`
		result := ParseReasoningResult(raw)

		assert.Equal(t, schema.IntentMedicalQuestion, result.Intent)
		assert.Equal(t, "Drink fluids.", result.Answer)
		assert.Len(t, result.KeyPoints, 2)
		assert.True(t, result.NeedsProfessional)
	})

	t.Run("json fenced", func(t *testing.T) {
		raw := "Here is my analysis:\n```json\n{\"intent\":\"symptom_check\",\"answer\":\"Rest.\"}\n```"
		result := ParseReasoningResult(raw)

		assert.Equal(t, schema.IntentSymptomCheck, result.Intent)
		assert.Equal(t, "Rest.", result.Answer)
	})

	t.Run("plain fenced", func(t *testing.T) {
		raw := "```\n{\"intent\":\"medication_info\",\"answer\":\"Take with food.\"}\n```"
		result := ParseReasoningResult(raw)

		assert.Equal(t, schema.IntentMedicationInfo, result.Intent)
		assert.Equal(t, "Take with food.", result.Answer)
	})

	t.Run("legacy response field", func(t *testing.T) {
		raw := `{"intent":"general_advice","response":"Stay active."}`
		result := ParseReasoningResult(raw)

		assert.Equal(t, "Stay active.", result.AnswerText())
	})

	t.Run("unparseable text degrades, raw preserved", func(t *testing.T) {
		raw := "I think you should rest and drink plenty of water."
		result := ParseReasoningResult(raw)

		assert.Equal(t, schema.IntentOther, result.Intent)
		assert.Equal(t, schema.UrgencyLow, result.Urgency)
		assert.True(t, result.NeedsProfessional)
		assert.Equal(t, raw, result.Answer)
		assert.Equal(t, schema.DefaultSafetyNote, result.SafetyNotes)
	})

	t.Run("valid JSON with empty answer keeps raw text", func(t *testing.T) {
		raw := `{"intent":"other","urgency":"low"}`
		result := ParseReasoningResult(raw)

		assert.Equal(t, raw, result.Answer)
	})

	t.Run("broken JSON inside fence degrades", func(t *testing.T) {
		raw := "```json\n{\"intent\": \"medical_question\", \"answer\": \n```"
		result := ParseReasoningResult(raw)

		assert.Equal(t, schema.IntentOther, result.Intent)
		assert.Equal(t, raw, result.Answer)
	})
}

func TestBuildConversation(t *testing.T) {
	t.Run("windows to last turns", func(t *testing.T) {
		var history []schema.ChatMessage
		for i := 0; i < 15; i++ {
			history = append(history, schema.ChatMessage{Role: schema.RoleUser, Text: fmt.Sprintf("msg-%d", i)})
		}

		messages := BuildConversation(history, "current")

		require.Len(t, messages, HistoryWindow+1)
		assert.Equal(t, "msg-5", messages[0].Content)
		assert.Equal(t, "current", messages[len(messages)-1].Content)
	})

	t.Run("role mapping", func(t *testing.T) {
		history := []schema.ChatMessage{
			{Role: schema.RoleUser, Text: "hi"},
			{Role: schema.RoleModel, Text: "hello"},
			{Role: schema.RoleAssistant, Text: "how can I help"},
			{Role: "system", Text: "unknown role"},
		}

		messages := BuildConversation(history, "current")

		require.Len(t, messages, 5)
		assert.Equal(t, schema.RoleUser, messages[0].Role)
		assert.Equal(t, schema.RoleModel, messages[1].Role)
		assert.Equal(t, schema.RoleModel, messages[2].Role)
		assert.Equal(t, schema.RoleUser, messages[3].Role)
		assert.Equal(t, schema.RoleUser, messages[4].Role)
	})

	t.Run("skips empty turns", func(t *testing.T) {
		history := []schema.ChatMessage{
			{},
			{Role: schema.RoleUser, Text: "hi"},
		}

		messages := BuildConversation(history, "current")
		require.Len(t, messages, 2)
	})

	t.Run("current message is final user turn", func(t *testing.T) {
		messages := BuildConversation(nil, "what about fever?")

		require.Len(t, messages, 1)
		assert.Equal(t, schema.RoleUser, messages[0].Role)
		assert.Equal(t, "what about fever?", messages[0].Content)
	})
}

func TestCombinedReasoning(t *testing.T) {
	client := &mockLLMClient{
		model:    "test-model",
		response: "```json\n{\"intent\":\"medical_question\",\"urgency\":\"medium\",\"needs_professional\":true,\"answer\":\"Monitor your temperature.\"}\n```",
	}

	history := []schema.ChatMessage{
		{Role: schema.RoleUser, Text: "I feel warm"},
		{Role: schema.RoleAssistant, Text: "How long has this been going on?"},
	}

	result, err := async.Await(CombinedReasoning(context.Background(), client, "Is 38C a fever?", history, "[SOURCE 1]\nTITLE: Fever\nURL: https://example.org/fever\n\nSUMMARY:\nFever basics."))

	require.NoError(t, err)
	assert.Equal(t, schema.IntentMedicalQuestion, result.Intent)
	assert.Equal(t, schema.UrgencyMedium, result.Urgency)
	assert.Equal(t, "Monitor your temperature.", result.Answer)

	require.Len(t, client.captured, 1)
	sent := client.captured[0]
	require.Len(t, sent, 3)
	assert.Equal(t, "Is 38C a fever?", sent[len(sent)-1].Content)
}

func TestCombinedReasoning_ClientError(t *testing.T) {
	client := &mockLLMClient{err: fmt.Errorf("api unavailable")}

	_, err := async.Await(CombinedReasoning(context.Background(), client, "hello", nil, ""))
	assert.Error(t, err)
}

func TestStreamingSystemPrompt(t *testing.T) {
	t.Run("embeds context", func(t *testing.T) {
		prompt, err := StreamingSystemPrompt("FEVER FACTS")
		require.NoError(t, err)
		assert.Contains(t, prompt, "FEVER FACTS")
	})

	t.Run("substitutes no-context sentence", func(t *testing.T) {
		prompt, err := StreamingSystemPrompt("")
		require.NoError(t, err)
		assert.Contains(t, prompt, schema.PromptNoContext)
	})
}
