package navigator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytalcare/health-navigator/schema"
)

func TestAssembleResponse_SourcePrecedence(t *testing.T) {
	t.Run("adapter sources win", func(t *testing.T) {
		resp := assembleResponse(assembleInput{
			model: "test-model",
			reasoning: &schema.ReasoningResult{
				Answer:      "ok",
				SourcesUsed: []json.RawMessage{json.RawMessage(`"https://model.example/ignored"`)},
			},
			adapterSources: []schema.SourceRef{{Title: "Fever", URL: "https://example.org/fever"}},
			contextBlock:   "see https://context.example/ignored",
		})

		assert.Equal(t, []string{"https://example.org/fever"}, resp.Sources)
	})

	t.Run("model sources_used next, strings and objects", func(t *testing.T) {
		resp := assembleResponse(assembleInput{
			reasoning: &schema.ReasoningResult{
				Answer: "ok",
				SourcesUsed: []json.RawMessage{
					json.RawMessage(`"https://a.example"`),
					json.RawMessage(`{"url":"https://b.example"}`),
					json.RawMessage(`{"uri":"https://c.example"}`),
					json.RawMessage(`42`),
				},
			},
			contextBlock: "see https://context.example/ignored",
		})

		assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, resp.Sources)
	})

	t.Run("context URLs last", func(t *testing.T) {
		resp := assembleResponse(assembleInput{
			reasoning:    &schema.ReasoningResult{Answer: "ok"},
			contextBlock: "Read https://example.org/fever and (https://example.org/flu) for more.",
		})

		assert.Equal(t, []string{"https://example.org/fever", "https://example.org/flu"}, resp.Sources)
	})

	t.Run("sources never nil", func(t *testing.T) {
		resp := assembleResponse(assembleInput{reasoning: &schema.ReasoningResult{Answer: "ok"}})

		require.NotNil(t, resp.Sources)
		assert.Empty(t, resp.Sources)
	})
}

func TestAssembleResponse_DisplayText(t *testing.T) {
	t.Run("answer, key points, safety note", func(t *testing.T) {
		resp := assembleResponse(assembleInput{
			reasoning: &schema.ReasoningResult{
				Answer:      "Rest and hydrate.",
				KeyPoints:   []string{"Rest", "Drink water"},
				SafetyNotes: "See a doctor if symptoms worsen.",
			},
		})

		assert.Equal(t,
			"ANSWER:\nRest and hydrate.\n\nKEY POINTS:\n1. Rest\n2. Drink water\n\nSee a doctor if symptoms worsen.",
			resp.Response)
	})

	t.Run("no key points section when empty", func(t *testing.T) {
		resp := assembleResponse(assembleInput{
			reasoning: &schema.ReasoningResult{Answer: "Rest.", SafetyNotes: "Take care."},
		})

		assert.Equal(t, "ANSWER:\nRest.\n\nTake care.", resp.Response)
		assert.NotContains(t, resp.Response, "KEY POINTS")
	})

	t.Run("default safety note", func(t *testing.T) {
		resp := assembleResponse(assembleInput{reasoning: &schema.ReasoningResult{Answer: "Rest."}})

		assert.Equal(t, schema.DefaultSafetyNote, resp.SafetyNotes)
		assert.Contains(t, resp.Response, schema.DefaultSafetyNote)
	})
}

func TestAssembleResponse_Defaults(t *testing.T) {
	resp := assembleResponse(assembleInput{reasoning: &schema.ReasoningResult{Answer: "x"}})

	assert.Equal(t, schema.IntentOther, resp.Intent)
	assert.Equal(t, schema.UrgencyLow, resp.Urgency)
}

func TestAssembleResponse_ToolSummaryFillsEmptyAnswer(t *testing.T) {
	resp := assembleResponse(assembleInput{
		reasoning:       &schema.ReasoningResult{},
		toolSummary:     "Summarized tool output.",
		toolSummaryUsed: true,
	})

	assert.Contains(t, resp.Response, "Summarized tool output.")
	assert.True(t, resp.Metadata.ToolSummaryUsed)
}

func TestAssembleResponse_Metadata(t *testing.T) {
	resp := assembleResponse(assembleInput{
		model:            "gemini-2.0-flash",
		reasoning:        &schema.ReasoningResult{Answer: "x"},
		contextRetrieved: true,
	})

	assert.Equal(t, "gemini-2.0-flash", resp.Metadata.ModelUsed)
	assert.True(t, resp.Metadata.ContextRetrieved)
	assert.Empty(t, resp.Metadata.Error)
}
