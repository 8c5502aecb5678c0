package schema

import "encoding/json"

// Message roles. History written by the web client may carry the Gemini-style
// "model" role; everything else is treated as a user turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleModel     = "model"
)

// Intents the reasoning model classifies a message into.
const (
	IntentMedicalQuestion = "medical_question"
	IntentSymptomCheck    = "symptom_check"
	IntentMedicationInfo  = "medication_info"
	IntentGeneralAdvice   = "general_advice"
	IntentOther           = "other"
	IntentError           = "error"
)

// Urgency levels reported by the reasoning model.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Fixed fallback strings. Kept as named constants so tests can assert
// against them precisely.
const (
	// PlaceholderNoContext replaces the context block when retrieval fails.
	PlaceholderNoContext = "No medical context available."

	// PromptNoContext is embedded in the system instruction when no context
	// was retrieved at all.
	PromptNoContext = "No specific medical context available. Use general knowledge and recommend professional consultation."

	// DefaultSafetyNote is used when the model reports no safety notes or its
	// output could not be parsed.
	DefaultSafetyNote = "Please consult a healthcare professional for medical advice."

	// EscalationSafetyNote annotates terminal error responses.
	EscalationSafetyNote = "If you have urgent medical concerns, please contact a healthcare professional immediately."

	// ToolSummaryFallback is returned when the tool-summary call fails.
	ToolSummaryFallback = "Tool results processed, but summary generation failed."

	// ToolSummaryEmpty is returned when the tool-summary call yields no text.
	ToolSummaryEmpty = "Unable to summarize tool results."
)

// ChatMessage is one persisted turn of a conversation. Immutable once
// written; threads are ordered by CreatedAt ascending.
type ChatMessage struct {
	Role      string   `json:"role" bson:"role"`
	Text      string   `json:"text" bson:"text"`
	Sources   []string `json:"sources" bson:"sources"`
	CreatedAt int64    `json:"createdAt" bson:"createdAt"` // unix millis
}

// RetrievedDocument is a ranked retrieval hit. Rank order must be preserved
// when documents are concatenated into context text.
type RetrievedDocument struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// SourceRef is a document attribution surfaced to the client.
type SourceRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ReasoningResult is the JSON contract the reasoning model must satisfy.
// SourcesUsed items may be bare URL strings or {url|uri} objects, so they are
// kept raw until normalization. ToolResults is opaque; its presence triggers
// the optional tool-summary call.
type ReasoningResult struct {
	Intent            string            `json:"intent"`
	Urgency           string            `json:"urgency"`
	NeedsProfessional bool              `json:"needs_professional"`
	Answer            string            `json:"answer"`
	KeyPoints         []string          `json:"key_points"`
	SafetyNotes       string            `json:"safety_notes"`
	SourcesUsed       []json.RawMessage `json:"sources_used"`
	ToolResults       json.RawMessage   `json:"tool_results,omitempty"`

	// Older model revisions emit "response" instead of "answer".
	LegacyResponse string `json:"response,omitempty"`
}

// AnswerText returns the model's answer, falling back to the legacy field.
func (r *ReasoningResult) AnswerText() string {
	if r.Answer != "" {
		return r.Answer
	}
	return r.LegacyResponse
}

// ResponseMetadata describes how an AssembledResponse was produced.
type ResponseMetadata struct {
	ModelUsed        string `json:"modelUsed"`
	ContextRetrieved bool   `json:"contextRetrieved"`
	ToolSummaryUsed  bool   `json:"toolSummaryUsed"`
	Error            string `json:"error,omitempty"`
}

// AssembledResponse is the final payload returned to the caller. Constructed
// fresh per call; the caller decides persistence.
type AssembledResponse struct {
	Response          string           `json:"response"`
	Intent            string           `json:"intent"`
	Urgency           string           `json:"urgency"`
	NeedsProfessional bool             `json:"needsProfessional"`
	SafetyNotes       string           `json:"safetyNotes"`
	Sources           []string         `json:"sources"`
	Metadata          ResponseMetadata `json:"metadata"`
}
