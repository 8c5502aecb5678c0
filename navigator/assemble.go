package navigator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/vytalcare/health-navigator/schema"
)

// urlPattern is the last-resort source extractor applied to the raw context
// block when neither the adapter nor the model reported sources.
var urlPattern = regexp.MustCompile(`https?://[^\s)]+`)

// assembleInput carries everything the assembler needs from the flow stages.
type assembleInput struct {
	model            string
	reasoning        *schema.ReasoningResult
	adapterSources   []schema.SourceRef
	contextBlock     string
	contextRetrieved bool
	toolSummary      string
	toolSummaryUsed  bool
}

// assembleResponse builds the final response payload. Source precedence is
// adapter-extracted sources, then model-reported sources_used, then URLs
// scraped from the context text. The sources slice is always non-nil.
func assembleResponse(in assembleInput) *schema.AssembledResponse {
	sources := adapterSourceURLs(in.adapterSources)
	if len(sources) == 0 {
		sources = normalizeModelSources(in.reasoning.SourcesUsed)
	}
	if len(sources) == 0 {
		sources = urlPattern.FindAllString(in.contextBlock, -1)
	}
	if sources == nil {
		sources = []string{}
	}

	answer := in.reasoning.AnswerText()
	if answer == "" {
		answer = in.toolSummary
	}

	safety := in.reasoning.SafetyNotes
	if safety == "" {
		safety = schema.DefaultSafetyNote
	}

	intent := in.reasoning.Intent
	if intent == "" {
		intent = schema.IntentOther
	}

	urgency := in.reasoning.Urgency
	if urgency == "" {
		urgency = schema.UrgencyLow
	}

	return &schema.AssembledResponse{
		Response:          displayText(answer, in.reasoning.KeyPoints, safety),
		Intent:            intent,
		Urgency:           urgency,
		NeedsProfessional: in.reasoning.NeedsProfessional,
		SafetyNotes:       safety,
		Sources:           sources,
		Metadata: schema.ResponseMetadata{
			ModelUsed:        in.model,
			ContextRetrieved: in.contextRetrieved,
			ToolSummaryUsed:  in.toolSummaryUsed,
		},
	}
}

// displayText renders the plain-text reply: the answer, numbered key points
// when present, and the safety note.
func displayText(answer string, keyPoints []string, safety string) string {
	var text strings.Builder
	text.WriteString("ANSWER:\n")
	text.WriteString(answer)

	if len(keyPoints) > 0 {
		text.WriteString("\n\nKEY POINTS:")
		for i, point := range keyPoints {
			fmt.Fprintf(&text, "\n%d. %s", i+1, point)
		}
	}

	text.WriteString("\n\n")
	text.WriteString(safety)
	return text.String()
}

func adapterSourceURLs(sources []schema.SourceRef) []string {
	urls := make([]string, 0, len(sources))
	for _, src := range sources {
		if src.URL != "" {
			urls = append(urls, src.URL)
		}
	}
	return urls
}

// normalizeModelSources flattens the model's sources_used list. Items may be
// bare URL strings or objects carrying "url" or "uri"; anything else is
// dropped.
func normalizeModelSources(items []json.RawMessage) []string {
	urls := make([]string, 0, len(items))
	for _, item := range items {
		var asString string
		if err := json.Unmarshal(item, &asString); err == nil {
			if asString != "" {
				urls = append(urls, asString)
			}
			continue
		}

		var asObject struct {
			URL string `json:"url"`
			URI string `json:"uri"`
		}
		if err := json.Unmarshal(item, &asObject); err != nil {
			continue
		}
		if asObject.URL != "" {
			urls = append(urls, asObject.URL)
		} else if asObject.URI != "" {
			urls = append(urls, asObject.URI)
		}
	}
	return urls
}
