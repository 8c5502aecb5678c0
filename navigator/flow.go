package navigator

import (
	"context"
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.uber.org/zap"

	"github.com/vytalcare/health-navigator/llm"
	"github.com/vytalcare/health-navigator/prompts"
	"github.com/vytalcare/health-navigator/schema"
)

// FlowConfig wires a ChatFlow. RetrieveContext may be nil, in which case the
// flow runs on general knowledge only.
type FlowConfig struct {
	Client            llm.LLMClient
	RetrieveContext   RetrieveContextFunc
	EnableToolSummary bool
}

// ChatFlow is the chat orchestration pipeline: context retrieval, a single
// combined reasoning call, an optional tool-summary call, and response
// assembly. One ChatFlow serves all requests; per-call state stays on the
// stack.
type ChatFlow struct {
	config FlowConfig
}

func NewChatFlow(config FlowConfig) *ChatFlow {
	return &ChatFlow{config: config}
}

// Run executes the full pipeline for one message. It never returns an error:
// any internal failure degrades into an apologetic terminal response so the
// caller always has something to show the user.
func (f *ChatFlow) Run(ctx context.Context, message string, history []schema.ChatMessage) *schema.AssembledResponse {
	contextBlock, adapterSources, contextRetrieved := f.retrieveContext(ctx, message)

	reasoning, err := async.Await(prompts.CombinedReasoning(ctx, f.config.Client, message, history, contextBlock))
	if err != nil {
		logger.Error("Chat flow failed", zap.Error(err))
		return f.errorResponse(err)
	}

	toolSummary := ""
	toolSummaryUsed := false
	if f.config.EnableToolSummary && hasToolResults(reasoning.ToolResults) {
		toolSummary, _ = async.Await(prompts.SummarizeToolResults(ctx, f.config.Client, message, reasoning.ToolResults))
		toolSummaryUsed = true
	}

	return assembleResponse(assembleInput{
		model:            f.config.Client.GetModel(),
		reasoning:        reasoning,
		adapterSources:   adapterSources,
		contextBlock:     contextBlock,
		contextRetrieved: contextRetrieved,
		toolSummary:      toolSummary,
		toolSummaryUsed:  toolSummaryUsed,
	})
}

// retrieveContext runs the retrieval hook and normalizes its result. A
// retrieval failure is downgraded to the placeholder context so the flow
// continues on general knowledge.
func (f *ChatFlow) retrieveContext(ctx context.Context, query string) (string, []schema.SourceRef, bool) {
	if f.config.RetrieveContext == nil {
		return "", nil, false
	}

	result, err := f.config.RetrieveContext(ctx, query)
	if err != nil {
		logger.Log.Warn("Context retrieval failed", zap.Error(err))
		return schema.PlaceholderNoContext, nil, false
	}

	contextBlock, sources := renderContext(classifyContext(result))
	return contextBlock, sources, contextBlock != ""
}

func hasToolResults(raw []byte) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func (f *ChatFlow) errorResponse(err error) *schema.AssembledResponse {
	return &schema.AssembledResponse{
		Response: fmt.Sprintf(
			"I apologize, but I encountered an error: %s. Please try again or consult a healthcare professional for urgent medical concerns.",
			err.Error()),
		Intent:            schema.IntentError,
		Urgency:           schema.UrgencyLow,
		NeedsProfessional: true,
		SafetyNotes:       schema.EscalationSafetyNote,
		Sources:           []string{},
		Metadata: schema.ResponseMetadata{
			ModelUsed: f.config.Client.GetModel(),
			Error:     err.Error(),
		},
	}
}
