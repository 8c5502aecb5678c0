package navigator

import (
	"context"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/vytalcare/health-navigator/llm"
	"github.com/vytalcare/health-navigator/prompts"
	"github.com/vytalcare/health-navigator/schema"
)

// RunStream executes the token-streaming variant of the pipeline. Sources are
// emitted first so the client can render attributions before any answer text,
// then token frames as the model produces them. Failures after the stream has
// started are reported in-band with a terminal error frame; the accumulated
// answer text is returned for persistence.
func (f *ChatFlow) RunStream(ctx context.Context, message string, history []schema.ChatMessage, reporter Reporter) (string, error) {
	contextBlock, adapterSources, _ := f.retrieveContext(ctx, message)

	if len(adapterSources) > 0 {
		if err := reporter.Send(schema.NewSourcesFrame(adapterSources)); err != nil {
			return "", err
		}
	}

	systemPrompt, err := prompts.StreamingSystemPrompt(contextBlock)
	if err != nil {
		logger.Error("Failed to build streaming system prompt", zap.Error(err))
		reporter.Send(schema.NewErrorFrame(err.Error()))
		return "", err
	}

	messages := prompts.BuildConversation(history, message)

	var answer strings.Builder
	err = f.config.Client.GenerateInferenceStream(ctx, messages, func(token string) error {
		answer.WriteString(token)
		return reporter.Send(schema.NewTokenFrame(token))
	},
		llm.WithTemperature(0.7),
		llm.WithTopK(40),
		llm.WithTopP(0.95),
		llm.WithSystemPrompt(systemPrompt),
	)
	if err != nil {
		logger.Error("Streaming chat flow failed", zap.Error(err))
		reporter.Send(schema.NewErrorFrame(err.Error()))
		return answer.String(), err
	}

	return answer.String(), nil
}
