package prompts

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.uber.org/zap"

	"github.com/vytalcare/health-navigator/llm"
	"github.com/vytalcare/health-navigator/schema"
)

// SummarizeToolResults condenses auxiliary tool output into natural language
// answering the original question. This call is best-effort enrichment: any
// failure yields a fixed fallback string, never an error.
func SummarizeToolResults(ctx context.Context, client llm.LLMClient, originalMessage string, toolResults json.RawMessage) <-chan async.Result[string] {
	return async.Go(func() (string, error) {
		userPrompt, err := loadPrompt("templates/tool_summary_user.md", map[string]string{
			"Question":    originalMessage,
			"ToolResults": indentJSON(toolResults),
		})
		if err != nil {
			logger.Error("Failed to load tool summary prompt", zap.Error(err))
			return schema.ToolSummaryFallback, nil
		}

		messages := []llm.Message{
			{Role: schema.RoleUser, Content: userPrompt},
		}

		var response strings.Builder
		err = client.GenerateInference(ctx, messages, func(chunk string) error {
			response.WriteString(chunk)
			return nil
		},
			llm.WithTemperature(0.5),
			llm.WithMaxTokens(1024),
		)
		if err != nil {
			logger.Error("Tool summary call failed", zap.Error(err))
			return schema.ToolSummaryFallback, nil
		}

		summary := strings.TrimSpace(response.String())
		if summary == "" {
			return schema.ToolSummaryEmpty, nil
		}

		return summary, nil
	})
}

func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
