package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytalcare/health-navigator/schema"
)

func TestHistoryManager_LoadThread(t *testing.T) {
	t.Run("nil collection", func(t *testing.T) {
		m := NewHistoryManager(nil, 10)
		thread := m.LoadThread(context.Background(), "session-1")

		require.NotNil(t, thread)
		assert.Equal(t, "session-1", thread.SessionID)
		assert.Empty(t, thread.Messages)
	})

	t.Run("empty session id", func(t *testing.T) {
		m := NewHistoryManager(nil, 10)
		thread := m.LoadThread(context.Background(), "")

		require.NotNil(t, thread)
		assert.Empty(t, thread.Messages)
	})
}

func TestHistoryManager_AppendTurn(t *testing.T) {
	m := NewHistoryManager(nil, 10)
	thread := &ChatThread{SessionID: "session-1"}

	err := m.AppendTurn(context.Background(), thread, "Is 38C a fever?", "ANSWER:\nYes, mildly.", []string{"https://example.org/fever"})

	require.NoError(t, err)
	require.Len(t, thread.Messages, 2)

	assert.Equal(t, schema.RoleUser, thread.Messages[0].Role)
	assert.Equal(t, "Is 38C a fever?", thread.Messages[0].Text)

	assert.Equal(t, schema.RoleAssistant, thread.Messages[1].Role)
	assert.Equal(t, "ANSWER:\nYes, mildly.", thread.Messages[1].Text)
	assert.Equal(t, []string{"https://example.org/fever"}, thread.Messages[1].Sources)
	assert.NotZero(t, thread.Messages[1].CreatedAt)
}

func TestHistoryManager_trimThread(t *testing.T) {
	user := func(text string) schema.ChatMessage {
		return schema.ChatMessage{Role: schema.RoleUser, Text: text}
	}
	assistant := func(text string) schema.ChatMessage {
		return schema.ChatMessage{Role: schema.RoleAssistant, Text: text}
	}

	tests := []struct {
		name     string
		maxTurns int
		input    []schema.ChatMessage
		expected []schema.ChatMessage
	}{
		{
			name:     "empty messages",
			maxTurns: 5,
			input:    []schema.ChatMessage{},
			expected: []schema.ChatMessage{},
		},
		{
			name:     "maxTurns is 0",
			maxTurns: 0,
			input:    []schema.ChatMessage{user("hello")},
			expected: []schema.ChatMessage{},
		},
		{
			name:     "fewer turns than max",
			maxTurns: 5,
			input:    []schema.ChatMessage{user("q1"), assistant("a1")},
			expected: []schema.ChatMessage{user("q1"), assistant("a1")},
		},
		{
			name:     "trims oldest user turns",
			maxTurns: 2,
			input: []schema.ChatMessage{
				user("q1"), assistant("a1"),
				user("q2"), assistant("a2"),
				user("q3"), assistant("a3"),
			},
			expected: []schema.ChatMessage{
				user("q2"), assistant("a2"),
				user("q3"), assistant("a3"),
			},
		},
		{
			name:     "keeps replies after boundary user turn",
			maxTurns: 1,
			input: []schema.ChatMessage{
				user("q1"), assistant("a1"),
				user("q2"), assistant("a2"), assistant("a2-followup"),
			},
			expected: []schema.ChatMessage{
				user("q2"), assistant("a2"), assistant("a2-followup"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewHistoryManager(nil, tt.maxTurns)
			assert.Equal(t, tt.expected, m.trimThread(tt.input))
		})
	}
}
