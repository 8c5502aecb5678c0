package memory

import (
	"context"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.uber.org/zap"

	"github.com/vytalcare/health-navigator/schema"
)

// ChatThread is one persisted conversation, keyed by the client-supplied
// session id. Messages are ordered oldest first.
type ChatThread struct {
	SessionID string               `json:"sessionId" bson:"_id"`
	UserID    string               `json:"userId" bson:"userId"`
	Messages  []schema.ChatMessage `json:"messages" bson:"messages"`
	UpdatedAt int64                `json:"updatedAt" bson:"updatedAt"` // unix millis
}

func (t ChatThread) Id() string { return t.SessionID }

func (t ChatThread) CollectionName() string { return "chat_threads" }

// HistoryManager loads and saves chat threads. A nil collection disables
// persistence, which keeps single-shot callers and tests free of Mongo.
type HistoryManager struct {
	collection odm.OdmCollectionInterface[ChatThread]
	maxTurns   int
}

func NewHistoryManager(collection odm.OdmCollectionInterface[ChatThread], maxTurns int) *HistoryManager {
	return &HistoryManager{collection: collection, maxTurns: maxTurns}
}

// LoadThread returns the thread for a session. Missing sessions and lookup
// failures both yield an empty thread so the conversation can continue.
func (m *HistoryManager) LoadThread(ctx context.Context, sessionID string) *ChatThread {
	if m.collection == nil || sessionID == "" {
		return &ChatThread{SessionID: sessionID}
	}

	thread, err := async.Await(m.collection.FindOneByID(ctx, sessionID))
	if err != nil {
		logger.Error("Failed to load chat thread", zap.String("sessionId", sessionID), zap.Error(err))
		return &ChatThread{SessionID: sessionID}
	}

	return thread
}

// AppendTurn records a user message and the reply produced for it, then
// persists the trimmed thread.
func (m *HistoryManager) AppendTurn(ctx context.Context, thread *ChatThread, userText, replyText string, sources []string) error {
	now := time.Now().UnixMilli()
	thread.Messages = append(thread.Messages,
		schema.ChatMessage{Role: schema.RoleUser, Text: userText, CreatedAt: now},
		schema.ChatMessage{Role: schema.RoleAssistant, Text: replyText, Sources: sources, CreatedAt: now},
	)
	return m.SaveThread(ctx, thread)
}

// SaveThread trims the thread to the retention window and writes it.
func (m *HistoryManager) SaveThread(ctx context.Context, thread *ChatThread) error {
	if m.collection == nil || thread.SessionID == "" {
		return nil
	}

	thread.Messages = m.trimThread(thread.Messages)
	thread.UpdatedAt = time.Now().UnixMilli()

	_, err := async.Await(m.collection.Save(ctx, *thread))
	if err != nil {
		logger.Error("Failed to save chat thread", zap.String("sessionId", thread.SessionID), zap.Error(err))
		return err
	}

	return nil
}

// trimThread keeps the last maxTurns user messages and the replies that
// follow them. Threads with fewer user messages are returned unchanged.
func (m *HistoryManager) trimThread(msgs []schema.ChatMessage) []schema.ChatMessage {
	if m.maxTurns <= 0 || len(msgs) == 0 {
		return []schema.ChatMessage{}
	}

	usersSeen := 0
	start := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == schema.RoleUser {
			usersSeen++
			if usersSeen == m.maxTurns {
				start = i
				break
			}
		}
	}

	return msgs[start:]
}
