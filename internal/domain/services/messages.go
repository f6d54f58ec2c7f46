package services

import (
	"context"

	"trident/internal/domain/models"
)

// MessageService defines the client-side message operations
type MessageService interface {
	// CreateMessage stores one logical message in all three backend
	// representations (rag, raw, raw-model). The three creates run
	// concurrently; the call succeeds only when every one of them does.
	// Siblings that committed before a failure are not rolled back.
	CreateMessage(ctx context.Context, req *CreateMessageRequest) (*CreateAllResult, error)

	// ListMessageIDs retrieves the message IDs of a conversation
	ListMessageIDs(ctx context.Context, conversationID string) ([]string, error)

	// ListMessages retrieves a page of a conversation's messages,
	// oldest first. A non-positive limit selects the default page size.
	ListMessages(ctx context.Context, conversationID string, skip, limit int) ([]models.Message, error)

	// GetMessage retrieves a single message by ID
	GetMessage(ctx context.Context, messageID string) (*models.Message, error)

	// DeleteMessage removes a message by ID
	DeleteMessage(ctx context.Context, messageID string) error
}

// CreateMessageRequest is the DTO for creating a message
type CreateMessageRequest struct {
	ConversationID string      `json:"conversation_id"`
	Role           models.Role `json:"role"`
	Content        string      `json:"content"`
}

// CreateAllResult holds the three representations created for one message.
// The IDs differ; conversation, role and content are the same in each.
type CreateAllResult struct {
	RAG      models.Message `json:"rag"`
	Raw      models.Message `json:"raw"`
	RawModel models.Message `json:"raw_model"`
}
