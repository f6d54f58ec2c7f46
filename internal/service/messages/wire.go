package messages

import (
	"fmt"
	"time"

	"trident/internal/domain"
	"trident/internal/domain/models"
)

// Sender encodings used by the backend
const (
	wireRoleUser = "User"
	wireRoleBot  = "Bot"
)

// wireRole translates a domain role into the backend's sender encoding
func wireRole(r models.Role) (string, error) {
	switch r {
	case models.RoleUser:
		return wireRoleUser, nil
	case models.RoleAssistant:
		return wireRoleBot, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", domain.ErrValidation, r)
}

// roleFromWire translates the backend's sender encoding back into a domain
// role. Unknown encodings are an error, not a silent default.
func roleFromWire(senderType string) (models.Role, error) {
	switch senderType {
	case wireRoleUser:
		return models.RoleUser, nil
	case wireRoleBot:
		return models.RoleAssistant, nil
	}
	return "", fmt.Errorf("backend sent unknown sender type %q", senderType)
}

// createPayload is the body sent to each of the three creation endpoints
type createPayload struct {
	ConversationID string `json:"conversation_id"`
	SenderType     string `json:"sender_type"`
	Content        string `json:"content"`
}

// wireMessage is the backend's representation of a message
type wireMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderType     string    `json:"sender_type"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// toMessage converts a wire message into the domain model
func (m *wireMessage) toMessage() (*models.Message, error) {
	role, err := roleFromWire(m.SenderType)
	if err != nil {
		return nil, err
	}
	return &models.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           role,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}, nil
}
