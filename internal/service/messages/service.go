// Package messages implements the client-side message operations. The
// backend keeps three representations of every message behind separate
// endpoints; CreateMessage fans one logical create out to all of them and
// succeeds only when each copy commits.
package messages

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"trident/internal/api"
	"trident/internal/cache"
	"trident/internal/config"
	"trident/internal/domain"
	"trident/internal/domain/models"
	"trident/internal/domain/services"
)

// TagMessage labels every cached message query. Any committed message
// mutation invalidates the whole tag before returning.
const TagMessage = "Message"

// Variant identifies one of the backend's message representations
type Variant string

const (
	VariantRAG      Variant = "rag"
	VariantRaw      Variant = "raw"
	VariantRawModel Variant = "raw-model"
)

// createOrder is the fixed order in which fan-out outcomes are inspected.
// When several variants fail, the first failure in this order is the one
// reported to the caller, regardless of which finished first.
var createOrder = [3]Variant{VariantRAG, VariantRaw, VariantRawModel}

// path returns the creation endpoint for the variant
func (v Variant) path() string {
	switch v {
	case VariantRaw:
		return "/messages/raw/"
	case VariantRawModel:
		return "/messages/raw-model/"
	default:
		return "/messages/"
	}
}

// Service implements the MessageService interface
type Service struct {
	backend api.Doer
	cache   *cache.Store
	logger  *slog.Logger
}

// NewService creates a new message service
func NewService(backend api.Doer, store *cache.Store, logger *slog.Logger) services.MessageService {
	return &Service{
		backend: backend,
		cache:   store,
		logger:  logger,
	}
}

// CreateMessage stores one logical message in all three backend
// representations. The three creates start together and the call joins
// once on all of them; there is no partial result. A variant that
// committed before a sibling failed stays committed.
func (s *Service) CreateMessage(ctx context.Context, req *services.CreateMessageRequest) (*services.CreateAllResult, error) {
	// Validate request
	if err := s.validateCreateMessageRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	sender, err := wireRole(req.Role)
	if err != nil {
		return nil, err
	}

	// Every variant receives the identical payload
	payload := createPayload{
		ConversationID: req.ConversationID,
		SenderType:     sender,
		Content:        req.Content,
	}

	// One slot per variant; each goroutine writes only its own index
	// and all of them converge at the single join below
	var (
		results [len(createOrder)]*models.Message
		errs    [len(createOrder)]error
		wg      sync.WaitGroup
	)

	for i, variant := range createOrder {
		wg.Add(1)
		go func(index int, v Variant) {
			defer wg.Done()

			// Check for cancellation before doing any work
			select {
			case <-ctx.Done():
				errs[index] = ctx.Err()
				return
			default:
			}

			results[index], errs[index] = s.createVariant(ctx, v, payload)
		}(i, variant)
	}

	wg.Wait()

	// Slots are inspected in createOrder, not completion order
	for i, v := range createOrder {
		if errs[i] != nil {
			s.logger.Warn("message fan-out failed",
				"conversation_id", req.ConversationID,
				"variant", string(v),
				"error", errs[i],
			)
			return nil, fmt.Errorf("create %s message: %w", v, errs[i])
		}
	}

	result := &services.CreateAllResult{
		RAG:      *results[0],
		Raw:      *results[1],
		RawModel: *results[2],
	}

	// Cached message queries are stale now; retire them before returning
	s.cache.Invalidate(TagMessage)

	s.logger.Info("message created",
		"conversation_id", req.ConversationID,
		"rag_id", result.RAG.ID,
		"raw_id", result.Raw.ID,
		"raw_model_id", result.RawModel.ID,
	)

	return result, nil
}

// createVariant performs one of the three creates
func (s *Service) createVariant(ctx context.Context, v Variant, payload createPayload) (*models.Message, error) {
	env, err := s.backend.Post(ctx, v.path(), payload)
	if err != nil {
		return nil, err
	}

	var wire wireMessage
	if err := env.Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", v, err)
	}

	return wire.toMessage()
}

// ListMessageIDs retrieves the message IDs of a conversation
func (s *Service) ListMessageIDs(ctx context.Context, conversationID string) ([]string, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("%w: conversation id is required", domain.ErrValidation)
	}

	key := idsKey(conversationID)
	if v, ok := s.cache.Get(TagMessage, key); ok {
		if ids, ok := v.([]string); ok {
			s.logger.Debug("cache hit", "tag", TagMessage, "key", key)
			return ids, nil
		}
	}

	env, err := s.backend.Get(ctx, "/messages/conversation/"+url.PathEscape(conversationID)+"/ids")
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := env.Decode(&ids); err != nil {
		return nil, fmt.Errorf("failed to decode message ids: %w", err)
	}

	s.cache.Put(TagMessage, key, ids)
	return ids, nil
}

// ListMessages retrieves a page of a conversation's messages, oldest first
func (s *Service) ListMessages(ctx context.Context, conversationID string, skip, limit int) ([]models.Message, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("%w: conversation id is required", domain.ErrValidation)
	}
	if skip < 0 {
		return nil, fmt.Errorf("%w: skip must not be negative", domain.ErrValidation)
	}
	if limit <= 0 {
		limit = config.DefaultListLimit
	}
	if limit > config.MaxListLimit {
		return nil, fmt.Errorf("%w: limit must not exceed %d", domain.ErrValidation, config.MaxListLimit)
	}

	key := pageKey(conversationID, skip, limit)
	if v, ok := s.cache.Get(TagMessage, key); ok {
		if page, ok := v.([]models.Message); ok {
			s.logger.Debug("cache hit", "tag", TagMessage, "key", key)
			return page, nil
		}
	}

	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))
	path := "/messages/conversation/" + url.PathEscape(conversationID) + "?" + query.Encode()

	env, err := s.backend.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var wires []wireMessage
	if err := env.Decode(&wires); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	page := make([]models.Message, len(wires))
	for i := range wires {
		msg, err := wires[i].toMessage()
		if err != nil {
			return nil, err
		}
		page[i] = *msg
	}

	s.cache.Put(TagMessage, key, page)
	return page, nil
}

// GetMessage retrieves a single message by ID
func (s *Service) GetMessage(ctx context.Context, messageID string) (*models.Message, error) {
	if messageID == "" {
		return nil, fmt.Errorf("%w: message id is required", domain.ErrValidation)
	}

	key := messageKey(messageID)
	if v, ok := s.cache.Get(TagMessage, key); ok {
		if msg, ok := v.(*models.Message); ok {
			s.logger.Debug("cache hit", "tag", TagMessage, "key", key)
			return msg, nil
		}
	}

	env, err := s.backend.Get(ctx, "/messages/"+url.PathEscape(messageID))
	if err != nil {
		return nil, err
	}

	var wire wireMessage
	if err := env.Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	msg, err := wire.toMessage()
	if err != nil {
		return nil, err
	}

	s.cache.Put(TagMessage, key, msg)
	return msg, nil
}

// DeleteMessage removes a message by ID
func (s *Service) DeleteMessage(ctx context.Context, messageID string) error {
	if messageID == "" {
		return fmt.Errorf("%w: message id is required", domain.ErrValidation)
	}

	if _, err := s.backend.Delete(ctx, "/messages/"+url.PathEscape(messageID)); err != nil {
		return err
	}

	// Same rule as create: the mutation committed, so cached queries
	// must not outlive it
	s.cache.Invalidate(TagMessage)

	s.logger.Info("message deleted", "id", messageID)
	return nil
}

// Cache keys, namespaced by query shape

func idsKey(conversationID string) string {
	return "ids:" + conversationID
}

func pageKey(conversationID string, skip, limit int) string {
	return fmt.Sprintf("conversation:%s:%d:%d", conversationID, skip, limit)
}

func messageKey(messageID string) string {
	return "message:" + messageID
}

// Validation methods

func (s *Service) validateCreateMessageRequest(req *services.CreateMessageRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ConversationID, validation.Required),
		validation.Field(&req.Role,
			validation.Required,
			validation.In(models.RoleUser, models.RoleAssistant),
		),
		validation.Field(&req.Content,
			validation.Required,
			validation.Length(1, config.MaxContentLength),
		),
	)
}
