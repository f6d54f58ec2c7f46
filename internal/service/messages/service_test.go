package messages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"trident/internal/api"
	"trident/internal/cache"
	"trident/internal/config"
	"trident/internal/domain"
	"trident/internal/domain/models"
	"trident/internal/domain/services"
)

// fakeBackend is a test implementation of api.Doer. Responses are stubbed
// per "METHOD path"; every call is recorded for count and payload checks.
type fakeBackend struct {
	mu        sync.Mutex
	calls     []recordedCall
	responses map[string]fakeResponse
	delays    map[string]time.Duration
}

type recordedCall struct {
	method  string
	path    string
	payload any
}

type fakeResponse struct {
	env *api.Envelope
	err error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		responses: make(map[string]fakeResponse),
		delays:    make(map[string]time.Duration),
	}
}

func (f *fakeBackend) stub(method, path string, env *api.Envelope, err error) {
	f.responses[method+" "+path] = fakeResponse{env: env, err: err}
}

func (f *fakeBackend) dispatch(ctx context.Context, method, path string, payload any) (*api.Envelope, error) {
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{method: method, path: path, payload: payload})
	delay := f.delays[path]
	f.mu.Unlock()

	// Simulate work with delay
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, &domain.TransportError{Op: method + " " + path, Err: ctx.Err()}
		}
	}

	r, ok := f.responses[method+" "+path]
	if !ok {
		return nil, &domain.BackendError{
			Status:  http.StatusInternalServerError,
			Message: "unexpected call: " + method + " " + path,
		}
	}
	return r.env, r.err
}

func (f *fakeBackend) Get(ctx context.Context, path string) (*api.Envelope, error) {
	return f.dispatch(ctx, http.MethodGet, path, nil)
}

func (f *fakeBackend) Post(ctx context.Context, path string, payload any) (*api.Envelope, error) {
	return f.dispatch(ctx, http.MethodPost, path, payload)
}

func (f *fakeBackend) PostMultipart(ctx context.Context, path, contentType string, body io.Reader) (*api.Envelope, error) {
	return f.dispatch(ctx, http.MethodPost, path, contentType)
}

func (f *fakeBackend) Delete(ctx context.Context, path string) (*api.Envelope, error) {
	return f.dispatch(ctx, http.MethodDelete, path, nil)
}

func (f *fakeBackend) callCount(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			count++
		}
	}
	return count
}

func (f *fakeBackend) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) payloads(method, path string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []any
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			out = append(out, c.payload)
		}
	}
	return out
}

// Test helpers

func newTestService(backend api.Doer, store *cache.Store) services.MessageService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewService(backend, store, logger)
}

func messageEnvelope(t *testing.T, id, conversationID, senderType, content string) *api.Envelope {
	t.Helper()

	data, err := json.Marshal(map[string]any{
		"id":              id,
		"conversation_id": conversationID,
		"sender_type":     senderType,
		"content":         content,
		"created_at":      "2026-08-25T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("failed to marshal envelope data: %v", err)
	}
	return &api.Envelope{
		StatusCode: http.StatusCreated,
		Message:    "Message created successfully",
		Data:       data,
	}
}

// stubAllCreates makes every creation endpoint succeed for one message
func stubAllCreates(t *testing.T, f *fakeBackend, conversationID, senderType, content string) {
	t.Helper()
	f.stub(http.MethodPost, "/messages/", messageEnvelope(t, "rag-1", conversationID, senderType, content), nil)
	f.stub(http.MethodPost, "/messages/raw/", messageEnvelope(t, "raw-1", conversationID, senderType, content), nil)
	f.stub(http.MethodPost, "/messages/raw-model/", messageEnvelope(t, "raw-model-1", conversationID, senderType, content), nil)
}

func TestService_CreateMessage(t *testing.T) {
	req := &services.CreateMessageRequest{
		ConversationID: "conv-1",
		Role:           models.RoleUser,
		Content:        "hello there",
	}

	t.Run("creates all three variants", func(t *testing.T) {
		backend := newFakeBackend()
		stubAllCreates(t, backend, "conv-1", "User", "hello there")
		svc := newTestService(backend, cache.New())

		result, err := svc.CreateMessage(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.RAG.ID != "rag-1" {
			t.Errorf("expected rag id 'rag-1', got %s", result.RAG.ID)
		}
		if result.Raw.ID != "raw-1" {
			t.Errorf("expected raw id 'raw-1', got %s", result.Raw.ID)
		}
		if result.RawModel.ID != "raw-model-1" {
			t.Errorf("expected raw-model id 'raw-model-1', got %s", result.RawModel.ID)
		}

		// The wire sender comes back translated into the domain role
		for _, msg := range []models.Message{result.RAG, result.Raw, result.RawModel} {
			if msg.Role != models.RoleUser {
				t.Errorf("expected role %q, got %q", models.RoleUser, msg.Role)
			}
			if msg.ConversationID != "conv-1" {
				t.Errorf("expected conversation 'conv-1', got %s", msg.ConversationID)
			}
			if msg.Content != "hello there" {
				t.Errorf("expected content 'hello there', got %q", msg.Content)
			}
		}

		for _, path := range []string{"/messages/", "/messages/raw/", "/messages/raw-model/"} {
			if got := backend.callCount(http.MethodPost, path); got != 1 {
				t.Errorf("expected 1 call to %s, got %d", path, got)
			}
		}
	})

	t.Run("sends the identical payload to every variant", func(t *testing.T) {
		backend := newFakeBackend()
		stubAllCreates(t, backend, "conv-1", "User", "hello there")
		svc := newTestService(backend, cache.New())

		if _, err := svc.CreateMessage(context.Background(), req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var seen []createPayload
		for _, path := range []string{"/messages/", "/messages/raw/", "/messages/raw-model/"} {
			payloads := backend.payloads(http.MethodPost, path)
			if len(payloads) != 1 {
				t.Fatalf("expected 1 payload for %s, got %d", path, len(payloads))
			}
			p, ok := payloads[0].(createPayload)
			if !ok {
				t.Fatalf("payload for %s is %T, not createPayload", path, payloads[0])
			}
			seen = append(seen, p)
		}

		if seen[0] != seen[1] || seen[1] != seen[2] {
			t.Errorf("variants received different payloads: %+v", seen)
		}
		if seen[0].SenderType != "User" {
			t.Errorf("expected sender_type 'User', got %q", seen[0].SenderType)
		}
	})

	t.Run("assistant role is sent as Bot", func(t *testing.T) {
		backend := newFakeBackend()
		stubAllCreates(t, backend, "conv-1", "Bot", "on it")
		svc := newTestService(backend, cache.New())

		result, err := svc.CreateMessage(context.Background(), &services.CreateMessageRequest{
			ConversationID: "conv-1",
			Role:           models.RoleAssistant,
			Content:        "on it",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		payloads := backend.payloads(http.MethodPost, "/messages/")
		if p := payloads[0].(createPayload); p.SenderType != "Bot" {
			t.Errorf("expected sender_type 'Bot', got %q", p.SenderType)
		}
		if result.RAG.Role != models.RoleAssistant {
			t.Errorf("expected role to round-trip to %q, got %q", models.RoleAssistant, result.RAG.Role)
		}
	})

	t.Run("validation failure short-circuits before any call", func(t *testing.T) {
		backend := newFakeBackend()
		svc := newTestService(backend, cache.New())

		cases := []struct {
			name string
			req  *services.CreateMessageRequest
		}{
			{"missing conversation", &services.CreateMessageRequest{Role: models.RoleUser, Content: "hi"}},
			{"missing content", &services.CreateMessageRequest{ConversationID: "conv-1", Role: models.RoleUser}},
			{"missing role", &services.CreateMessageRequest{ConversationID: "conv-1", Content: "hi"}},
			{"unknown role", &services.CreateMessageRequest{ConversationID: "conv-1", Role: models.Role("moderator"), Content: "hi"}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				result, err := svc.CreateMessage(context.Background(), tc.req)
				if result != nil {
					t.Error("expected nil result")
				}
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
			})
		}

		if backend.totalCalls() != 0 {
			t.Errorf("expected no backend calls for invalid requests, got %d", backend.totalCalls())
		}
	})

	t.Run("single failure fails the whole create", func(t *testing.T) {
		backend := newFakeBackend()
		backend.stub(http.MethodPost, "/messages/", messageEnvelope(t, "rag-1", "conv-1", "User", "hello there"), nil)
		backend.stub(http.MethodPost, "/messages/raw/", nil, &domain.BackendError{Status: http.StatusInternalServerError, Message: "raw store down"})
		backend.stub(http.MethodPost, "/messages/raw-model/", messageEnvelope(t, "raw-model-1", "conv-1", "User", "hello there"), nil)
		svc := newTestService(backend, cache.New())

		result, err := svc.CreateMessage(context.Background(), req)
		if result != nil {
			t.Error("expected nil result on partial failure")
		}
		if err == nil {
			t.Fatal("expected error when one variant fails")
		}
		if !strings.Contains(err.Error(), "create raw message") {
			t.Errorf("expected error to name the raw variant, got: %v", err)
		}

		var be *domain.BackendError
		if !errors.As(err, &be) {
			t.Fatalf("expected BackendError in chain, got %v", err)
		}
		if be.Status != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", be.Status)
		}

		// Committed siblings are left alone: all three creates were
		// attempted and nothing was deleted afterwards
		if backend.totalCalls() != 3 {
			t.Errorf("expected exactly 3 calls, got %d", backend.totalCalls())
		}
	})

	t.Run("first error in priority order wins", func(t *testing.T) {
		backend := newFakeBackend()
		// rag finishes last but still owns the reported error
		backend.delays["/messages/"] = 60 * time.Millisecond
		backend.delays["/messages/raw-model/"] = 20 * time.Millisecond
		backend.stub(http.MethodPost, "/messages/", nil, &domain.BackendError{Status: http.StatusInternalServerError, Message: "rag exploded"})
		backend.stub(http.MethodPost, "/messages/raw/", nil, &domain.BackendError{Status: http.StatusBadGateway, Message: "raw exploded"})
		backend.stub(http.MethodPost, "/messages/raw-model/", nil, &domain.BackendError{Status: http.StatusServiceUnavailable, Message: "raw-model exploded"})
		svc := newTestService(backend, cache.New())

		_, err := svc.CreateMessage(context.Background(), req)
		if err == nil {
			t.Fatal("expected error when all variants fail")
		}
		if !strings.Contains(err.Error(), "create rag message") {
			t.Errorf("expected the rag error to win, got: %v", err)
		}

		var be *domain.BackendError
		if !errors.As(err, &be) {
			t.Fatalf("expected BackendError in chain, got %v", err)
		}
		if be.Status != http.StatusInternalServerError {
			t.Errorf("expected the rag status 500, got %d", be.Status)
		}
	})

	t.Run("failure leaves the cache untouched", func(t *testing.T) {
		backend := newFakeBackend()
		backend.stub(http.MethodPost, "/messages/", messageEnvelope(t, "rag-1", "conv-1", "User", "hello there"), nil)
		backend.stub(http.MethodPost, "/messages/raw/", nil, &domain.BackendError{Status: http.StatusInternalServerError, Message: "raw store down"})
		backend.stub(http.MethodPost, "/messages/raw-model/", messageEnvelope(t, "raw-model-1", "conv-1", "User", "hello there"), nil)

		store := cache.New()
		store.Put(TagMessage, "probe", "alive")
		svc := newTestService(backend, store)

		if _, err := svc.CreateMessage(context.Background(), req); err == nil {
			t.Fatal("expected error")
		}

		if _, ok := store.Get(TagMessage, "probe"); !ok {
			t.Error("failed create must not invalidate the cache")
		}
	})

	t.Run("success invalidates cached message queries", func(t *testing.T) {
		backend := newFakeBackend()
		stubAllCreates(t, backend, "conv-1", "User", "hello there")

		store := cache.New()
		store.Put(TagMessage, "probe", "stale")
		svc := newTestService(backend, store)

		if _, err := svc.CreateMessage(context.Background(), req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, ok := store.Get(TagMessage, "probe"); ok {
			t.Error("successful create must invalidate cached message queries")
		}
	})

	t.Run("cancelled context stops the fan-out", func(t *testing.T) {
		backend := newFakeBackend()
		stubAllCreates(t, backend, "conv-1", "User", "hello there")

		store := cache.New()
		store.Put(TagMessage, "probe", "alive")
		svc := newTestService(backend, store)

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		result, err := svc.CreateMessage(ctx, req)
		if result != nil {
			t.Error("expected nil result for cancelled context")
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled in chain, got %v", err)
		}

		if backend.totalCalls() != 0 {
			t.Errorf("expected no backend calls after cancellation, got %d", backend.totalCalls())
		}
		if _, ok := store.Get(TagMessage, "probe"); !ok {
			t.Error("cancelled create must not invalidate the cache")
		}
	})
}

func TestService_ListMessageIDs(t *testing.T) {
	idsEnvelope := func(t *testing.T, ids []string) *api.Envelope {
		t.Helper()
		data, err := json.Marshal(ids)
		if err != nil {
			t.Fatalf("failed to marshal ids: %v", err)
		}
		return &api.Envelope{StatusCode: http.StatusOK, Message: "OK", Data: data}
	}

	t.Run("fetches then serves from cache", func(t *testing.T) {
		backend := newFakeBackend()
		backend.stub(http.MethodGet, "/messages/conversation/conv-1/ids", idsEnvelope(t, []string{"m1", "m2"}), nil)
		svc := newTestService(backend, cache.New())

		first, err := svc.ListMessageIDs(context.Background(), "conv-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(first) != 2 || first[0] != "m1" || first[1] != "m2" {
			t.Errorf("got wrong ids: %v", first)
		}

		second, err := svc.ListMessageIDs(context.Background(), "conv-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(second) != 2 {
			t.Errorf("got wrong ids from cache: %v", second)
		}

		if got := backend.callCount(http.MethodGet, "/messages/conversation/conv-1/ids"); got != 1 {
			t.Errorf("expected 1 backend fetch, got %d", got)
		}
	})

	t.Run("refetches after a create invalidates", func(t *testing.T) {
		backend := newFakeBackend()
		backend.stub(http.MethodGet, "/messages/conversation/conv-1/ids", idsEnvelope(t, []string{"m1"}), nil)
		stubAllCreates(t, backend, "conv-1", "User", "hello")
		svc := newTestService(backend, cache.New())

		if _, err := svc.ListMessageIDs(context.Background(), "conv-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err := svc.CreateMessage(context.Background(), &services.CreateMessageRequest{
			ConversationID: "conv-1",
			Role:           models.RoleUser,
			Content:        "hello",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := svc.ListMessageIDs(context.Background(), "conv-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := backend.callCount(http.MethodGet, "/messages/conversation/conv-1/ids"); got != 2 {
			t.Errorf("expected refetch after invalidation, got %d fetches", got)
		}
	})

	t.Run("missing conversation id is a validation error", func(t *testing.T) {
		svc := newTestService(newFakeBackend(), cache.New())

		_, err := svc.ListMessageIDs(context.Background(), "")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("backend errors pass through unchanged", func(t *testing.T) {
		backend := newFakeBackend()
		backend.stub(http.MethodGet, "/messages/conversation/ghost/ids", nil, &domain.BackendError{Status: http.StatusNotFound, Message: "Conversation not found"})
		svc := newTestService(backend, cache.New())

		_, err := svc.ListMessageIDs(context.Background(), "ghost")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected not-found classification, got %v", err)
		}
	})
}

func TestService_ListMessages(t *testing.T) {
	pageEnvelope := func(t *testing.T, wires []map[string]any) *api.Envelope {
		t.Helper()
		data, err := json.Marshal(wires)
		if err != nil {
			t.Fatalf("failed to marshal page: %v", err)
		}
		return &api.Envelope{StatusCode: http.StatusOK, Message: "OK", Data: data}
	}

	wire := func(id, sender, content string) map[string]any {
		return map[string]any{
			"id":              id,
			"conversation_id": "conv-1",
			"sender_type":     sender,
			"content":         content,
			"created_at":      "2026-08-25T10:00:00Z",
		}
	}

	defaultPath := fmt.Sprintf("/messages/conversation/conv-1?limit=%d&skip=0", config.DefaultListLimit)

	t.Run("decodes the page and translates senders", func(t *testing.T) {
		backend := newFakeBackend()
		backend.stub(http.MethodGet, defaultPath, pageEnvelope(t, []map[string]any{
			wire("m1", "User", "question"),
			wire("m2", "Bot", "answer"),
		}), nil)
		svc := newTestService(backend, cache.New())

		page, err := svc.ListMessages(context.Background(), "conv-1", 0, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(page) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(page))
		}
		if page[0].Role != models.RoleUser {
			t.Errorf("expected first message role %q, got %q", models.RoleUser, page[0].Role)
		}
		if page[1].Role != models.RoleAssistant {
			t.Errorf("expected second message role %q, got %q", models.RoleAssistant, page[1].Role)
		}
	})

	t.Run("caches pages per skip and limit", func(t *testing.T) {
		backend := newFakeBackend()
		backend.stub(http.MethodGet, "/messages/conversation/conv-1?limit=2&skip=0", pageEnvelope(t, []map[string]any{wire("m1", "User", "a")}), nil)
		backend.stub(http.MethodGet, "/messages/conversation/conv-1?limit=2&skip=2", pageEnvelope(t, []map[string]any{wire("m3", "User", "c")}), nil)
		svc := newTestService(backend, cache.New())

		for i := 0; i < 2; i++ {
			if _, err := svc.ListMessages(context.Background(), "conv-1", 0, 2); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if _, err := svc.ListMessages(context.Background(), "conv-1", 2, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := backend.callCount(http.MethodGet, "/messages/conversation/conv-1?limit=2&skip=0"); got != 1 {
			t.Errorf("expected first page fetched once, got %d", got)
		}
		if got := backend.callCount(http.MethodGet, "/messages/conversation/conv-1?limit=2&skip=2"); got != 1 {
			t.Errorf("expected second page fetched once, got %d", got)
		}
	})

	t.Run("rejects negative skip", func(t *testing.T) {
		svc := newTestService(newFakeBackend(), cache.New())

		_, err := svc.ListMessages(context.Background(), "conv-1", -1, 10)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown sender type in a page is an error", func(t *testing.T) {
		backend := newFakeBackend()
		backend.stub(http.MethodGet, defaultPath, pageEnvelope(t, []map[string]any{
			wire("m1", "System", "??"),
		}), nil)
		svc := newTestService(backend, cache.New())

		_, err := svc.ListMessages(context.Background(), "conv-1", 0, 0)
		if err == nil {
			t.Fatal("expected error for unknown sender type")
		}
		if !strings.Contains(err.Error(), "System") {
			t.Errorf("expected the unknown sender in the error, got: %v", err)
		}
	})
}

func TestService_GetMessage(t *testing.T) {
	t.Run("fetches then serves from cache", func(t *testing.T) {
		backend := newFakeBackend()
		backend.stub(http.MethodGet, "/messages/m1", messageEnvelope(t, "m1", "conv-1", "Bot", "answer"), nil)
		svc := newTestService(backend, cache.New())

		msg, err := svc.GetMessage(context.Background(), "m1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.Role != models.RoleAssistant {
			t.Errorf("expected role %q, got %q", models.RoleAssistant, msg.Role)
		}

		if _, err := svc.GetMessage(context.Background(), "m1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := backend.callCount(http.MethodGet, "/messages/m1"); got != 1 {
			t.Errorf("expected 1 backend fetch, got %d", got)
		}
	})

	t.Run("not found is classified", func(t *testing.T) {
		backend := newFakeBackend()
		backend.stub(http.MethodGet, "/messages/ghost", nil, &domain.BackendError{Status: http.StatusNotFound, Message: "Message not found"})
		svc := newTestService(backend, cache.New())

		_, err := svc.GetMessage(context.Background(), "ghost")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected not-found classification, got %v", err)
		}
	})

	t.Run("missing id is a validation error", func(t *testing.T) {
		svc := newTestService(newFakeBackend(), cache.New())

		_, err := svc.GetMessage(context.Background(), "")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestService_DeleteMessage(t *testing.T) {
	okEnvelope := &api.Envelope{StatusCode: http.StatusOK, Message: "Message deleted successfully"}

	idsEnvelope := func(t *testing.T) *api.Envelope {
		t.Helper()
		data, err := json.Marshal([]string{"m1"})
		if err != nil {
			t.Fatalf("failed to marshal ids: %v", err)
		}
		return &api.Envelope{StatusCode: http.StatusOK, Message: "OK", Data: data}
	}

	t.Run("success invalidates cached queries", func(t *testing.T) {
		backend := newFakeBackend()
		backend.stub(http.MethodGet, "/messages/conversation/conv-1/ids", idsEnvelope(t), nil)
		backend.stub(http.MethodDelete, "/messages/m1", okEnvelope, nil)
		svc := newTestService(backend, cache.New())

		if _, err := svc.ListMessageIDs(context.Background(), "conv-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := svc.DeleteMessage(context.Background(), "m1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.ListMessageIDs(context.Background(), "conv-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := backend.callCount(http.MethodGet, "/messages/conversation/conv-1/ids"); got != 2 {
			t.Errorf("expected refetch after delete, got %d fetches", got)
		}
	})

	t.Run("failure leaves the cache untouched", func(t *testing.T) {
		backend := newFakeBackend()
		backend.stub(http.MethodGet, "/messages/conversation/conv-1/ids", idsEnvelope(t), nil)
		backend.stub(http.MethodDelete, "/messages/m1", nil, &domain.BackendError{Status: http.StatusNotFound, Message: "Message not found"})
		svc := newTestService(backend, cache.New())

		if _, err := svc.ListMessageIDs(context.Background(), "conv-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := svc.DeleteMessage(context.Background(), "m1"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected not-found classification, got %v", err)
		}
		if _, err := svc.ListMessageIDs(context.Background(), "conv-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := backend.callCount(http.MethodGet, "/messages/conversation/conv-1/ids"); got != 1 {
			t.Errorf("failed delete must not invalidate; got %d fetches", got)
		}
	})

	t.Run("missing id is a validation error", func(t *testing.T) {
		svc := newTestService(newFakeBackend(), cache.New())

		if err := svc.DeleteMessage(context.Background(), ""); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
