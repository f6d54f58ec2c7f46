// Package ingest implements the document upload pipeline: allow-list and
// page-range validation, multipart assembly, and the transfer itself.
// Upload never panics and never returns a bare error; every ending is a
// typed Outcome the caller can branch on.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"trident/internal/api"
	"trident/internal/auth"
	"trident/internal/config"
	"trident/internal/domain"
	"trident/internal/domain/services"
)

// uploadPath is the backend's multipart ingestion endpoint
const uploadPath = "/documents/upload"

// allowedExtensions is the set of file types accepted for ingestion.
// Both PowerPoint variants are allowed, .pptx as well as the legacy .ppt.
// Lookup is by lowercase extension with the leading dot.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".ppt":  true,
}

// AllowedExtensions returns the accepted file suffixes in sorted order
func AllowedExtensions() []string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// extension returns the lowercase suffix after the last dot, or "" when
// the name has none
func extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// Service implements the IngestService interface
type Service struct {
	backend api.Doer
	tokens  auth.TokenProvider
	logger  *slog.Logger
}

// NewService creates a new ingest service
func NewService(backend api.Doer, tokens auth.TokenProvider, logger *slog.Logger) services.IngestService {
	return &Service{
		backend: backend,
		tokens:  tokens,
		logger:  logger,
	}
}

// Upload validates req, assembles the multipart payload and transfers the
// document. Local rejections (bad extension, bad page range, missing
// credential) never reach the network.
func (s *Service) Upload(ctx context.Context, req *services.UploadRequest) (out services.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic recovered during upload",
				"error", r,
				"stack", string(debug.Stack()),
			)
			out = services.Outcome{
				Message: "upload failed: internal error",
				Err:     fmt.Errorf("panic: %v", r),
			}
		}
	}()

	// Validate request
	if err := s.validateUploadRequest(req); err != nil {
		s.logger.Warn("upload rejected", "error", err)
		return services.Outcome{
			Message: "upload rejected: " + err.Error(),
			Err:     fmt.Errorf("%w: %v", domain.ErrValidation, err),
		}
	}

	// The ingestion endpoint requires authentication; fail fast instead
	// of shipping the document just to get a 401 back
	if _, ok := s.tokens.Token(); !ok {
		err := fmt.Errorf("%w: no credential available", domain.ErrUnauthorized)
		s.logger.Warn("upload rejected", "file", req.Filename, "error", err)
		return services.Outcome{
			Message: "upload requires authentication: configure a token first",
			Err:     err,
		}
	}

	body, contentType, err := buildForm(req)
	if err != nil {
		s.logger.Warn("upload failed", "file", req.Filename, "error", err)
		return services.Outcome{
			Message: "upload failed: " + err.Error(),
			Err:     err,
		}
	}

	env, err := s.backend.PostMultipart(ctx, uploadPath, contentType, body)
	if err != nil {
		s.logger.Warn("upload failed", "file", req.Filename, "error", err)
		return services.Outcome{
			Message: failureMessage(err),
			Err:     err,
		}
	}

	message := env.Message
	if message == "" {
		message = "document uploaded"
	}

	s.logger.Info("document uploaded",
		"file", req.Filename,
		"topic", formTopic(req),
		"start_page", req.StartPage,
	)

	return services.Outcome{OK: true, Message: message}
}

// Validation methods

func (s *Service) validateUploadRequest(req *services.UploadRequest) error {
	if req == nil {
		return errors.New("request is required")
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Filename, validation.Required),
		validation.Field(&req.Topic, validation.Length(0, config.MaxTopicLength)),
	); err != nil {
		return err
	}

	if req.File == nil {
		return errors.New("file content is required")
	}

	ext := extension(req.Filename)
	if ext == "" {
		return fmt.Errorf("file %q has no extension", req.Filename)
	}
	if !allowedExtensions[ext] {
		return fmt.Errorf("unsupported file type %s (accepted: %s)", ext, strings.Join(AllowedExtensions(), ", "))
	}

	if req.StartPage < 1 {
		return fmt.Errorf("start_page must be at least 1, got %d", req.StartPage)
	}
	if req.EndPage != nil && *req.EndPage < req.StartPage {
		return fmt.Errorf("end_page %d must not precede start_page %d", *req.EndPage, req.StartPage)
	}

	return nil
}

// buildForm assembles the multipart payload the ingestion endpoint
// expects: the file part plus stringified page and topic fields. end_page
// is omitted entirely when the request leaves it unset.
func buildForm(req *services.UploadRequest) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", req.Filename, err)
	}

	if err := writer.WriteField("start_page", strconv.Itoa(req.StartPage)); err != nil {
		return nil, "", fmt.Errorf("failed to write start_page: %w", err)
	}
	if req.EndPage != nil {
		if err := writer.WriteField("end_page", strconv.Itoa(*req.EndPage)); err != nil {
			return nil, "", fmt.Errorf("failed to write end_page: %w", err)
		}
	}
	if err := writer.WriteField("topic", formTopic(req)); err != nil {
		return nil, "", fmt.Errorf("failed to write topic: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

// formTopic returns the topic to transfer, applying the default for
// requests built without one
func formTopic(req *services.UploadRequest) string {
	if req.Topic == "" {
		return services.DefaultTopic
	}
	return req.Topic
}

// failureMessage renders a transfer error the way the outcome surface
// reports it
func failureMessage(err error) string {
	var be *domain.BackendError
	if errors.As(err, &be) {
		if be.Message != "" {
			return "upload failed: " + be.Message
		}
		return fmt.Sprintf("upload failed: backend returned status %d", be.Status)
	}
	if errors.Is(err, context.Canceled) {
		return "upload cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "upload timed out"
	}
	return "upload failed: " + err.Error()
}
