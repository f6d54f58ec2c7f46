package services

import (
	"context"
	"io"
)

// Defaults applied when an upload request leaves the fields unset
const (
	DefaultStartPage = 1
	DefaultTopic     = "general"
)

// IngestService defines the document upload pipeline
type IngestService interface {
	// Upload validates the request and transfers the document to the
	// ingestion endpoint. It always returns a typed outcome; no error
	// or panic escapes to the caller.
	Upload(ctx context.Context, req *UploadRequest) Outcome
}

// UploadRequest describes one document to submit for ingestion
type UploadRequest struct {
	Filename  string    // Name with extension; decides allow-list acceptance
	File      io.Reader // Document content
	StartPage int       // First page to ingest, 1-based
	EndPage   *int      // Optional last page, inclusive; nil means to the end
	Topic     string    // Grouping label; empty falls back to DefaultTopic
}

// NewUploadRequest returns an upload request for the named file with the
// documented defaults applied
func NewUploadRequest(filename string, file io.Reader) *UploadRequest {
	return &UploadRequest{
		Filename:  filename,
		File:      file,
		StartPage: DefaultStartPage,
		Topic:     DefaultTopic,
	}
}

// Outcome is the terminal result of an upload. Exactly one of the two
// shapes occurs: OK with a success message, or not OK with a failure
// message and the classified error behind it.
type Outcome struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}
