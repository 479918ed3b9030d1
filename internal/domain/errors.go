package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStage      = errors.New("invalid stage")
	ErrEmptyMessage      = errors.New("message content is required")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExists     = errors.New("session already exists")
	ErrTooManyDocuments  = errors.New("too many documents")
	ErrEmptyIndex        = errors.New("no documents indexed yet")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// CompletionError reports a failed call to the completion backend.
// A turn that hits it commits nothing.
type CompletionError struct {
	Backend string
	Err     error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed (%s): %v", e.Backend, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// IngestionError reports a document that could not be loaded.
type IngestionError struct {
	Document string
	Err      error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingesting %q: %v", e.Document, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}
