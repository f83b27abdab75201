package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

var ErrNotFound = errors.New("document not found")

// Document is an uploaded text source.
type Document struct {
	ID        uuid.UUID      `json:"id"`
	Filename  string         `json:"filename"`
	Kind      string         `json:"kind"`
	Status    DocumentStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// TokenSet is the normalized form of one row of a document.
type TokenSet struct {
	DocumentID uuid.UUID `json:"document_id"`
	Row        int       `json:"row"`
	Tokens     []string  `json:"tokens"`
	Stemmed    bool      `json:"stemmed"`
	Lemmatized bool      `json:"lemmatized"`
}

// Store persists documents and their token sets.
type Store interface {
	CreateDocument(ctx context.Context, filename, kind string) (Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (Document, error)
	UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error
	// SaveTokens replaces any token set stored for the same (document, row).
	SaveTokens(ctx context.Context, docID uuid.UUID, sets []TokenSet) error
	// ListTokens returns token sets ordered by row.
	ListTokens(ctx context.Context, docID uuid.UUID) ([]TokenSet, error)
	Close() error
}
