package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process. Used for STORE_PROVIDER=memory
// and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[uuid.UUID]Document
	tokens map[uuid.UUID]map[int]TokenSet
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		docs:   make(map[uuid.UUID]Document),
		tokens: make(map[uuid.UUID]map[int]TokenSet),
	}
}

func (s *MemoryStore) CreateDocument(_ context.Context, filename, kind string) (Document, error) {
	doc := Document{
		ID:        uuid.New(),
		Filename:  filename,
		Kind:      kind,
		Status:    StatusProcessing,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.docs[doc.ID] = doc
	s.mu.Unlock()
	return doc, nil
}

func (s *MemoryStore) GetDocument(_ context.Context, id uuid.UUID) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (s *MemoryStore) UpdateDocumentStatus(_ context.Context, id uuid.UUID, status DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc.Status = status
	s.docs[id] = doc
	return nil
}

func (s *MemoryStore) SaveTokens(_ context.Context, docID uuid.UUID, sets []TokenSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[docID]; !ok {
		return ErrNotFound
	}
	rows := s.tokens[docID]
	if rows == nil {
		rows = make(map[int]TokenSet)
		s.tokens[docID] = rows
	}
	for _, ts := range sets {
		ts.DocumentID = docID
		ts.Tokens = slices.Clone(ts.Tokens)
		rows[ts.Row] = ts
	}
	return nil
}

func (s *MemoryStore) ListTokens(_ context.Context, docID uuid.UUID) ([]TokenSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.docs[docID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]TokenSet, 0, len(s.tokens[docID]))
	for _, ts := range s.tokens[docID] {
		ts.Tokens = slices.Clone(ts.Tokens)
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Row < out[j].Row })
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
