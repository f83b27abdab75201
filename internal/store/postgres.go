package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

// migrationLockID guards schema creation when several services start together.
const migrationLockID = 726_154_301

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		filename TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS token_sets (
		document_id UUID REFERENCES documents(id) ON DELETE CASCADE,
		row_index INT NOT NULL,
		tokens TEXT[] NOT NULL,
		stemmed BOOLEAN NOT NULL DEFAULT false,
		lemmatized BOOLEAN NOT NULL DEFAULT false,
		PRIMARY KEY (document_id, row_index)
	);`,
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	var acquired bool
	if err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, migrationLockID).Scan(&acquired); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !acquired {
		// Another service holds the lock and is creating the schema.
		time.Sleep(2 * time.Second)
		return nil
	}
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockID)
	}()

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, filename, kind string) (Document, error) {
	doc := Document{ID: uuid.New(), Filename: filename, Kind: kind, Status: StatusProcessing}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO documents(id, filename, kind, status) VALUES($1,$2,$3,$4) RETURNING created_at`,
		doc.ID, filename, kind, doc.Status).Scan(&doc.CreatedAt)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	doc := Document{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT filename, kind, status, created_at FROM documents WHERE id=$1`, id).
		Scan(&doc.Filename, &doc.Kind, &doc.Status, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return doc, nil
}

func (s *PostgresStore) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SaveTokens(ctx context.Context, docID uuid.UUID, sets []TokenSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, ts := range sets {
		tokens := ts.Tokens
		if tokens == nil {
			tokens = []string{}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO token_sets(document_id, row_index, tokens, stemmed, lemmatized)
			VALUES($1,$2,$3,$4,$5)
			ON CONFLICT (document_id, row_index) DO UPDATE
			SET tokens=excluded.tokens, stemmed=excluded.stemmed, lemmatized=excluded.lemmatized`,
			docID, ts.Row, pq.Array(tokens), ts.Stemmed, ts.Lemmatized)
		if err != nil {
			return fmt.Errorf("save tokens row %d: %w", ts.Row, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ListTokens(ctx context.Context, docID uuid.UUID) ([]TokenSet, error) {
	if _, err := s.GetDocument(ctx, docID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT row_index, tokens, stemmed, lemmatized
		FROM token_sets WHERE document_id=$1 ORDER BY row_index`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TokenSet{}
	for rows.Next() {
		ts := TokenSet{DocumentID: docID}
		if err := rows.Scan(&ts.Row, pq.Array(&ts.Tokens), &ts.Stemmed, &ts.Lemmatized); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
