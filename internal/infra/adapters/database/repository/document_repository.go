package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// DocumentRepository хранит снапшоты корневых документов (rooms/{id})
type DocumentRepository interface {
	Save(ctx context.Context, path string, body []byte) error
	// List возвращает документы с префиксом пути в порядке пути
	List(ctx context.Context, prefix string) ([]Document, error)
	Delete(ctx context.Context, path string) error
}

type Document struct {
	Path string `db:"path"`
	Body string `db:"body"`
}

type documentRepo struct {
	db *sqlx.DB
}

func NewDocumentRepo(db *sqlx.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Save(ctx context.Context, path string, body []byte) error {
	_, err := r.db.ExecContext(
		ctx,
		r.db.Rebind(`INSERT INTO documents (path, body, updated_at) VALUES (?, ?, ?)
ON CONFLICT (path) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`),
		path,
		string(body),
		time.Now().UnixMilli(),
	)

	return err
}

func (r *documentRepo) List(ctx context.Context, prefix string) ([]Document, error) {
	var docs []Document

	err := r.db.SelectContext(
		ctx,
		&docs,
		r.db.Rebind("SELECT path, body FROM documents WHERE path LIKE ? ORDER BY path"),
		prefix+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}

	return docs, nil
}

func (r *documentRepo) Delete(ctx context.Context, path string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM documents WHERE path = ?"), path)

	return err
}
