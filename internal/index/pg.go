package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/docask/docask/internal/ai"
	"github.com/docask/docask/internal/model"
	"github.com/docask/docask/internal/pkg/errs"
)

// PgIndex persists passages in Postgres with a pgvector column. Ranking
// uses cosine distance (`<=>`, range [0,2]); the reported score is
// 1-distance, so it lands in [-1,1] and stays monotonic with cosine
// similarity. Concurrency is delegated to Postgres: owners' passages are
// logically independent and every statement is owner-filtered.
type PgIndex struct {
	db       *sql.DB
	embedder ai.Embedder
}

func NewPgIndex(db *sql.DB, embedder ai.Embedder) *PgIndex {
	return &PgIndex{db: db, embedder: embedder}
}

func (p *PgIndex) Add(ctx context.Context, passages []model.Passage) error {
	if len(passages) == 0 {
		return nil
	}
	texts := make([]string, 0, len(passages))
	for _, passage := range passages {
		texts = append(texts, passage.Text)
	}
	vectors, err := p.embedder.Embed(ctx, texts, ai.TaskDocument)
	if err != nil {
		return err
	}

	// One transaction per batch: a failed ingest never leaves a partially
	// indexed document visible to search.
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", errs.ErrIndexUnavailable, err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO passages (id, owner_id, document_id, seq, content, token_count, filename, file_type, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for i, passage := range passages {
		_, err := tx.ExecContext(ctx, query,
			passage.ID,
			passage.OwnerID,
			passage.DocumentID,
			passage.SeqIndex,
			passage.Text,
			passage.TokenCount,
			passage.Filename,
			passage.FileType,
			pgvector.NewVector(vectors[i]),
		)
		if err != nil {
			return fmt.Errorf("%w: insert passage: %v", errs.ErrIndexUnavailable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", errs.ErrIndexUnavailable, err)
	}
	return nil
}

func (p *PgIndex) Search(ctx context.Context, query, ownerID string, limit int, documentIDs []string) ([]model.RetrievalHit, error) {
	vectors, err := p.embedder.Embed(ctx, []string{query}, ai.TaskQuery)
	if err != nil {
		return nil, err
	}
	queryVec := pgvector.NewVector(vectors[0])

	sqlStr := `
		SELECT id, owner_id, document_id, seq, content, token_count, filename, file_type,
		       1 - (embedding <=> $1) AS score
		FROM passages
		WHERE owner_id = $2
	`
	args := []interface{}{queryVec, ownerID}
	if len(documentIDs) > 0 {
		sqlStr += ` AND document_id = ANY($3)`
		args = append(args, pq.Array(documentIDs))
	}
	sqlStr += fmt.Sprintf(` ORDER BY embedding <=> $1 LIMIT %d`, limit)

	rows, err := p.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", errs.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	var hits []model.RetrievalHit
	for rows.Next() {
		var hit model.RetrievalHit
		err := rows.Scan(
			&hit.ID,
			&hit.OwnerID,
			&hit.DocumentID,
			&hit.SeqIndex,
			&hit.Text,
			&hit.TokenCount,
			&hit.Filename,
			&hit.FileType,
			&hit.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan hit: %v", errs.ErrIndexUnavailable, err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate hits: %v", errs.ErrIndexUnavailable, err)
	}
	return hits, nil
}

func (p *PgIndex) Remove(ctx context.Context, documentID, ownerID string) (bool, error) {
	const query = `DELETE FROM passages WHERE document_id = $1 AND owner_id = $2`
	res, err := p.db.ExecContext(ctx, query, documentID, ownerID)
	if err != nil {
		return false, fmt.Errorf("%w: remove: %v", errs.ErrIndexUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: remove: %v", errs.ErrIndexUnavailable, err)
	}
	return affected > 0, nil
}

func (p *PgIndex) CountDocuments(ctx context.Context, ownerID string) (int, error) {
	const query = `SELECT COUNT(DISTINCT document_id) FROM passages WHERE owner_id = $1`
	var count int
	if err := p.db.QueryRowContext(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count documents: %v", errs.ErrIndexUnavailable, err)
	}
	return count, nil
}
