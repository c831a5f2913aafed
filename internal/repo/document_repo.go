package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/docask/docask/internal/model"
	"github.com/docask/docask/internal/pkg/dbutil"
	"github.com/docask/docask/internal/pkg/errs"
)

// DocumentRepo owns the document registry: one row per uploaded file. The
// passage index is the source of truth for searchable content; rows here
// exist so owners can list and manage uploads.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":          doc.ID,
		"user_id":     doc.UserID,
		"filename":    doc.Filename,
		"file_type":   doc.FileType,
		"file_size":   doc.FileSize,
		"storage_key": doc.StorageKey,
		"chunk_count": doc.ChunkCount,
		"status":      doc.Status,
		"ctime":       doc.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *DocumentRepo) Get(ctx context.Context, userID, docID string) (*model.Document, error) {
	where := map[string]interface{}{
		"id":      docID,
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns())
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Document, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "ctime desc",
		"_limit":   []uint{uint(offset), uint(limit)},
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns())
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM documents WHERE user_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DocumentRepo) Delete(ctx context.Context, userID, docID string) error {
	where := map[string]interface{}{
		"id":      docID,
		"user_id": userID,
	}
	sqlStr, args, err := builder.BuildDelete("documents", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func documentColumns() []string {
	return []string{"id", "user_id", "filename", "file_type", "file_size", "storage_key", "chunk_count", "status", "ctime"}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var doc model.Document
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Filename,
		&doc.FileType,
		&doc.FileSize,
		&doc.StorageKey,
		&doc.ChunkCount,
		&doc.Status,
		&doc.Ctime,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
