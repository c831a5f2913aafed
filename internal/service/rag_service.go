package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docask/docask/internal/ai"
	"github.com/docask/docask/internal/chunker"
	"github.com/docask/docask/internal/extract"
	"github.com/docask/docask/internal/filestore"
	"github.com/docask/docask/internal/index"
	"github.com/docask/docask/internal/model"
	"github.com/docask/docask/internal/pkg/errs"
	"github.com/docask/docask/internal/repo"
)

const (
	defaultMaxUploadBytes = 50 * 1024 * 1024
	defaultMaxChunkTokens = 1000
	defaultOverlapTokens  = 200
	defaultTopK           = 5
)

var allowedExtensions = map[string]struct{}{
	"txt":  {},
	"md":   {},
	"pdf":  {},
	"docx": {},
}

// RAGConfig bounds one RAGService instance. Zero values fall back to the
// defaults above.
type RAGConfig struct {
	MaxUploadBytes int64
	MaxChunkTokens int
	OverlapTokens  int
	TopK           int
}

// RAGService coordinates extraction, chunking, the passage index and
// answer generation for the four pipeline operations. It holds no
// per-request state; every call stands alone.
type RAGService struct {
	idx      index.Index
	answerer *ai.Answerer
	docs     *repo.DocumentRepo
	store    filestore.Store
	cfg      RAGConfig
}

// NewRAGService wires the pipeline. docs and store may be nil (memory-only
// deployments); the registry and blob steps are skipped in that case.
func NewRAGService(idx index.Index, answerer *ai.Answerer, docs *repo.DocumentRepo, store filestore.Store, cfg RAGConfig) *RAGService {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.MaxChunkTokens <= 0 {
		cfg.MaxChunkTokens = defaultMaxChunkTokens
	}
	if cfg.OverlapTokens <= 0 {
		cfg.OverlapTokens = defaultOverlapTokens
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	return &RAGService{idx: idx, answerer: answerer, docs: docs, store: store, cfg: cfg}
}

type IngestResult struct {
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	FileSize      int64  `json:"file_size"`
	FileType      string `json:"file_type"`
	ChunksCreated int    `json:"chunks_created"`
	TotalTokens   int    `json:"total_tokens"`
	Status        string `json:"processing_status"`
}

// Ingest validates, extracts, chunks and indexes one uploaded file. Any
// failure before indexing aborts with nothing persisted; the passage batch
// itself is written atomically by the index.
func (s *RAGService) Ingest(ctx context.Context, ownerID, filename string, data []byte) (*IngestResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("owner_id", ownerID), zap.String("filename", filename))
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", errs.ErrInvalid)
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: file type %q", errs.ErrUnsupportedFormat, ext)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: max %d bytes", errs.ErrPayloadTooLarge, s.cfg.MaxUploadBytes)
	}

	text, err := extract.Extract(ctx, data, ext)
	if err != nil {
		return nil, err
	}
	chunks, err := chunker.Split(text, s.cfg.MaxChunkTokens, s.cfg.OverlapTokens)
	if err != nil {
		return nil, err
	}

	docID := ownerID + "_" + newID()
	passages := make([]model.Passage, 0, len(chunks))
	totalTokens := 0
	for i, chunk := range chunks {
		passages = append(passages, model.Passage{
			ID:         fmt.Sprintf("%s_%d_%s", docID, i, shortID()),
			OwnerID:    ownerID,
			DocumentID: docID,
			SeqIndex:   i,
			Text:       chunk.Text,
			TokenCount: chunk.TokenCount,
			Filename:   filename,
			FileType:   ext,
		})
		totalTokens += chunk.TokenCount
	}
	if err := s.idx.Add(ctx, passages); err != nil {
		logger.Error("failed to index passages", zap.Error(err))
		return nil, err
	}

	storageKey := ""
	if s.store != nil {
		storageKey = ownerID + "/" + docID + "." + ext
		if err := s.store.Save(ctx, storageKey, bytes.NewReader(data), int64(len(data))); err != nil {
			// The index is the source of truth; losing the original blob
			// only disables re-download.
			logger.Warn("failed to store original file", zap.Error(err))
			storageKey = ""
		}
	}
	if s.docs != nil {
		doc := &model.Document{
			ID:         docID,
			UserID:     ownerID,
			Filename:   filename,
			FileType:   ext,
			FileSize:   int64(len(data)),
			StorageKey: storageKey,
			ChunkCount: len(passages),
			Status:     model.DocumentStatusIndexed,
			Ctime:      time.Now().UnixMilli(),
		}
		if err := s.docs.Create(ctx, doc); err != nil {
			// Keep ingest all-or-nothing: un-index what we just wrote.
			if _, rbErr := s.idx.Remove(ctx, docID, ownerID); rbErr != nil {
				logger.Error("failed to roll back index after registry error", zap.Error(rbErr))
			}
			logger.Error("failed to create document record", zap.Error(err))
			return nil, err
		}
	}

	logger.Info("document ingested", zap.String("document_id", docID), zap.Int("chunks", len(passages)), zap.Int("tokens", totalTokens))
	return &IngestResult{
		DocumentID:    docID,
		Filename:      filename,
		FileSize:      int64(len(data)),
		FileType:      ext,
		ChunksCreated: len(passages),
		TotalTokens:   totalTokens,
		Status:        "completed",
	}, nil
}

// Query retrieves relevant passages and asks the answer generator. Zero
// hits short-circuit with suggestions; the generator is never invoked.
func (s *RAGService) Query(ctx context.Context, ownerID string, qc model.QueryContext) (*model.QueryResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("owner_id", ownerID))
	query := strings.TrimSpace(qc.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", errs.ErrInvalid)
	}

	hits, err := s.idx.Search(ctx, query, ownerID, s.cfg.TopK, qc.DocumentIDs)
	if err != nil {
		logger.Error("passage search failed", zap.Error(err))
		return nil, err
	}
	totalDocs, err := s.idx.CountDocuments(ctx, ownerID)
	if err != nil {
		logger.Warn("failed to count documents", zap.Error(err))
	}
	timestamp := time.Now().UTC().Format(time.RFC3339)

	if len(hits) == 0 {
		return &model.QueryResult{
			AnswerResult: model.AnswerResult{
				Answer:      "I couldn't find any relevant information in your documents to answer this question. Please make sure you have uploaded documents related to your query.",
				Sources:     []model.Source{},
				ContextUsed: 0,
				Model:       s.answerer.ActiveModel(),
			},
			Query:          query,
			Timestamp:      timestamp,
			TotalDocuments: totalDocs,
			Suggestions: []string{
				"Try rephrasing your question",
				"Upload documents related to your topic",
				"Check if your documents contain the information you're looking for",
			},
		}, nil
	}

	logger.Debug("generating answer", zap.Int("hits", len(hits)))
	answer, err := s.answerer.Generate(ctx, query, hits, qc.History)
	if err != nil {
		logger.Error("answer generation failed", zap.Error(err))
		return nil, err
	}
	return &model.QueryResult{
		AnswerResult:   *answer,
		Query:          query,
		Timestamp:      timestamp,
		TotalDocuments: totalDocs,
	}, nil
}

type DeleteResult struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// Delete removes a document's passages from the index, then the registry
// row and stored blob. The registry row survives if the index refuses the
// delete, so registry and index never disagree about what is searchable.
func (s *RAGService) Delete(ctx context.Context, ownerID, documentID string) (*DeleteResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("owner_id", ownerID), zap.String("document_id", documentID))

	var storageKey string
	if s.docs != nil {
		if doc, err := s.docs.Get(ctx, ownerID, documentID); err == nil {
			storageKey = doc.StorageKey
		}
	}

	removed, err := s.idx.Remove(ctx, documentID, ownerID)
	if err != nil {
		logger.Error("failed to remove passages", zap.Error(err))
		return nil, err
	}
	if !removed {
		return nil, fmt.Errorf("%w: document not found or not owned by caller", errs.ErrNotFound)
	}

	if s.docs != nil {
		if err := s.docs.Delete(ctx, ownerID, documentID); err != nil && !errs.IsNotFound(err) {
			logger.Warn("failed to delete document record", zap.Error(err))
		}
	}
	if s.store != nil && storageKey != "" {
		if err := s.store.Delete(ctx, storageKey); err != nil {
			logger.Warn("failed to delete stored file", zap.Error(err))
		}
	}

	logger.Info("document deleted")
	return &DeleteResult{
		DocumentID: documentID,
		Status:     "deleted",
		Message:    "Document successfully removed from knowledge base",
	}, nil
}

type StatsResult struct {
	UserID         string `json:"user_id"`
	TotalDocuments int    `json:"total_documents"`
	RAGEnabled     bool   `json:"rag_enabled"`
	Model          string `json:"llm_status"`
}

func (s *RAGService) Stats(ctx context.Context, ownerID string) (*StatsResult, error) {
	count, err := s.idx.CountDocuments(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &StatsResult{
		UserID:         ownerID,
		TotalDocuments: count,
		RAGEnabled:     count > 0,
		Model:          s.answerer.ActiveModel(),
	}, nil
}

type DocumentList struct {
	Documents []model.Document `json:"documents"`
	Total     int              `json:"total"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
}

func (s *RAGService) ListDocuments(ctx context.Context, ownerID string, limit, offset int) (*DocumentList, error) {
	if s.docs == nil {
		return &DocumentList{Documents: []model.Document{}, Limit: limit, Offset: offset}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	docs, err := s.docs.ListByUser(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.docs.CountByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return &DocumentList{Documents: docs, Total: total, Limit: limit, Offset: offset}, nil
}
