// Package index stores passage embeddings and serves filtered
// nearest-neighbor search. Every read and write is scoped by owner: no
// argument combination can reach another owner's passages.
package index

import (
	"context"

	"github.com/docask/docask/internal/model"
)

// Index is the passage store. Implementations embed passage text and
// queries through the same embedder so the vector spaces match, and their
// mutations are atomic per call as observed by other callers.
type Index interface {
	// Add embeds and persists a batch of passages. Safe to call for
	// different documents without clobbering existing entries; either the
	// whole batch lands or none of it does.
	Add(ctx context.Context, passages []model.Passage) error

	// Search embeds query and returns at most limit hits for ownerID,
	// ranked by similarity descending. An optional documentIDs filter
	// restricts candidates further. No match is an empty result, not an
	// error.
	Search(ctx context.Context, query, ownerID string, limit int, documentIDs []string) ([]model.RetrievalHit, error)

	// Remove deletes every passage matching both documentID and ownerID
	// and reports whether anything was deleted. An ownership mismatch
	// deletes nothing and leaks nothing.
	Remove(ctx context.Context, documentID, ownerID string) (bool, error)

	// CountDocuments returns the number of distinct documents indexed for
	// the owner.
	CountDocuments(ctx context.Context, ownerID string) (int, error)
}
