package model

// Passage is one retrievable chunk of a document. Passages of a document
// form a contiguous, ordered partition of its cleaned text; consecutive
// passages share up to the configured overlap budget of trailing content.
type Passage struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	DocumentID string `json:"document_id"`
	SeqIndex   int    `json:"seq_index"`
	Text       string `json:"text"`
	TokenCount int    `json:"token_count"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
}

// RetrievalHit is a passage matched by a similarity search. Score is
// derived from cosine distance as 1-distance, so it falls in [-1, 1] and
// identical vectors score 1.0.
type RetrievalHit struct {
	Passage
	Score float32 `json:"score"`
}
