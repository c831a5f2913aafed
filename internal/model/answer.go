package model

// HistoryTurn is a single prior turn of the conversation, oldest first.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryContext carries one question plus its optional scoping.
type QueryContext struct {
	Query       string        `json:"query"`
	DocumentIDs []string      `json:"document_ids,omitempty"`
	History     []HistoryTurn `json:"chat_history,omitempty"`
}

// Source describes one distinct document cited by an answer.
type Source struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Score      float32 `json:"relevance_score"`
	HitCount   int     `json:"chunk_count"`
}

// AnswerResult is the output of answer generation.
type AnswerResult struct {
	Answer      string   `json:"response"`
	Sources     []Source `json:"sources"`
	ContextUsed int      `json:"context_used"`
	Model       string   `json:"model"`
}

// QueryResult wraps an AnswerResult with request-level metadata.
type QueryResult struct {
	AnswerResult
	Query          string   `json:"query"`
	Timestamp      string   `json:"timestamp"`
	TotalDocuments int      `json:"total_documents_searched"`
	Suggestions    []string `json:"suggestions,omitempty"`
}
