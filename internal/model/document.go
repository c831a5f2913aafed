package model

const (
	DocumentStatusIndexed = "indexed"
)

// Document is the registry record of one uploaded source file. The passage
// index holds the searchable content; this row exists so users can list and
// manage what they uploaded.
type Document struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
	StorageKey string `json:"storage_key"`
	ChunkCount int    `json:"chunk_count"`
	Status     string `json:"status"`
	Ctime      int64  `json:"ctime"`
}
