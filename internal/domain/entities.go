package domain

// Family groups source languages that share a segmentation strategy.
type Family string

const (
	FamilyPython     Family = "python"
	FamilyCStyle     Family = "c_style"
	FamilyJavaScript Family = "javascript"
	FamilyOther      Family = "other"
)

// Segment is one logical unit of a source file.
type Segment struct {
	Text    string
	Ordinal int
}

// SourceUnit is a scanned file. It is discarded once its segments are produced.
type SourceUnit struct {
	Path     string
	Language string
	Content  string
}

type ChunkMetadata struct {
	FilePath string `json:"file_path"`
	RepoName string `json:"repo_name"`
	ChunkID  int    `json:"chunk_id"`
	Language string `json:"language"`
}

// IndexedChunk is the unit persisted to the vector store.
type IndexedChunk struct {
	Segment     Segment
	Metadata    ChunkMetadata
	EmbeddingID string
}

type QueryRequest struct {
	Query    string `json:"query"`
	TopK     int    `json:"top_k"`
	TaskType string `json:"task_type,omitempty"`
}

type Source struct {
	Text     string  `json:"text"`
	FilePath string  `json:"file_path"`
	RepoName string  `json:"repo_name"`
	Score    float64 `json:"score"`
}

type QueryResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

const TaskMicroserviceAnalysis = "microservice_analysis"
