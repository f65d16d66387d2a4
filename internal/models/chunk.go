// Package models defines core data structures for CV content, search, and chat.
package models

// Chunk sources. AI content is a flat section-to-text map prepared for
// retrieval; structured content is flattened from the rich CV record.
const (
	SourceAIContent         = "ai_content"
	SourceStructuredContent = "structured_content"
)

// ContentChunk is one indexable unit of CV content with a section label.
// Chunks are loaded once at startup and never mutated afterwards.
type ContentChunk struct {
	Content string `json:"content"`
	Section string `json:"section"`
	Source  string `json:"source"`
}

// SearchResult is a chunk matched by the retrieval engine, with its
// cosine-similarity confidence. Produced per query; callers should treat
// confidence as approximately in [0, 1].
type SearchResult struct {
	Content    string  `json:"content"`
	Section    string  `json:"section"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}
