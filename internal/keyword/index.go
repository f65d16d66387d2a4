// Package keyword provides a Bleve-backed keyword index over CV chunks.
// It serves as the degraded search path when the embedding backend is
// unavailable, so queries like "python" still find the skills chunks.
package keyword

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/pepperumo/peppegpt/internal/models"
	"github.com/pepperumo/peppegpt/pkg/utils"
)

// indexedChunk is the document shape stored in Bleve.
type indexedChunk struct {
	Content string `json:"content"`
	Section string `json:"section"`
}

// Index is an in-memory keyword index over content chunks. Safe for
// concurrent use; Load replaces the whole corpus at once.
type Index struct {
	mu     sync.RWMutex
	idx    bleve.Index
	chunks []models.ContentChunk
}

// NewIndex creates an empty in-memory index.
func NewIndex() (*Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so a query like
	// "bayes" matches the exact word instead of a stemmed form.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("section", textFieldMapping)
	im.DefaultMapping = docMapping

	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword index: %w", err)
	}
	return &Index{idx: idx}, nil
}

// Load indexes the given chunks, replacing anything indexed before.
func (i *Index) Load(chunks []models.ContentChunk) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	for id := range i.chunks {
		if err := i.idx.Delete(strconv.Itoa(id)); err != nil {
			return fmt.Errorf("failed to clear keyword index: %w", err)
		}
	}

	batch := i.idx.NewBatch()
	for id, chunk := range chunks {
		doc := indexedChunk{Content: chunk.Content, Section: chunk.Section}
		if err := batch.Index(strconv.Itoa(id), doc); err != nil {
			return fmt.Errorf("failed to batch chunk %d: %w", id, err)
		}
	}
	if err := i.idx.Batch(batch); err != nil {
		return fmt.Errorf("failed to index chunks: %w", err)
	}

	i.chunks = make([]models.ContentChunk, len(chunks))
	copy(i.chunks, chunks)
	return nil
}

// Size returns the number of indexed chunks.
func (i *Index) Size() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.chunks)
}

// Search runs a match query over content and section and returns up to limit
// chunks. Scores are clamped to [0, 1] so they read like retrieval
// confidences downstream.
func (i *Index) Search(query string, limit int) ([]models.SearchResult, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	out := make([]models.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.Atoi(hit.ID)
		if err != nil || id < 0 || id >= len(i.chunks) {
			continue
		}
		chunk := i.chunks[id]
		out = append(out, models.SearchResult{
			Content:    chunk.Content,
			Section:    chunk.Section,
			Source:     chunk.Source,
			Confidence: utils.Clamp01(hit.Score),
		})
	}
	return out, nil
}

// Close releases the underlying index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.idx.Close()
}
