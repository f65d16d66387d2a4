// Package retrieval maps free-text questions to ranked CV content chunks via
// embedding similarity.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pepperumo/peppegpt/internal/embedding"
	"github.com/pepperumo/peppegpt/internal/models"
	"github.com/pepperumo/peppegpt/pkg/utils"
)

// ErrNotInitialized is returned by Search until a Load has succeeded.
var ErrNotInitialized = errors.New("retrieval engine not initialized")

// ErrEmptyQuery is returned for blank queries.
var ErrEmptyQuery = errors.New("query cannot be empty")

// index is one immutable generation of chunks plus their embedding matrix.
// A reload builds a fresh index and swaps the pointer, so concurrent searches
// never observe a half-built state.
type index struct {
	chunks []models.ContentChunk
	matrix [][]float32
}

// Engine ranks content chunks by cosine similarity to the query embedding.
type Engine struct {
	embedder embedding.Embedder
	logger   *zap.Logger

	mu  sync.RWMutex
	idx *index
}

// NewEngine creates an engine using the given embedder. Load must be called
// before Search.
func NewEngine(embedder embedding.Embedder, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{embedder: embedder, logger: logger}
}

// Load embeds all chunks and activates the index. On failure the previous
// index (if any) stays active and the error is returned.
func (e *Engine) Load(ctx context.Context, chunks []models.ContentChunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no content chunks to index")
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	matrix, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed content chunks: %w", err)
	}
	if len(matrix) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d vectors for %d chunks", len(matrix), len(chunks))
	}
	// Providers are expected to return unit vectors; normalize anyway so that
	// dot products below are true cosine similarities.
	for _, row := range matrix {
		utils.NormalizeL2(row)
	}

	owned := make([]models.ContentChunk, len(chunks))
	copy(owned, chunks)

	e.mu.Lock()
	e.idx = &index{chunks: owned, matrix: matrix}
	e.mu.Unlock()

	e.logger.Info("content index loaded", zap.Int("chunks", len(owned)))
	return nil
}

// Initialized reports whether a Load has succeeded.
func (e *Engine) Initialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx != nil
}

// Chunks returns a copy of the indexed chunks, or nil when not initialized.
func (e *Engine) Chunks() []models.ContentChunk {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.idx == nil {
		return nil
	}
	out := make([]models.ContentChunk, len(e.idx.chunks))
	copy(out, e.idx.chunks)
	return out
}

// Size returns the number of indexed chunks.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.idx == nil {
		return 0
	}
	return len(e.idx.chunks)
}

// Search returns up to maxResults chunks with cosine similarity of at least
// minConfidence, sorted by similarity descending. Equal scores keep the
// original chunk order. Results are deterministic for a fixed query and index.
func (e *Engine) Search(ctx context.Context, query string, maxResults int, minConfidence float64) ([]models.SearchResult, error) {
	e.mu.RLock()
	idx := e.idx
	e.mu.RUnlock()

	if idx == nil {
		return nil, ErrNotInitialized
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	expanded := ExpandQuery(query)
	if expanded != query {
		e.logger.Debug("expanded query",
			zap.String("query", query),
			zap.String("expanded", expanded),
		)
	}

	queryVec, err := e.embedder.Embed(ctx, expanded)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	utils.NormalizeL2(queryVec)

	results := make([]models.SearchResult, 0, maxResults)
	for i, row := range idx.matrix {
		similarity := utils.Dot(queryVec, row)
		if similarity < minConfidence {
			continue
		}
		chunk := idx.chunks[i]
		results = append(results, models.SearchResult{
			Content:    chunk.Content,
			Section:    chunk.Section,
			Source:     chunk.Source,
			Confidence: similarity,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}
