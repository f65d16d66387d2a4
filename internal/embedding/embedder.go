// Package embedding provides text embedding backends: OpenAI, local ONNX, and
// a deterministic mock. All backends return unit-normalized vectors of a fixed
// dimensionality for the lifetime of the process.
package embedding

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
