//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

var errNoCGO = errors.New("local embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")

// LocalEmbedder stub when built without CGO (see local.go for the real implementation).
type LocalEmbedder struct{}

// NewLocalEmbedder returns an error when built without CGO.
func NewLocalEmbedder(_ string, _, _, _ int) (*LocalEmbedder, error) {
	return nil, errNoCGO
}

// Embed always fails on the stub.
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errNoCGO
}

// EmbedBatch always fails on the stub.
func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errNoCGO
}

// Dimensions returns zero on the stub.
func (e *LocalEmbedder) Dimensions() int { return 0 }

// Close is a no-op.
func (e *LocalEmbedder) Close() error { return nil }
