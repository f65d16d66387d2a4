//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/pepperumo/peppegpt/pkg/utils"
)

// LocalEmbedder runs a sentence-embedding model via ONNX Runtime, for
// deployments that cannot reach the OpenAI API. Requires CGO and the
// onnxruntime shared library.
type LocalEmbedder struct {
	session    *ort.AdvancedSession
	dimensions int
	maxTokens  int
	cache      *Cache
	tokenizer  Tokenizer

	// Tensors are allocated once; Run() reuses them, so inference is serialized.
	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	tokenTypeIDs  *ort.Tensor[int64]
	output        *ort.Tensor[float32]
	mu            sync.Mutex
}

// NewLocalEmbedder creates an ONNX-backed embedder from the model at modelPath.
func NewLocalEmbedder(modelPath string, dimensions, maxTokens, cacheSize int) (*LocalEmbedder, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	tokenizer := &SimpleTokenizer{}
	ids, mask, types := tokenizer.Tokenize("", maxTokens)

	var created []ort.ArbitraryTensor
	destroyCreated := func() {
		for _, t := range created {
			_ = t.Destroy()
		}
	}
	newInput := func(name string, data []int64) (*ort.Tensor[int64], error) {
		t, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), data)
		if err != nil {
			destroyCreated()
			return nil, fmt.Errorf("create %s tensor: %w", name, err)
		}
		created = append(created, t)
		return t, nil
	}

	inputIDs, err := newInput("input_ids", ids)
	if err != nil {
		return nil, err
	}
	attentionMask, err := newInput("attention_mask", mask)
	if err != nil {
		return nil, err
	}
	tokenTypeIDs, err := newInput("token_type_ids", types)
	if err != nil {
		return nil, err
	}
	output, err := ort.NewTensor(ort.NewShape(1, int64(dimensions)), make([]float32, dimensions))
	if err != nil {
		destroyCreated()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	created = append(created, output)

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"output"},
		[]ort.ArbitraryTensor{inputIDs, attentionMask, tokenTypeIDs},
		[]ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		destroyCreated()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &LocalEmbedder{
		session:       session,
		dimensions:    dimensions,
		maxTokens:     maxTokens,
		cache:         NewCache(cacheSize),
		tokenizer:     tokenizer,
		inputIDs:      inputIDs,
		attentionMask: attentionMask,
		tokenTypeIDs:  tokenTypeIDs,
		output:        output,
	}, nil
}

// Embed returns the unit-normalized embedding for text.
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ids, mask, types := e.tokenizer.Tokenize(text, e.maxTokens)
	copy(e.inputIDs.GetData(), ids)
	copy(e.attentionMask.GetData(), mask)
	copy(e.tokenTypeIDs.GetData(), types)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}

	emb := make([]float32, e.dimensions)
	copy(emb, e.output.GetData()[:e.dimensions])
	utils.NormalizeL2(emb)
	e.cache.Set(text, emb)
	return emb, nil
}

// EmbedBatch embeds each text in turn.
func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *LocalEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the session and tensors.
func (e *LocalEmbedder) Close() error {
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	for _, t := range []*ort.Tensor[int64]{e.inputIDs, e.attentionMask, e.tokenTypeIDs} {
		if t != nil {
			_ = t.Destroy()
		}
	}
	e.inputIDs, e.attentionMask, e.tokenTypeIDs = nil, nil, nil
	if e.output != nil {
		_ = e.output.Destroy()
		e.output = nil
	}
	return err
}
