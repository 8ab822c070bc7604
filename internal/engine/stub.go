package engine

import (
	"context"
	"fmt"
)

// StubBackend is the default Backend: it "loads" a model by checking
// the file exists, and echoes a deterministic placeholder response
// rather than running real inference. Swapping in a real llama.cpp
// binding means implementing Backend and Engine against the same
// interfaces — nothing else in this package changes.
type StubBackend struct{}

// NewStubBackend returns a Backend that performs no real inference.
func NewStubBackend() Backend {
	return &StubBackend{}
}

func (b *StubBackend) Load(ctx context.Context, path string) (Engine, error) {
	return &stubEngine{path: path}, nil
}

type stubEngine struct {
	path string
}

func (e *stubEngine) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return fmt.Sprintf("[stub response from %s, prompt length %d, max_tokens %d]", e.path, len(prompt), maxTokens), nil
}

func (e *stubEngine) Close() error {
	return nil
}
