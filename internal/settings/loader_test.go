package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	cfg map[string]any
	err error
}

func (f *fakeFetcher) Settings(ctx context.Context) (map[string]any, error) {
	return f.cfg, f.err
}

func TestLoadSuccess(t *testing.T) {
	cfg := map[string]any{"chat_model": "mistral", "retrieval_k": float64(4)}
	ld := New(&fakeFetcher{cfg: cfg})

	view := ld.Load(context.Background())
	assert.True(t, view.Loaded())
	assert.False(t, view.Loading)
	assert.Empty(t, view.LoadError)
	assert.Equal(t, cfg, view.Config)
}

func TestLoadFailureClearsConfig(t *testing.T) {
	fetcher := &fakeFetcher{cfg: map[string]any{"chat_model": "mistral"}}
	ld := New(fetcher)
	require.True(t, ld.Load(context.Background()).Loaded())

	fetcher.cfg, fetcher.err = nil, errors.New("connection refused")
	view := ld.Load(context.Background())
	assert.False(t, view.Loaded())
	assert.Equal(t, LoadFailed, view.LoadError)
	assert.Error(t, view.Err)
}

func TestBeginMarksLoading(t *testing.T) {
	ld := New(&fakeFetcher{cfg: map[string]any{}})
	f := ld.Begin()
	assert.True(t, ld.View().Loading)
	assert.True(t, ld.Complete(ld.Run(context.Background(), f)))
	assert.False(t, ld.View().Loading)
}

func TestStaleResultIsDropped(t *testing.T) {
	ld := New(&fakeFetcher{})

	first := ld.Begin()
	second := ld.Begin()

	latest := Result{Gen: second.Gen, Config: map[string]any{"chat_model": "llama3"}}
	stale := Result{Gen: first.Gen, Err: errors.New("timeout")}

	assert.True(t, ld.Complete(latest))
	assert.False(t, ld.Complete(stale))

	view := ld.View()
	assert.Equal(t, "llama3", view.Config["chat_model"])
	assert.Empty(t, view.LoadError)
}

func TestEntries(t *testing.T) {
	cfg := map[string]any{
		"retrieval_k":     float64(4),
		"zeta":            true,
		"chat_model":      "mistral",
		"ollama_base_url": "http://localhost:11434/v1",
		"alpha":           []any{"a", float64(1)},
		"embed_model":     "nomic-embed-text",
		"temperature":     0.25,
		"extra":           map[string]any{"x": float64(2)},
		"missing":         nil,
	}
	want := []Entry{
		{Key: "ollama_base_url", Label: "Ollama base URL", Value: "http://localhost:11434/v1"},
		{Key: "chat_model", Label: "Chat model", Value: "mistral"},
		{Key: "embed_model", Label: "Embedding model", Value: "nomic-embed-text"},
		{Key: "retrieval_k", Label: "Retrieval k", Value: "4"},
		{Key: "alpha", Label: "alpha", Value: `["a",1]`},
		{Key: "extra", Label: "extra", Value: `{"x":2}`},
		{Key: "missing", Label: "missing", Value: "null"},
		{Key: "temperature", Label: "temperature", Value: "0.25"},
		{Key: "zeta", Label: "zeta", Value: "true"},
	}
	assert.Equal(t, want, Entries(cfg))
	assert.Nil(t, Entries(nil))
}
