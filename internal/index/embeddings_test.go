package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	calls atomic.Int64
	fail  error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	if f.fail != nil {
		return nil, f.fail
	}
	return []float32{float32(len(text)), 0.5}, nil
}

func TestServiceEmbeds(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc := NewService(embedder, 2)
	defer svc.Close()

	result := <-svc.Get("a red car")
	require.NoError(t, result.Error)
	assert.Equal(t, "a red car", result.Content)
	assert.Equal(t, []float32{9, 0.5}, result.Embedding)
}

func TestServiceCachesByContent(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc := NewService(embedder, 1)
	defer svc.Close()

	first := <-svc.Get("a red car")
	second := <-svc.Get("a red car")

	require.NoError(t, first.Error)
	require.NoError(t, second.Error)
	assert.Equal(t, first.Embedding, second.Embedding)
	assert.Equal(t, int64(1), embedder.calls.Load(), "identical content is embedded once")
}

func TestServicePropagatesErrors(t *testing.T) {
	embedder := &fakeEmbedder{fail: errors.New("model not loaded")}
	svc := NewService(embedder, 1)
	defer svc.Close()

	result := <-svc.Get("a red car")
	require.Error(t, result.Error)
	assert.Nil(t, result.Embedding)
}

func TestServiceConcurrentRequests(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc := NewService(embedder, 4)
	defer svc.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result := <-svc.Get(fmt.Sprintf("description %d", i))
			assert.NoError(t, result.Error)
		}(i)
	}
	wg.Wait()
}

func TestOllamaEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req["model"])
		assert.Equal(t, "a red car", req["prompt"])

		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	embedder := &OllamaEmbedder{
		endpoint: srv.URL + "/api/embeddings",
		model:    "nomic-embed-text",
		client:   srv.Client(),
	}

	vec, err := embedder.Embed(context.Background(), "a red car")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestOllamaEmbedderErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer srv.Close()

		embedder := &OllamaEmbedder{endpoint: srv.URL + "/api/embeddings", model: "m", client: srv.Client()}
		_, err := embedder.Embed(context.Background(), "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("empty vector", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"embedding": []}`)
		}))
		defer srv.Close()

		embedder := &OllamaEmbedder{endpoint: srv.URL + "/api/embeddings", model: "m", client: srv.Client()}
		_, err := embedder.Embed(context.Background(), "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no vector")
	})
}

func TestNewOllamaEmbedderEndpoint(t *testing.T) {
	embedder := NewOllamaEmbedder("http://localhost", 11434, "nomic-embed-text")
	assert.True(t, strings.HasSuffix(embedder.endpoint, ":11434/api/embeddings"))
}
