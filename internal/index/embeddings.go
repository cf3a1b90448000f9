package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// Embedder produces a vector embedding for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OllamaEmbedder calls a local Ollama embedding model.
type OllamaEmbedder struct {
	endpoint string
	model    string
	client   *http.Client
}

func NewOllamaEmbedder(baseURL string, port int, model string) *OllamaEmbedder {
	return &OllamaEmbedder{
		endpoint: fmt.Sprintf("%s:%d/api/embeddings", baseURL, port),
		model:    model,
		client:   http.DefaultClient,
	}
}

func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(map[string]string{
		"model":  o.model,
		"prompt": text,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding request failed: status %s", resp.Status)
	}

	var body struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding embedding response: %w", err)
	}
	if len(body.Embedding) == 0 {
		return nil, fmt.Errorf("embedding response contained no vector")
	}
	return body.Embedding, nil
}

// Result is the outcome of one embedding request.
type Result struct {
	Content   string
	Embedding []float32
	Error     error
}

type work struct {
	content string
	result  chan<- Result
}

// Service fans embedding requests out to a worker pool and caches results by
// content, so identical run descriptions are only embedded once.
type Service struct {
	embedder Embedder
	queue    chan work
	cache    sync.Map
	wg       sync.WaitGroup
}

func NewService(embedder Embedder, numWorkers int) *Service {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	s := &Service{
		embedder: embedder,
		queue:    make(chan work, 100),
	}
	for i := 0; i < numWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

func (s *Service) worker() {
	defer s.wg.Done()
	for w := range s.queue {
		if cached, ok := s.cache.Load(w.content); ok {
			if embedding, valid := cached.([]float32); valid {
				w.result <- Result{Content: w.content, Embedding: embedding}
				continue
			}
		}
		embedding, err := s.embedder.Embed(context.Background(), w.content)
		if err == nil {
			s.cache.Store(w.content, embedding)
		}
		w.result <- Result{Content: w.content, Embedding: embedding, Error: err}
	}
}

// Get requests an embedding asynchronously. When the queue is full the
// result carries an immediate error instead of blocking the caller.
func (s *Service) Get(content string) <-chan Result {
	resultChan := make(chan Result, 1)
	select {
	case s.queue <- work{content: content, result: resultChan}:
	default:
		resultChan <- Result{
			Content: content,
			Error:   fmt.Errorf("embedding queue is full, try again later"),
		}
		close(resultChan)
	}
	return resultChan
}

// Close shuts the service down and waits for in-flight work.
func (s *Service) Close() {
	close(s.queue)
	s.wg.Wait()
}
