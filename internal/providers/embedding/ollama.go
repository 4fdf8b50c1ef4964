package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/slimctx/pkg/retry"
)

const (
	ollamaDefaultBaseURL = "http://localhost:11434"
	ollamaDefaultModel   = "nomic-embed-text"
	ollamaDefaultTimeout = 30 * time.Second
)

type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Retry   *retry.Config
}

// Ollama generates embeddings via a local Ollama instance. The API has no
// batch endpoint, so texts are embedded one by one in input order.
type Ollama struct {
	client  *http.Client
	retrier *retry.Retrier
	baseURL string
	model   string
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float64 `json:"embedding"`
}

func NewOllama(cfg OllamaConfig) *Ollama {
	if cfg.BaseURL == "" {
		cfg.BaseURL = ollamaDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = ollamaDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = ollamaDefaultTimeout
	}
	if cfg.Retry == nil {
		cfg.Retry = retry.NewDefaultConfig()
	}

	return &Ollama{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		retrier: retry.NewRetrier(cfg.Retry),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

func (s *Ollama) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("ollama: embed text %d: %w", i, err)
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

func (s *Ollama) embed(ctx context.Context, text string) ([]float32, error) {
	jsonBody, err := json.Marshal(ollamaRequest{
		Model:  s.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var embedResp ollamaResponse
	err = s.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			s.baseURL+"/api/embeddings",
			bytes.NewReader(jsonBody),
		)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("send request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
		}

		embedResp = ollamaResponse{}
		return json.NewDecoder(resp.Body).Decode(&embedResp)
	})
	if err != nil {
		return nil, err
	}

	vec := make([]float32, len(embedResp.Embedding))
	for i, v := range embedResp.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
