package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Result pairs a candidate index with the cross-encoder relevance score.
type Result struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Reranker scores candidate documents against a query. Enabled reports
// whether the client is configured; callers skip reranking when it isn't.
type Reranker interface {
	Enabled() bool
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]Result, error)
}

// Client talks to a Jina-style rerank endpoint. A missing API key
// disables the client rather than erroring at request time.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

func NewClient(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = "https://api.jina.ai/v1/rerank"
	}
	if model == "" {
		model = "jina-reranker-v2-base-multilingual"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n,omitempty"`
}

type rerankResponse struct {
	Results []Result `json:"results"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Rerank makes a single attempt. Reranking is an optional refinement,
// so callers fall back to the original ordering on error instead of
// retrying.
func (c *Client) Rerank(ctx context.Context, query string, documents []string, topN int) ([]Result, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("reranker is not configured")
	}
	if len(documents) == 0 {
		return nil, nil
	}

	reqBody := rerankRequest{
		Model:     c.model,
		Query:     query,
		Documents: documents,
		TopN:      topN,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed rerankResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("rerank api returned error: %s", parsed.Error.Message)
	}

	return parsed.Results, nil
}
