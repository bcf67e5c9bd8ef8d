package ragie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"docuchat-be/internal/pkg/apperror"
)

// Client talks to the hosted document-retrieval API. Document ingestion,
// chunking and vector search all live on the other side of this boundary;
// the backend only asks for scored chunks.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Chunk is one retrieved passage with its provenance.
type Chunk struct {
	Text         string
	Score        float64
	DocumentId   string
	DocumentName string
	PageNumber   *int
	Metadata     map[string]interface{}
}

type retrievalRequest struct {
	Query     string `json:"query"`
	TopK      int    `json:"top_k"`
	Partition string `json:"partition,omitempty"`
	Rerank    bool   `json:"rerank"`
}

type retrievalResponse struct {
	ScoredChunks []struct {
		Text             string                 `json:"text"`
		Score            float64                `json:"score"`
		DocumentId       string                 `json:"document_id"`
		DocumentName     string                 `json:"document_name"`
		DocumentMetadata map[string]interface{} `json:"document_metadata"`
	} `json:"scored_chunks"`
}

// Retrieve asks for the topK passages most relevant to query within the
// organization's partition. Results come back sorted by descending score
// regardless of upstream ordering.
func (c *Client) Retrieve(ctx context.Context, query string, topK int, partition string) ([]Chunk, error) {
	payload := retrievalRequest{
		Query:     query,
		TopK:      topK,
		Partition: partition,
		Rerank:    true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal retrieval request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/retrievals", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.Timeout("retrieval request timed out", err)
		}
		return nil, apperror.UpstreamUnavailable("retrieval service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperror.UpstreamUnavailable(
			fmt.Sprintf("retrieval service returned %d: %s", resp.StatusCode, string(raw)), nil)
	}

	var result retrievalResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode retrieval response: %w", err)
	}

	chunks := make([]Chunk, 0, len(result.ScoredChunks))
	for _, sc := range result.ScoredChunks {
		chunk := Chunk{
			Text:         sc.Text,
			Score:        sc.Score,
			DocumentId:   sc.DocumentId,
			DocumentName: sc.DocumentName,
			Metadata:     sc.DocumentMetadata,
		}
		if sc.DocumentMetadata != nil {
			if pn, ok := sc.DocumentMetadata["page_number"].(float64); ok {
				page := int(pn)
				chunk.PageNumber = &page
			}
		}
		chunks = append(chunks, chunk)
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})

	return chunks, nil
}
