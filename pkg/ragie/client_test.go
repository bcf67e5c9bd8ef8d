package ragie

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docuchat-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieveSortsByScoreDescending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/retrievals", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "org-partition", req["partition"])

		// Deliberately out of order
		json.NewEncoder(w).Encode(map[string]interface{}{
			"scored_chunks": []map[string]interface{}{
				{"text": "middle", "score": 0.5, "document_id": "d2", "document_name": "two.pdf"},
				{"text": "best", "score": 0.9, "document_id": "d1", "document_name": "one.pdf",
					"document_metadata": map[string]interface{}{"page_number": 4.0}},
				{"text": "worst", "score": 0.1, "document_id": "d3", "document_name": "three.pdf"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	chunks, err := client.Retrieve(context.Background(), "question", 3, "org-partition")
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "best", chunks[0].Text)
	assert.Equal(t, "middle", chunks[1].Text)
	assert.Equal(t, "worst", chunks[2].Text)

	require.NotNil(t, chunks[0].PageNumber)
	assert.Equal(t, 4, *chunks[0].PageNumber)
	assert.Nil(t, chunks[1].PageNumber)
}

func TestRetrieveUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"backend down"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.Retrieve(context.Background(), "question", 3, "")
	require.Error(t, err)
	assert.Equal(t, apperror.KindUpstreamUnavailable, apperror.KindOf(err))
}

func TestRetrieveUnreachableHost(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "test-key")
	_, err := client.Retrieve(context.Background(), "question", 3, "")
	require.Error(t, err)
	assert.Equal(t, apperror.KindUpstreamUnavailable, apperror.KindOf(err))
}

func TestRetrieveEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"scored_chunks": []interface{}{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	chunks, err := client.Retrieve(context.Background(), "question", 3, "")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
