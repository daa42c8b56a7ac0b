package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGenerator_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Add metrics.  "}}]}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(srv.URL, "key", "test-model", time.Second)
	out, err := g.Generate(context.Background(), Request{ActionKind: "resume_analyze", Input: "my resume"})
	require.NoError(t, err)

	assert.Equal(t, "Add metrics.", out)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, systemPrompts["resume_analyze"], got.Messages[0].Content)
	assert.Equal(t, "my resume", got.Messages[1].Content)
}

func TestOpenAIGenerator_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator(srv.URL, "key", "", time.Second)
	_, err := g.Generate(context.Background(), Request{ActionKind: "unknown", Input: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer empty.Close()

	_, err = NewOpenAIGenerator(empty.URL, "key", "", time.Second).Generate(context.Background(), Request{Input: "x"})
	assert.ErrorIs(t, err, ErrEmptyOutput)
}
