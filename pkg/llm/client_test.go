package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClientComplete(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody chatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"Users love the new design."}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL+"/v1/", "sk-test", "gpt-4o-mini", "")
	text, err := client.Complete(context.Background(), []ChatMessage{
		{Role: RoleSystem, Content: "You analyse reviews."},
		{Role: RoleUser, Content: "What do users like?"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Users love the new design.", text)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	assert.Len(t, gotBody.Messages, 2)
}

func TestAzureOpenAIClientURLAndHeader(t *testing.T) {
	var gotPath, gotQuery, gotKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("api-version")
		gotKey = r.Header.Get("api-key")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer server.Close()

	client := NewAzureOpenAIClient(server.URL, "azure-key", "2024-02-01", "chat-deploy", "embed-deploy")
	_, err := client.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "/openai/deployments/chat-deploy/chat/completions", gotPath)
	assert.Equal(t, "2024-02-01", gotQuery)
	assert.Equal(t, "azure-key", gotKey)
}

func TestOpenAIClientErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "sk-test", "gpt-4o-mini", "")
	_, err := client.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "hi"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIClientRequiresAPIKey(t *testing.T) {
	client := NewOpenAIClient("http://127.0.0.1:0", "", "gpt-4o-mini", "")
	_, err := client.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "hi"}})
	assert.Error(t, err)
}

func TestOpenAIClientCreateEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "sk-test", "gpt-4o-mini", "text-embedding-3-small")
	vec, err := client.CreateEmbedding(context.Background(), "battery drains fast")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestGeminiClientComplete(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Mostly "},{"text":"positive."}]}}]}`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "g-key", "gemini-1.5-flash")
	text, err := client.Complete(context.Background(), []ChatMessage{
		{Role: RoleSystem, Content: "context"},
		{Role: RoleUser, Content: "question"},
		{Role: RoleAssistant, Content: "earlier answer"},
		{Role: RoleUser, Content: "follow-up"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Mostly positive.", text)
	assert.Equal(t, "/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "g-key", gotKey)
	require.NotNil(t, gotBody.SystemInstruction)
	assert.Equal(t, "context", gotBody.SystemInstruction.Parts[0].Text)
	require.Len(t, gotBody.Contents, 3)
	assert.Equal(t, "model", gotBody.Contents[1].Role)
}

func TestGeminiClientEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "g-key", "gemini-1.5-flash")
	_, err := client.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "hi"}})
	assert.Error(t, err)
}
