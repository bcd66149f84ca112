package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// OpenAIClient はOpenAI互換のChat Completions / Embeddings APIを呼び出します。
// azureがtrueの場合はAzure OpenAIのデプロイメントURL形式と api-key ヘッダーを使います。
type OpenAIClient struct {
	baseURL        string
	apiKey         string
	model          string
	embeddingModel string
	azure          bool
	apiVersion     string
	httpClient     *http.Client
}

// NewOpenAIClient OpenAI公式APIのクライアント（baseURL例: https://api.openai.com/v1）
func NewOpenAIClient(baseURL, apiKey, model, embeddingModel string) *OpenAIClient {
	return &OpenAIClient{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		apiKey:         apiKey,
		model:          model,
		embeddingModel: embeddingModel,
		httpClient:     newHTTPClient(),
	}
}

// NewAzureOpenAIClient Azure OpenAIのクライアント。modelとembeddingModelはデプロイ名。
func NewAzureOpenAIClient(endpoint, apiKey, apiVersion, chatDeployment, embeddingDeployment string) *OpenAIClient {
	c := NewOpenAIClient(endpoint, apiKey, chatDeployment, embeddingDeployment)
	c.azure = true
	c.apiVersion = apiVersion
	return c
}

type chatCompletionRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingRequest struct {
	Model string `json:"model,omitempty"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

type openAIErrorResponse struct {
	Error struct {
		Code    interface{} `json:"code"`
		Message string      `json:"message"`
		Type    string      `json:"type"`
	} `json:"error"`
}

// Model 使用するモデル（Azureの場合はデプロイ名）
func (c *OpenAIClient) Model() string {
	return c.model
}

// Complete チャット補完を実行し、最初の候補のテキストを返します。
func (c *OpenAIClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	request := chatCompletionRequest{
		Messages:    messages,
		MaxTokens:   2000,
		Temperature: 0.7,
	}
	if !c.azure {
		request.Model = c.model
	}

	var response chatCompletionResponse
	if err := c.do(ctx, c.endpointURL("chat/completions", c.model), request, &response); err != nil {
		return "", fmt.Errorf("チャット補完の呼び出しに失敗: %w", err)
	}

	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("LLMからの応答が空です")
	}
	return response.Choices[0].Message.Content, nil
}

// CreateEmbedding テキストのベクトル表現を生成
func (c *OpenAIClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if c.embeddingModel == "" {
		return nil, fmt.Errorf("Embeddingモデルが設定されていません")
	}

	request := embeddingRequest{Input: text}
	if !c.azure {
		request.Model = c.embeddingModel
	}

	var response embeddingResponse
	if err := c.do(ctx, c.endpointURL("embeddings", c.embeddingModel), request, &response); err != nil {
		return nil, fmt.Errorf("Embeddingの生成に失敗: %w", err)
	}
	if len(response.Data) == 0 || len(response.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("APIから有効なEmbeddingが返されませんでした")
	}
	return response.Data[0].Embedding, nil
}

func (c *OpenAIClient) endpointURL(operation, deployment string) string {
	if c.azure {
		return fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s", c.baseURL, deployment, operation, c.apiVersion)
	}
	return fmt.Sprintf("%s/%s", c.baseURL, operation)
}

func (c *OpenAIClient) do(ctx context.Context, url string, request, response interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("API key が設定されていません")
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if c.azure {
		headers = map[string]string{"api-key": c.apiKey}
	}

	return postJSON(ctx, c.httpClient, url, headers, request, response, func(body []byte) string {
		var errResp openAIErrorResponse
		if json.Unmarshal(body, &errResp) == nil {
			return errResp.Error.Message
		}
		return ""
	})
}
