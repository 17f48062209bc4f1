package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mindful-chat/internal/domain"
)

// ErrEmptyResponse indica que el proveedor respondió sin texto utilizable.
var ErrEmptyResponse = errors.New("llm empty response")

// LLMClient define la interfaz para completar una conversación con un LLM.
type LLMClient interface {
	Complete(ctx context.Context, turns []domain.Turn) (string, error)
}

type logger interface {
	Printf(format string, v ...interface{})
}

// HTTPClient implementa LLMClient usando la API de OpenAI-compatible.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  logger
}

// NewHTTPClient construye un cliente HTTP apuntando a la API de chat completions.
// El timeout por llamada lo fija quien invoca mediante el contexto.
func NewHTTPClient(baseURL, apiKey, model string, log any) *HTTPClient {
	l, _ := log.(logger)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
		logger:  l,
	}
}

func (c *HTTPClient) Complete(ctx context.Context, turns []domain.Turn) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("llm: no turns to send")
	}
	reqBody := chatRequest{
		Model:    c.model,
		Messages: make([]chatMessage, 0, len(turns)),
	}
	for _, t := range turns {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: providerRole(t.Role), Content: t.Text})
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if c.logger != nil {
			c.logger.Printf("llm error status %d: %s", resp.StatusCode, string(respBody))
		}
		return "", fmt.Errorf("llm http error: status=%d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if cr.Error != nil {
		return "", fmt.Errorf("llm api error: %s", cr.Error.Message)
	}

	if len(cr.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	msg := cr.Choices[0].Message
	if msg.Role != "" && msg.Role != "assistant" {
		return "", fmt.Errorf("llm unexpected role %q", msg.Role)
	}
	if strings.TrimSpace(msg.Content) == "" {
		return "", ErrEmptyResponse
	}

	return msg.Content, nil
}

// providerRole traduce los roles internos a los del proveedor.
func providerRole(r domain.Role) string {
	switch r {
	case domain.RoleModel:
		return "assistant"
	case domain.RoleSystem:
		return "system"
	default:
		return "user"
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
