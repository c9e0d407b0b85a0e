package classify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotConfigured indicates the AI client is not configured
	ErrNotConfigured = errors.New("AI client not configured")
	// ErrAPICallFailed indicates the AI API call failed
	ErrAPICallFailed = errors.New("AI API call failed")
	// ErrInvalidResponse indicates an invalid response from the AI API
	ErrInvalidResponse = errors.New("invalid AI API response")
)

// Provider represents a text-completion provider
type Provider string

const (
	// ProviderOpenAI represents OpenAI API
	ProviderOpenAI Provider = "openai"
	// ProviderDeepSeek represents DeepSeek API
	ProviderDeepSeek Provider = "deepseek"
	// ProviderClaude represents Anthropic Claude API
	ProviderClaude Provider = "claude"
	// ProviderCustom represents a custom API endpoint
	ProviderCustom Provider = "custom"
)

// maxBodyExcerpt bounds the body excerpt sent to the backend.
const maxBodyExcerpt = 2000

// Client handles chat-completion API communication for email analysis
type Client struct {
	provider   Provider
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	configured bool
}

// NewClient creates a new AI Client instance
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configure configures the AI client with provider settings
func (c *Client) Configure(provider, apiKey, model string) {
	c.ConfigureWithBaseURL(provider, apiKey, model, "")
}

// ConfigureWithBaseURL configures the AI client with provider settings and
// custom base URL
func (c *Client) ConfigureWithBaseURL(provider, apiKey, model, baseURL string) {
	c.provider = Provider(strings.ToLower(provider))
	c.apiKey = apiKey
	c.model = model
	c.configured = apiKey != ""

	if baseURL != "" {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
		return
	}

	switch c.provider {
	case ProviderOpenAI:
		c.baseURL = "https://api.openai.com/v1"
		if c.model == "" {
			c.model = "gpt-4o-mini"
		}
	case ProviderDeepSeek:
		c.baseURL = "https://api.deepseek.com/v1"
		if c.model == "" {
			c.model = "deepseek-chat"
		}
	case ProviderClaude:
		c.baseURL = "https://api.anthropic.com/v1"
		if c.model == "" {
			c.model = "claude-3-haiku-20240307"
		}
	default:
		c.provider = ProviderOpenAI
		c.baseURL = "https://api.openai.com/v1"
	}
}

// IsConfigured returns whether the client is configured
func (c *Client) IsConfigured() bool {
	return c.configured && c.apiKey != ""
}

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// ChatResponse represents a chat completion response
type ChatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AnalysisResult is the structured classification returned by the backend.
type AnalysisResult struct {
	IsJobRelated bool    `json:"is_job_related"`
	Confidence   float64 `json:"confidence"`
	Company      string  `json:"company"`
	Position     string  `json:"position"`
	Status       string  `json:"status"`
	Reasoning    string  `json:"reasoning"`
}

const analysisSystemPrompt = "You are an expert at analyzing job application emails. " +
	"Extract structured information accurately. Always respond with valid JSON."

const analysisPromptTemplate = `Analyze this email and extract job application information.

EMAIL DETAILS:
Subject: %s
From: %s
Body: %s
%s
TASK:
1. Determine if this is a REAL job application email (not marketplace, newsletter, or promotional)
2. Extract company name, position title, and application status

IMPORTANT RULES:
- Company name should be the ACTUAL employer, not the ATS platform (e.g., "Apple" not "Lever")
- Position must be a real job title
- For German emails, extract information the same way as English
- Status must be one of: Applied, Application Received, Under Review, Phone Screen Scheduled, Interview Scheduled, Assessment Sent, Offer Received, Rejected

OUTPUT FORMAT (JSON only, no other text):
{"is_job_related": true/false, "confidence": 0.0-1.0, "company": "..." or null, "position": "..." or null, "status": "..." or null, "reasoning": "..."}`

// AnalyzeEmail classifies one email through the chat-completion backend.
// The body is truncated to a bounded excerpt before sending. Malformed or
// non-JSON responses are reported as errors, never raised to the caller as
// panics; the caller falls back to the local path.
func (c *Client) AnalyzeEmail(subject, body, sender, threadContext string) (*AnalysisResult, error) {
	if len(body) > maxBodyExcerpt {
		body = body[:maxBodyExcerpt]
	}

	context := ""
	if threadContext != "" {
		context = "\nTHREAD CONTEXT (earlier messages in this conversation):\n" + threadContext + "\n"
	}

	messages := []ChatMessage{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(analysisPromptTemplate, subject, sender, body, context)},
	}

	response, err := c.sendChatRequest(messages)
	if err != nil {
		return nil, err
	}

	var result AnalysisResult
	if err := json.Unmarshal([]byte(extractJSON(response)), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return &result, nil
}

// extractJSON trims markdown code fences some models wrap around JSON.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)
	if start := strings.Index(response, "{"); start >= 0 {
		if end := strings.LastIndex(response, "}"); end > start {
			return response[start : end+1]
		}
	}
	return response
}

// sendChatRequest sends a chat completion request to the AI API
func (c *Client) sendChatRequest(messages []ChatMessage) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	request := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   500,
		Temperature: 0.1,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")

	switch c.provider {
	case ProviderClaude:
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	default:
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrAPICallFailed, resp.StatusCode, string(respBody))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrAPICallFailed, chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", ErrInvalidResponse
	}

	return chatResp.Choices[0].Message.Content, nil
}
