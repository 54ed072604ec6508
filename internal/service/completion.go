package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrMissingAPIKey is returned when a client is built without a credential
var ErrMissingAPIKey = errors.New("LLM_API_KEY environment variable not set")

// Completion call outcomes reported to the Recorder
const (
	OutcomeSuccess        = "success"
	OutcomeRequestError   = "request_error"
	OutcomeParseError     = "parse_error"
	OutcomeTransportError = "transport_error"
)

// RequestError is returned when the provider answers with a non-200 status
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.StatusCode, e.Body)
}

// ParseError is returned when the provider response or the model content
// is not valid JSON of the expected shape
type ParseError struct {
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Failed to parse LLM response as JSON: %v", e.Err)
	}
	return "Failed to parse LLM response as JSON"
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat constrains the model output
type ResponseFormat struct {
	Type string `json:"type"`
}

// Request represents a chat completion request
type Request struct {
	Model          string         `json:"model"`
	Messages       []Message      `json:"messages"`
	ResponseFormat ResponseFormat `json:"response_format"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CompletionClient talks to an OpenAI compatible chat completion endpoint.
// It holds only immutable configuration and is safe for concurrent use.
type CompletionClient struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
	recorder   Recorder
}

// CompletionOption customizes a CompletionClient
type CompletionOption func(*CompletionClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) CompletionOption {
	return func(c *CompletionClient) {
		c.httpClient = client
	}
}

// WithRecorder reports every call outcome to r
func WithRecorder(r Recorder) CompletionOption {
	return func(c *CompletionClient) {
		c.recorder = r
	}
}

// NewCompletionClient creates a new CompletionClient instance
func NewCompletionClient(apiKey, apiURL, model string, logger *zap.Logger, opts ...CompletionOption) (*CompletionClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &CompletionClient{
		apiKey:     apiKey,
		apiURL:     apiURL,
		model:      model,
		httpClient: &http.Client{},
		logger:     logger,
		recorder:   NopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the model name sent with every request
func (c *CompletionClient) Model() string {
	return c.model
}

// Complete sends prompt as a single user message and returns the JSON
// content of the first choice. There is no retry; the caller's context
// bounds the call.
func (c *CompletionClient) Complete(ctx context.Context, prompt string) (json.RawMessage, error) {
	start := time.Now()
	content, err := c.complete(ctx, prompt)
	c.recorder.CompletionRequest(outcomeOf(err), time.Since(start))
	return content, err
}

func (c *CompletionClient) complete(ctx context.Context, prompt string) (json.RawMessage, error) {
	reqBody := Request{
		Model:          c.model,
		Messages:       []Message{{Role: "user", Content: prompt}},
		ResponseFormat: ResponseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("completion request rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result completionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ParseError{Content: string(body), Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(result.Choices) == 0 {
		return nil, &ParseError{Content: string(body), Err: errors.New("no choices in API response")}
	}

	content := result.Choices[0].Message.Content
	if !json.Valid([]byte(content)) {
		return nil, &ParseError{Content: content}
	}

	return json.RawMessage(content), nil
}

func outcomeOf(err error) string {
	var reqErr *RequestError
	var parseErr *ParseError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &reqErr):
		return OutcomeRequestError
	case errors.As(err, &parseErr):
		return OutcomeParseError
	default:
		return OutcomeTransportError
	}
}

// decodeCompletion unmarshals model content into dst, reporting shape
// mismatches as ParseError. The content must be a JSON object.
func decodeCompletion(content json.RawMessage, dst any) error {
	if trimmed := bytes.TrimSpace(content); len(trimmed) == 0 || trimmed[0] != '{' {
		return &ParseError{Content: string(content), Err: errors.New("content is not a JSON object")}
	}
	if err := json.Unmarshal(content, dst); err != nil {
		return &ParseError{Content: string(content), Err: err}
	}
	return nil
}

// stringList dereferences a decoded string array, rejecting null entries.
// A missing or null array yields an empty list.
func stringList(field string, values []*string, content json.RawMessage) ([]string, error) {
	out := make([]string, 0, len(values))
	for i, v := range values {
		if v == nil {
			return nil, &ParseError{Content: string(content), Err: fmt.Errorf("%s[%d] is null", field, i)}
		}
		out = append(out, *v)
	}
	return out, nil
}
