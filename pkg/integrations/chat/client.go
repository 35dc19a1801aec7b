// Package chat provides a client for OpenAI-compatible chat completion
// APIs. The default endpoint is DashScope's compatible mode, but any
// service speaking the /chat/completions protocol works.
package chat

import (
	"context"
	"strings"

	"github.com/erdraw/erdraw/pkg/errors"
	"github.com/erdraw/erdraw/pkg/integrations"
)

// DefaultBaseURL is the DashScope OpenAI-compatible endpoint.
const DefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// DefaultModel is used when a request doesn't name a model.
const DefaultModel = "deepseek-v3.2"

// validRoles are the message roles forwarded to the upstream API.
var validRoles = map[string]bool{
	"system":    true,
	"user":      true,
	"assistant": true,
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports upstream token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Request is a chat completion request.
type Request struct {
	Model          string    `json:"model,omitempty"`
	Messages       []Message `json:"messages"`
	EnableThinking *bool     `json:"enableThinking,omitempty"`
}

// Response is the distilled completion result.
type Response struct {
	Reply     string `json:"reply"`
	Reasoning string `json:"reasoning,omitempty"`
	Model     string `json:"model"`
	Usage     *Usage `json:"usage,omitempty"`
}

// Client calls an OpenAI-compatible chat completions endpoint.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
	apiKey  string
}

// NewClient creates a chat client. An empty baseURL falls back to
// [DefaultBaseURL]. The apiKey is sent as a bearer token.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(nil),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// NormalizeMessages filters a conversation down to well-formed turns:
// known roles, non-empty trimmed content. Order is preserved.
func NormalizeMessages(in []Message) []Message {
	var out []Message
	for _, m := range in {
		role := strings.TrimSpace(m.Role)
		content := strings.TrimSpace(m.Content)
		if !validRoles[role] || content == "" {
			continue
		}
		out = append(out, Message{Role: role, Content: content})
	}
	return out
}

// wire types for the upstream protocol. Content can be a plain string or a
// list of typed parts; rawContent handles both.

type wireRequest struct {
	Model     string     `json:"model"`
	Messages  []Message  `json:"messages"`
	Stream    bool       `json:"stream"`
	ExtraBody *wireExtra `json:"extra_body,omitempty"`
}

type wireExtra struct {
	EnableThinking bool `json:"enable_thinking"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Content          rawContent `json:"content"`
			ReasoningContent rawContent `json:"reasoning_content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// Complete sends a conversation and returns the assistant's reply.
// Returns ErrCodeInvalidInput when no well-formed messages remain after
// normalization, and ErrCodeUpstream when the API responds without content.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if c.apiKey == "" {
		return nil, errors.New(errors.ErrCodeUpstream, "chat API key not configured")
	}

	messages := NormalizeMessages(req.Messages)
	if len(messages) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no valid chat messages")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultModel
	}

	wire := wireRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
	}
	// Thinking defaults to on, matching the upstream default.
	thinking := true
	if req.EnableThinking != nil {
		thinking = *req.EnableThinking
	}
	wire.ExtraBody = &wireExtra{EnableThinking: thinking}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	url := c.baseURL + "/chat/completions"

	var resp wireResponse
	err := c.Do(ctx, func() error {
		return c.PostJSON(ctx, url, headers, wire, &resp)
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstream, err, "chat completion request")
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New(errors.ErrCodeUpstream, "model returned no choices")
	}

	msg := resp.Choices[0].Message
	return &Response{
		Reply:     strings.TrimSpace(msg.Content.Text()),
		Reasoning: strings.TrimSpace(msg.ReasoningContent.Text()),
		Model:     model,
		Usage:     resp.Usage,
	}, nil
}
