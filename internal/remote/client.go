// Package remote talks to the Anthropic Messages API, optionally declaring MCP
// servers the service may use while answering. Tool invocations are reported
// by the service and recorded here; nothing is ever executed locally.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/minutesdoc/internal/capability"
)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-sonnet-4-20250514"

	apiVersion = "2023-06-01"
	mcpBeta    = "mcp-client-2025-04-04"
)

// Invoker sends one prompt to the remote service.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Response, error)
}

// Request is a single prompt plus the capabilities the service may use.
type Request struct {
	// Op labels the call in Stats.
	Op           Op
	Prompt       string
	MaxTokens    int
	Capabilities []capability.Capability
}

// Response partitions the reply into generated text and tool-use intents.
type Response struct {
	Text            string           `json:"text"`
	ToolInvocations []ToolInvocation `json:"tool_invocations,omitempty"`
	StopReason      string           `json:"stop_reason,omitempty"`
	Usage           Usage            `json:"usage"`
}

// HasToolUse reports whether at least one invocation did not come back as an
// error.
func (r Response) HasToolUse() bool {
	for _, ti := range r.ToolInvocations {
		if ti.Result == nil || !ti.Result.IsError {
			return true
		}
	}
	return false
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ToolInvocation records a tool call the service reports having made.
type ToolInvocation struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Server    string          `json:"server,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    *ToolResult     `json:"result,omitempty"`
}

type ToolResult struct {
	IsError bool   `json:"is_error"`
	Text    string `json:"text,omitempty"`
}

type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client calls the Messages API over plain HTTP.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	stats      *Stats
	log        *slog.Logger
}

func NewClient(cfg ClientConfig, stats *Stats, log *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		stats: stats,
		log:   log,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mcpServer struct {
	Type               string `json:"type"`
	URL                string `json:"url"`
	Name               string `json:"name"`
	AuthorizationToken string `json:"authorization_token,omitempty"`
}

type messagesRequest struct {
	Model      string      `json:"model"`
	MaxTokens  int         `json:"max_tokens"`
	Messages   []message   `json:"messages"`
	MCPServers []mcpServer `json:"mcp_servers,omitempty"`
}

type contentBlock struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	ID         string          `json:"id,omitempty"`
	Name       string          `json:"name,omitempty"`
	ServerName string          `json:"server_name,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	ToolUseID  string          `json:"tool_use_id,omitempty"`
	IsError    bool            `json:"is_error,omitempty"`
	Content    json.RawMessage `json:"content,omitempty"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke sends the request once. Every failure is a *ServiceError; there is
// no retry.
func (c *Client) Invoke(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, err := c.invoke(ctx, req)
	elapsed := time.Since(start).Milliseconds()
	if c.stats != nil {
		if err != nil {
			c.stats.RecordFailure(req.Op, elapsed)
		} else {
			c.stats.Record(req.Op, elapsed)
		}
	}
	if err != nil {
		c.log.Debug("remote invoke failed", "op", req.Op, "error", err, "ms", elapsed)
		return Response{}, err
	}

	c.log.Debug("remote invoke complete",
		"op", req.Op,
		"ms", elapsed,
		"stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"tool_invocations", len(resp.ToolInvocations),
	)
	for _, ti := range resp.ToolInvocations {
		c.log.Info("remote tool invocation", "tool", ti.Name, "server", ti.Server, "id", ti.ID)
	}
	return resp, nil
}

func (c *Client) invoke(ctx context.Context, req Request) (Response, error) {
	if c.apiKey == "" {
		return Response{}, &ServiceError{Op: "invoke", Message: "api key not configured"}
	}

	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: req.MaxTokens,
		Messages: []message{
			{Role: "user", Content: req.Prompt},
		},
	}
	if reqBody.MaxTokens <= 0 {
		reqBody.MaxTokens = 1000
	}
	for _, cp := range req.Capabilities {
		reqBody.MCPServers = append(reqBody.MCPServers, mcpServer{
			Type:               "url",
			URL:                cp.URL,
			Name:               cp.Name,
			AuthorizationToken: cp.AuthorizationToken,
		})
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, &ServiceError{Op: "marshal request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return Response{}, &ServiceError{Op: "create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	if len(reqBody.MCPServers) > 0 {
		httpReq.Header.Set("anthropic-beta", mcpBeta)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, &ServiceError{Op: "send", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Response{}, &ServiceError{Op: "read response", StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, &ServiceError{
			Op:         "status",
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}

	var apiResp messagesResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return Response{}, &ServiceError{Op: "decode response", StatusCode: resp.StatusCode, Err: err}
	}
	if apiResp.Error != nil {
		return Response{}, &ServiceError{
			Op:         "api error",
			StatusCode: resp.StatusCode,
			Message:    apiResp.Error.Type + ": " + apiResp.Error.Message,
		}
	}

	return partition(apiResp), nil
}

// partition splits content blocks into text and tool invocations, attaching
// results to the invocation with the matching id.
func partition(apiResp messagesResponse) Response {
	out := Response{
		StopReason: apiResp.StopReason,
		Usage:      apiResp.Usage,
	}
	var text strings.Builder
	index := make(map[string]int)
	for _, b := range apiResp.Content {
		switch b.Type {
		case "text":
			text.WriteString(b.Text)
		case "mcp_tool_use", "tool_use":
			index[b.ID] = len(out.ToolInvocations)
			out.ToolInvocations = append(out.ToolInvocations, ToolInvocation{
				ID:        b.ID,
				Name:      b.Name,
				Server:    b.ServerName,
				Arguments: b.Input,
			})
		case "mcp_tool_result", "tool_result":
			if i, ok := index[b.ToolUseID]; ok {
				out.ToolInvocations[i].Result = &ToolResult{
					IsError: b.IsError,
					Text:    resultText(b.Content),
				}
			}
		}
	}
	out.Text = text.String()
	return out
}

// resultText flattens a tool result, which is either a string or a list of
// text blocks.
func resultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return string(raw)
	}
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func errorMessage(body []byte) string {
	var payload struct {
		Error *struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != nil {
		return payload.Error.Type + ": " + payload.Error.Message
	}
	return truncate(strings.TrimSpace(string(body)), 200)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

var _ Invoker = (*Client)(nil)

// String identifies the model and endpoint in logs.
func (c *Client) String() string {
	return fmt.Sprintf("%s (%s)", c.model, c.baseURL)
}
