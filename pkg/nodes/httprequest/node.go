// Package httprequest provides the HTTP_REQUEST node.
package httprequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/template"
)

const retryBackoffBase = 100 * time.Millisecond

// Config defines the configuration for HTTP request nodes.
type Config struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    string
	Timeout time.Duration
	Retries int
}

// Node implements HTTP_REQUEST.
type Node struct {
	id     string
	config Config
	client *http.Client
}

// NewNode creates an HTTP request node from its config.
func NewNode(id string, config map[string]any) (*Node, error) {
	parsed := Config{
		Method:  http.MethodGet,
		Headers: make(map[string]string),
		Timeout: 30 * time.Second,
		Retries: 1,
	}

	url, ok := config["url"].(string)
	if !ok || url == "" {
		return nil, errors.New("missing required field 'url'")
	}

	parsed.URL = url

	if method, ok := config["method"].(string); ok {
		parsed.Method = strings.ToUpper(method)
	}

	if headers, ok := config["headers"].(map[string]any); ok {
		for key, value := range headers {
			if str, ok := value.(string); ok {
				parsed.Headers[key] = str
			}
		}
	}

	if body, ok := config["body"].(string); ok {
		parsed.Body = body
	}

	if timeoutMs, ok := config["timeout_ms"].(float64); ok && timeoutMs > 0 {
		parsed.Timeout = time.Duration(timeoutMs) * time.Millisecond
	}

	if retries, ok := config["retries"].(float64); ok && retries >= 1 {
		parsed.Retries = int(retries)
	}

	return &Node{
		id:     id,
		config: parsed,
		client: &http.Client{Timeout: parsed.Timeout},
	}, nil
}

func (n *Node) ID() string {
	return n.id
}

func (n *Node) Type() string {
	return models.NodeTypeHTTPRequest
}

// Execute renders the url, headers, and body templates, performs the request,
// and returns status, headers, and the decoded body.
func (n *Node) Execute(ctx context.Context, rc *models.RunContext) (*models.NodeResult, error) {
	url, err := template.RenderString(n.config.URL, rc)
	if err != nil {
		return nil, fmt.Errorf("rendering url: %w", err)
	}

	body, err := template.RenderString(n.config.Body, rc)
	if err != nil {
		return nil, fmt.Errorf("rendering body: %w", err)
	}

	headers := make(map[string]string, len(n.config.Headers))
	for key, value := range n.config.Headers {
		rendered, err := template.RenderString(value, rc)
		if err != nil {
			return nil, fmt.Errorf("rendering header %q: %w", key, err)
		}

		headers[key] = rendered
	}

	var lastErr error

	for attempt := 1; attempt <= n.config.Retries; attempt++ {
		output, err := n.perform(ctx, url, body, headers)
		if err == nil {
			return &models.NodeResult{NodeID: n.id, Output: output}, nil
		}

		lastErr = err

		if attempt == n.config.Retries {
			break
		}

		// Linear backoff between attempts, cut short on cancellation.
		timer := time.NewTimer(time.Duration(attempt) * retryBackoffBase)
		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, fmt.Errorf("http request failed after %d attempts: %w", attempt, lastErr)
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("http request failed after %d attempts: %w", n.config.Retries, lastErr)
}

func (n *Node) perform(ctx context.Context, url, body string, headers map[string]string) (map[string]any, error) {
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, n.config.Method, url, reqBody)
	if err != nil {
		return nil, err
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	output := map[string]any{
		"status_code": resp.StatusCode,
		"headers":     flattenHeaders(resp.Header),
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err == nil {
		output["body"] = decoded
	} else {
		output["body"] = string(raw)
	}

	return output, nil
}

func flattenHeaders(header http.Header) map[string]string {
	flat := make(map[string]string, len(header))
	for key := range header {
		flat[key] = header.Get(key)
	}

	return flat
}
