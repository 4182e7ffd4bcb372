// Package aianalyze provides the AI_AGENT_ANALYZE node.
package aianalyze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rolerabbit/rabbitflow/pkg/models"
	"github.com/rolerabbit/rabbitflow/pkg/template"
)

const defaultTimeout = 60 * time.Second

// Config defines the configuration for AI analysis nodes. The API key is
// never stored in the graph; APIKeyEnv names the environment variable that
// holds it.
type Config struct {
	Endpoint     string
	Model        string
	Instructions string
	Input        string
	APIKeyEnv    string
	Timeout      time.Duration
}

// Node implements AI_AGENT_ANALYZE by calling a chat-completion style
// endpoint with rendered instructions and input.
type Node struct {
	id     string
	config Config
	client *http.Client
}

func NewNode(id string, config map[string]any) (*Node, error) {
	parsed := Config{Timeout: defaultTimeout}

	endpoint, ok := config["endpoint"].(string)
	if !ok || endpoint == "" {
		return nil, errors.New("missing required field 'endpoint'")
	}

	parsed.Endpoint = endpoint

	model, ok := config["model"].(string)
	if !ok || model == "" {
		return nil, errors.New("missing required field 'model'")
	}

	parsed.Model = model

	if instructions, ok := config["instructions"].(string); ok {
		parsed.Instructions = instructions
	}

	input, ok := config["input"].(string)
	if !ok || input == "" {
		return nil, errors.New("missing required field 'input'")
	}

	parsed.Input = input

	if keyEnv, ok := config["api_key_env"].(string); ok {
		parsed.APIKeyEnv = keyEnv
	}

	if timeoutMs, ok := config["timeout_ms"].(float64); ok && timeoutMs > 0 {
		parsed.Timeout = time.Duration(timeoutMs) * time.Millisecond
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
	return models.NodeTypeAIAgentAnalyze
}

func (n *Node) Execute(ctx context.Context, rc *models.RunContext) (*models.NodeResult, error) {
	instructions, err := template.RenderString(n.config.Instructions, rc)
	if err != nil {
		return nil, fmt.Errorf("rendering instructions: %w", err)
	}

	input, err := template.RenderString(n.config.Input, rc)
	if err != nil {
		return nil, fmt.Errorf("rendering input: %w", err)
	}

	payload := map[string]any{
		"model": n.config.Model,
		"messages": []map[string]string{
			{"role": "system", "content": instructions},
			{"role": "user", "content": input},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	if n.config.APIKeyEnv != "" {
		key := os.Getenv(n.config.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("environment variable %q is not set", n.config.APIKeyEnv)
		}

		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling analysis endpoint: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analysis endpoint returned %d", resp.StatusCode)
	}

	content, err := extractContent(raw)
	if err != nil {
		return nil, err
	}

	return &models.NodeResult{
		NodeID: n.id,
		Output: map[string]any{
			"analysis": content,
			"model":    n.config.Model,
		},
	}, nil
}

func extractContent(raw []byte) (string, error) {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decoding analysis response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", errors.New("analysis response contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
