// Package template provides {{field}} interpolation for dynamic node
// configuration. Tokens of the form {{path.to.field}} resolve against prior
// node outputs in the run context; {{$name}} resolves a workflow-scoped
// variable.
package template

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rolerabbit/rabbitflow/pkg/models"
)

// Render interpolates every {{...}} token in input. A string consisting of a
// single token returns the resolved value with its original type; anything
// else renders to a string, with non-string values JSON-encoded in place.
// Unresolvable tokens render as nil / empty.
func Render(input string, rc *models.RunContext) (any, error) {
	tokens, err := scan(input)
	if err != nil {
		return nil, err
	}

	if len(tokens) == 0 {
		return input, nil
	}

	// Whole-string single token keeps the resolved type.
	if len(tokens) == 1 && tokens[0].start == 0 && tokens[0].end == len(input) {
		return Resolve(tokens[0].expr, rc), nil
	}

	var b strings.Builder

	last := 0
	for _, token := range tokens {
		b.WriteString(input[last:token.start])
		b.WriteString(stringify(Resolve(token.expr, rc)))
		last = token.end
	}

	b.WriteString(input[last:])

	return b.String(), nil
}

// RenderString is Render constrained to a string result.
func RenderString(input string, rc *models.RunContext) (string, error) {
	value, err := Render(input, rc)
	if err != nil {
		return "", err
	}

	return stringify(value), nil
}

// RenderConfig deep-interpolates every string field of a node config,
// returning a new map. The input config is never mutated.
func RenderConfig(config map[string]any, rc *models.RunContext) (map[string]any, error) {
	rendered := make(map[string]any, len(config))

	for key, value := range config {
		out, err := renderValue(value, rc)
		if err != nil {
			return nil, fmt.Errorf("config field %q: %w", key, err)
		}

		rendered[key] = out
	}

	return rendered, nil
}

func renderValue(value any, rc *models.RunContext) (any, error) {
	switch v := value.(type) {
	case string:
		return Render(v, rc)
	case map[string]any:
		return RenderConfig(v, rc)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			rendered, err := renderValue(item, rc)
			if err != nil {
				return nil, err
			}

			out[i] = rendered
		}

		return out, nil
	default:
		return value, nil
	}
}

// Resolve evaluates a single token expression: "$name" reads a workflow
// variable, anything else is a dot path into the run context outputs.
func Resolve(expr string, rc *models.RunContext) any {
	expr = strings.TrimSpace(expr)

	if name, ok := strings.CutPrefix(expr, "$"); ok {
		value, _ := rc.Variable(name)

		return value
	}

	value, _ := rc.Lookup(expr)

	return value
}

type token struct {
	start, end int
	expr       string
}

func scan(input string) ([]token, error) {
	var tokens []token

	for i := 0; i < len(input); {
		open := strings.Index(input[i:], "{{")
		if open < 0 {
			break
		}

		open += i

		closing := strings.Index(input[open:], "}}")
		if closing < 0 {
			return nil, fmt.Errorf("unterminated template token in %q", input)
		}

		closing += open + 2
		tokens = append(tokens, token{
			start: open,
			end:   closing,
			expr:  input[open+2 : closing-2],
		})
		i = closing
	}

	return tokens, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64, int, int64, bool:
		return fmt.Sprintf("%v", v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	}
}
