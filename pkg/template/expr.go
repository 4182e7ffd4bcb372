package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rolerabbit/rabbitflow/pkg/models"
)

// comparison operators, longest first so ">=" wins over ">".
var operators = []string{"==", "!=", ">=", "<=", ">", "<", "contains"}

// EvaluateCondition evaluates a boolean expression against the run context.
// The expression is either a single operand, judged by truthiness, or a
// binary comparison "left OP right". Operands may be {{...}} templates,
// $variables, bare context paths, or literals.
func EvaluateCondition(expr string, rc *models.RunContext) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false, fmt.Errorf("empty condition expression")
	}

	left, op, right, found := splitComparison(expr)
	if !found {
		return Truthy(resolveOperand(expr, rc)), nil
	}

	lv := resolveOperand(left, rc)
	rv := resolveOperand(right, rc)

	return compare(lv, op, rv)
}

func splitComparison(expr string) (left, op, right string, found bool) {
	for _, candidate := range operators {
		padded := " " + candidate + " "

		if idx := strings.Index(expr, padded); idx >= 0 {
			return strings.TrimSpace(expr[:idx]), candidate, strings.TrimSpace(expr[idx+len(padded):]), true
		}
	}

	return "", "", "", false
}

func resolveOperand(operand string, rc *models.RunContext) any {
	operand = strings.TrimSpace(operand)

	// Quoted string literal
	if len(operand) >= 2 {
		if (operand[0] == '"' && operand[len(operand)-1] == '"') ||
			(operand[0] == '\'' && operand[len(operand)-1] == '\'') {
			return operand[1 : len(operand)-1]
		}
	}

	if operand == "true" {
		return true
	}

	if operand == "false" {
		return false
	}

	if num, err := strconv.ParseFloat(operand, 64); err == nil {
		return num
	}

	// {{...}} template token
	if strings.HasPrefix(operand, "{{") && strings.HasSuffix(operand, "}}") {
		return Resolve(operand[2:len(operand)-2], rc)
	}

	// $variable or bare context path
	return Resolve(operand, rc)
}

func compare(left any, op string, right any) (bool, error) {
	switch op {
	case "==":
		return looseEqual(left, right), nil
	case "!=":
		return !looseEqual(left, right), nil
	case "contains":
		ls, ok1 := left.(string)
		rs, ok2 := right.(string)

		if !ok1 || !ok2 {
			return false, fmt.Errorf("contains requires string operands, got %T and %T", left, right)
		}

		return strings.Contains(ls, rs), nil
	}

	ln, okL := asNumber(left)
	rn, okR := asNumber(right)

	if !okL || !okR {
		return false, fmt.Errorf("operator %q requires numeric operands, got %T and %T", op, left, right)
	}

	switch op {
	case ">":
		return ln > rn, nil
	case ">=":
		return ln >= rn, nil
	case "<":
		return ln < rn, nil
	case "<=":
		return ln <= rn, nil
	default:
		return false, fmt.Errorf("unsupported operator %q", op)
	}
}

func looseEqual(left, right any) bool {
	if ln, ok := asNumber(left); ok {
		if rn, ok := asNumber(right); ok {
			return ln == rn
		}
	}

	return fmt.Sprintf("%v", left) == fmt.Sprintf("%v", right)
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()

		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)

		return f, err == nil
	default:
		return 0, false
	}
}

// Truthy converts arbitrary resolved values to a boolean, matching the
// semantics used for single-operand condition expressions.
func Truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}

		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case nil:
		return false
	default:
		return false
	}
}
