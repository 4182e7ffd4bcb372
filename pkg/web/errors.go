package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/rolerabbit/rabbitflow/pkg/engine"
	"github.com/rolerabbit/rabbitflow/pkg/graph"
	"github.com/rolerabbit/rabbitflow/pkg/persistence"
	"github.com/rolerabbit/rabbitflow/pkg/registry"
	"github.com/rolerabbit/rabbitflow/pkg/services"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError maps service and persistence errors onto problem+json
// responses. Structural graph errors carry their full error list; they are
// never reported under the execution error types.
func handleServiceError(c fiber.Ctx, err error) error {
	var validation *graph.ValidationError
	if errors.As(err, &validation) {
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("graph_validation_error").
			WithDetail(validation.Error())

		return c.Status(fiber.StatusBadRequest).JSON(&validationProblem{
			Problem: problem,
			Errors:         validation.Errors,
		})
	}

	var schemaErr *registry.SchemaValidationError
	if errors.As(err, &schemaErr) {
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("schema_validation_error").
			WithDetail(schemaErr.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	switch {
	case errors.Is(err, engine.ErrInvalidJSON):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("invalid_json").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case persistence.IsWorkflowNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("workflow_not_found").
			WithDetail("workflow not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case persistence.IsExecutionNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("execution_not_found").
			WithDetail("execution not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	default:
		return internalError(c, err)
	}
}

// validationProblem extends the problem document with the per-item graph
// error list.
type validationProblem struct {
	*problems.Problem

	Errors []graph.GraphError `json:"errors"`
}
