// Package cmd provides common initialization functions for the rabbitflow
// binaries.
package cmd

import (
	"log/slog"

	"github.com/rolerabbit/rabbitflow/pkg/registry"
)

// NewRegistry builds the node registry with every built-in node type.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	return registry.NewDefaultRegistry(logger)
}
