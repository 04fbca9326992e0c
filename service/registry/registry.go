// Package registry defines the Tool Registry collaborator: the source of
// tool identity and risk annotations. The engine re-reads descriptors per
// decision cycle, never caching them, since a registry may revise
// annotations between calls.
package registry

import (
	"context"
	"errors"

	"github.com/toolgate/toolgate/model"
)

// ErrToolNotFound is returned when no descriptor exists for a tool name.
// The coordinator fails closed on it – risk of an unknown tool cannot be
// classified.
var ErrToolNotFound = errors.New("registry: tool not found")

// Service supplies tool descriptors by name.
type Service interface {
	// Descriptor returns the descriptor for the named tool, or an error
	// wrapping ErrToolNotFound when absent.
	Descriptor(ctx context.Context, toolName string) (*model.ToolDescriptor, error)
}
