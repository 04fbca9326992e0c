// Package resolver extracts the concrete target resource of a tool call
// from its arguments. Each tool gets a resource-identification rule – a
// small path expression over the argument map, such as "repo.full_name" or
// "ids[0]" – and the resolved value becomes the ResourceID of the scope the
// authorization applies to.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/toolbox"
)

// ErrUnresolvable is returned when no rule exists for a tool or the rule's
// path selects nothing. Callers fail closed on it.
var ErrUnresolvable = errors.New("resolver: resource id unresolvable")

// Service extracts a resource id from a tool call's arguments.
type Service interface {
	ResourceID(ctx context.Context, toolName string, arguments map[string]interface{}) (string, error)
}

// Rules is a path-expression based Service implementation.
type Rules struct {
	mu    sync.RWMutex
	rules map[string]*Path
}

// New creates an empty rule set.
func New() *Rules {
	return &Rules{rules: make(map[string]*Path)}
}

// NewWithRules creates a rule set from a toolName->expression map, such as
// one loaded from configuration.
func NewWithRules(expressions map[string]string) (*Rules, error) {
	ret := New()
	for toolName, expression := range expressions {
		if err := ret.Register(toolName, expression); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// Register binds a path expression to a tool name.
func (r *Rules) Register(toolName, expression string) error {
	if toolName == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	path, err := ParsePath(expression)
	if err != nil {
		return fmt.Errorf("invalid rule for tool %s: %w", toolName, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[toolName] = path
	return nil
}

// ResourceID applies the tool's rule to the arguments. A missing rule, a
// path that selects nothing, and an empty selected value all resolve to
// ErrUnresolvable.
func (r *Rules) ResourceID(_ context.Context, toolName string, arguments map[string]interface{}) (string, error) {
	r.mu.RLock()
	path := r.rules[toolName]
	r.mu.RUnlock()
	if path == nil {
		return "", fmt.Errorf("%w: no rule for tool %s", ErrUnresolvable, toolName)
	}
	value, ok := path.Select(arguments)
	if !ok {
		return "", fmt.Errorf("%w: path %s selected nothing for tool %s", ErrUnresolvable, path, toolName)
	}
	resourceID := strings.TrimSpace(toolbox.AsString(value))
	if resourceID == "" {
		return "", fmt.Errorf("%w: path %s selected an empty value for tool %s", ErrUnresolvable, path, toolName)
	}
	return resourceID, nil
}

var _ Service = (*Rules)(nil)
