// Package memory provides an in-memory tool registry that hosts can keep in
// sync with their discovery layer (for example an MCP tools/list snapshot).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/toolgate/toolgate/model"
	"github.com/toolgate/toolgate/service/registry"
)

// Service is a map-backed registry.Service implementation.
type Service struct {
	mu    sync.RWMutex
	tools map[string]*model.ToolDescriptor
}

// New creates a registry pre-populated with the supplied descriptors.
func New(tools ...*model.ToolDescriptor) *Service {
	s := &Service{tools: make(map[string]*model.ToolDescriptor)}
	for _, tool := range tools {
		s.Upsert(tool)
	}
	return s
}

// Descriptor returns a copy of the descriptor for the named tool.
func (s *Service) Descriptor(_ context.Context, toolName string) (*model.ToolDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tool, ok := s.tools[toolName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", registry.ErrToolNotFound, toolName)
	}
	clone := *tool
	if tool.Annotations != nil {
		annotations := *tool.Annotations
		clone.Annotations = &annotations
	}
	return &clone, nil
}

// Upsert registers or replaces a descriptor; nil or unnamed descriptors are
// ignored.
func (s *Service) Upsert(tool *model.ToolDescriptor) {
	if tool == nil || tool.Name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[tool.Name] = tool
}

// Remove deletes a descriptor by name; no-op when absent.
func (s *Service) Remove(toolName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tools, toolName)
}

// Names returns the sorted registered tool names.
func (s *Service) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ registry.Service = (*Service)(nil)
