package model

import "fmt"

// ScopeKey is the (session, resource, tool) triple that bounds the
// applicability of an authorization. Two keys are equal iff all three
// fields are equal – there is no wildcard or prefix matching anywhere in
// the engine. The struct is comparable so it can be used directly as a
// map key.
type ScopeKey struct {
	SessionID  string `json:"sessionId" yaml:"sessionId"`
	ResourceID string `json:"resourceId" yaml:"resourceId"`
	ToolName   string `json:"toolName" yaml:"toolName"`
}

// IsValid reports whether all three scope fields are populated.
func (s ScopeKey) IsValid() bool {
	return s.SessionID != "" && s.ResourceID != "" && s.ToolName != ""
}

// String renders the scope in a stable session/tool/resource form suitable
// for log entries and storage paths.
func (s ScopeKey) String() string {
	return fmt.Sprintf("%s/%s/%s", s.SessionID, s.ToolName, s.ResourceID)
}
