package model

// Request describes one tool-call authorization request. ResourceID may be
// left empty when the caller relies on a resolver to extract the target
// resource from the call arguments.
type Request struct {
	SessionID  string                 `json:"sessionId" yaml:"sessionId"`
	ToolName   string                 `json:"toolName" yaml:"toolName"`
	ResourceID string                 `json:"resourceId,omitempty" yaml:"resourceId,omitempty"`
	Arguments  map[string]interface{} `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// Scope builds the ScopeKey for the request with the resolved resource id.
func (r *Request) Scope(resourceID string) ScopeKey {
	return ScopeKey{SessionID: r.SessionID, ResourceID: resourceID, ToolName: r.ToolName}
}
