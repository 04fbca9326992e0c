package model

// Annotations carries the behavioural hints a tool provider declares for a
// tool. All fields are optional – a nil pointer means the provider did not
// state the hint, which consumers must treat as the most conservative case
// rather than as "false". Hints are self-declared and therefore untrusted
// input; nothing in this package verifies them.
type Annotations struct {
	// ReadOnly indicates the tool does not modify its environment.
	ReadOnly *bool `json:"readOnlyHint,omitempty" yaml:"readOnlyHint,omitempty"`
	// Destructive indicates the tool may perform irreversible updates.
	Destructive *bool `json:"destructiveHint,omitempty" yaml:"destructiveHint,omitempty"`
	// Idempotent indicates repeated calls with identical arguments have no
	// additional effect.
	Idempotent *bool `json:"idempotentHint,omitempty" yaml:"idempotentHint,omitempty"`
	// OpenWorld indicates the tool interacts with external entities beyond
	// its owning server.
	OpenWorld *bool `json:"openWorldHint,omitempty" yaml:"openWorldHint,omitempty"`
}

// IsReadOnly resolves the read-only hint; absent defaults to false.
func (a *Annotations) IsReadOnly() bool {
	if a == nil || a.ReadOnly == nil {
		return false
	}
	return *a.ReadOnly
}

// IsDestructive resolves the destructive hint; absent defaults to true so
// that an unannotated tool is never classified as safe.
func (a *Annotations) IsDestructive() bool {
	if a == nil || a.Destructive == nil {
		return true
	}
	return *a.Destructive
}

// IsIdempotent resolves the idempotent hint; absent defaults to false.
func (a *Annotations) IsIdempotent() bool {
	if a == nil || a.Idempotent == nil {
		return false
	}
	return *a.Idempotent
}

// IsOpenWorld resolves the open-world hint; absent defaults to true.
func (a *Annotations) IsOpenWorld() bool {
	if a == nil || a.OpenWorld == nil {
		return true
	}
	return *a.OpenWorld
}

// ToolDescriptor identifies a tool and its declared risk hints. Descriptors
// are immutable once fetched from a registry; the engine reads them per
// decision cycle and never caches them beyond one, since a registry may
// revise annotations between calls.
type ToolDescriptor struct {
	Name        string       `json:"name" yaml:"name"`
	Server      string       `json:"server,omitempty" yaml:"server,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}
