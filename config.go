package toolgate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/toolgate/toolgate/policy"
)

// Duration wraps time.Duration so config documents can express intervals as
// Go duration strings ("30s", "2m") in both YAML and JSON.
type Duration time.Duration

// Std converts to the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML accepts either a duration string or an integer nanosecond
// count.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err == nil {
		parsed, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", text, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var nanos int64
	if err := node.Decode(&nanos); err != nil {
		return fmt.Errorf("invalid duration node: %w", err)
	}
	*d = Duration(nanos)
	return nil
}

// MarshalYAML emits the duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalJSON accepts the same forms as UnmarshalYAML.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		parsed, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", text, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var nanos int64
	if err := json.Unmarshal(data, &nanos); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(nanos)
	return nil
}

// MarshalJSON emits the duration string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// LedgerConfig selects the authorization ledger backend. An empty BaseURL
// keeps records in process memory; a non-empty value stores them under that
// URL through the abstract file system (file:///var/toolgate, mem://...).
type LedgerConfig struct {
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
}

// AuditConfig controls the structured audit log.
type AuditConfig struct {
	// Level is a zerolog level name; "disabled" turns auditing off.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

// Config is the serialisable service configuration.
type Config struct {
	// ApprovalTimeout bounds how long a single request waits for the user
	// to answer an approval prompt.
	ApprovalTimeout Duration `json:"approvalTimeout,omitempty" yaml:"approvalTimeout,omitempty"`

	// RecordTTL bounds the lifetime of recorded approvals; zero means
	// records only end by revocation or supersession.
	RecordTTL Duration `json:"recordTTL,omitempty" yaml:"recordTTL,omitempty"`

	Policy policy.Config `json:"policy,omitempty" yaml:"policy,omitempty"`
	Ledger LedgerConfig  `json:"ledger,omitempty" yaml:"ledger,omitempty"`
	Audit  AuditConfig   `json:"audit,omitempty" yaml:"audit,omitempty"`

	// Resolver maps tool names to argument path expressions used to extract
	// the target resource id, e.g. "delete_repo": "repo.full_name".
	Resolver map[string]string `json:"resolver,omitempty" yaml:"resolver,omitempty"`
}

// DefaultConfig returns the configuration New falls back to when no config
// option is supplied.
func DefaultConfig() *Config {
	return &Config{
		ApprovalTimeout: Duration(5 * time.Minute),
		Audit:           AuditConfig{Level: "info"},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.ApprovalTimeout <= 0 {
		return fmt.Errorf("approvalTimeout must be positive, got %v", c.ApprovalTimeout.Std())
	}
	if c.RecordTTL < 0 {
		return fmt.Errorf("recordTTL must not be negative, got %v", c.RecordTTL.Std())
	}
	for tool, expression := range c.Resolver {
		if tool == "" || expression == "" {
			return fmt.Errorf("resolver rule %q: tool name and expression are required", tool)
		}
	}
	return nil
}

// LoadConfig reads a YAML configuration document from the supplied URL
// (file://, mem://, s3:// or any scheme the abstract file system supports),
// fills defaults for unset fields and validates the result.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %v: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	if config.ApprovalTimeout == 0 {
		config.ApprovalTimeout = DefaultConfig().ApprovalTimeout
	}
	if config.Audit.Level == "" {
		config.Audit.Level = DefaultConfig().Audit.Level
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
