package model

import "time"

// AuthorizationRecord captures a single user-granted approval for an exact
// scope. Records are created only on explicit approval, never for denials,
// and are immutable after creation – a changed decision supersedes the
// record or revokes it, it never mutates fields in place.
type AuthorizationRecord struct {
	ID        string    `json:"id" yaml:"id"`
	Scope     ScopeKey  `json:"scope" yaml:"scope"`
	GrantedAt time.Time `json:"grantedAt" yaml:"grantedAt"`
	GrantedBy string    `json:"grantedBy,omitempty" yaml:"grantedBy,omitempty"`

	// ExpiresAt bounds the record lifetime; nil means no expiry.
	ExpiresAt *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`

	// RevokedAt is set when the record is revoked or superseded. Revoked
	// records are retained for auditability but never satisfy a lookup.
	RevokedAt *time.Time `json:"revokedAt,omitempty" yaml:"revokedAt,omitempty"`

	// Standing marks a grant that a suitably configured policy engine may
	// honor for HIGH-tier calls without re-confirmation.
	Standing bool `json:"standing,omitempty" yaml:"standing,omitempty"`
}

// Active reports whether the record authorizes calls at the given instant:
// not revoked and not past its expiry.
func (r *AuthorizationRecord) Active(now time.Time) bool {
	if r == nil || r.RevokedAt != nil {
		return false
	}
	if r.ExpiresAt != nil && !now.Before(*r.ExpiresAt) {
		return false
	}
	return true
}
