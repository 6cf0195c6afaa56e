package session

import "time"

// KYC verification states reported by the backend.
const (
	KYCStatusVerified = "verified"
	KYCStatusPending  = "pending"
	KYCStatusRejected = "rejected"
)

// UserProfile is the account record persisted alongside the auth token. The
// backend has shipped three spellings of the KYC flag over time; all are kept
// on the wire shape and normalized through KYCComplete.
type UserProfile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	KYCStatus     string    `json:"kycStatus,omitempty"`
	KYCVerified   *bool     `json:"kycVerified,omitempty"`
	IsKYCVerified *bool     `json:"isKycVerified,omitempty"`
	KYCLevel      int       `json:"kycLevel,omitempty"`
}

// KYCComplete reports whether any of the backend's KYC flags marks the
// profile as verified.
func (p UserProfile) KYCComplete() bool {
	if p.KYCStatus == KYCStatusVerified {
		return true
	}
	if p.KYCVerified != nil && *p.KYCVerified {
		return true
	}
	if p.IsKYCVerified != nil && *p.IsKYCVerified {
		return true
	}
	return false
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	Name          *string
	Email         *string
	Phone         *string
	KYCStatus     *string
	KYCVerified   *bool
	IsKYCVerified *bool
	KYCLevel      *int
}

// Apply shallow-merges the patch over the profile and bumps UpdatedAt.
func (p UserProfile) Apply(patch ProfilePatch) UserProfile {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.KYCStatus != nil {
		p.KYCStatus = *patch.KYCStatus
	}
	if patch.KYCVerified != nil {
		p.KYCVerified = patch.KYCVerified
	}
	if patch.IsKYCVerified != nil {
		p.IsKYCVerified = patch.IsKYCVerified
	}
	if patch.KYCLevel != nil {
		p.KYCLevel = *patch.KYCLevel
	}
	p.UpdatedAt = time.Now().UTC()
	return p
}
