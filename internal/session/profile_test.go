package session

import (
	"testing"
	"time"
)

func boolPtr(b bool) *bool { return &b }

func TestKYCCompleteSpellings(t *testing.T) {
	cases := []struct {
		name    string
		profile UserProfile
		want    bool
	}{
		{"status verified", UserProfile{KYCStatus: KYCStatusVerified}, true},
		{"kycVerified flag", UserProfile{KYCVerified: boolPtr(true)}, true},
		{"isKycVerified flag", UserProfile{IsKYCVerified: boolPtr(true)}, true},
		{"no flags", UserProfile{}, false},
		{"pending status", UserProfile{KYCStatus: KYCStatusPending}, false},
		{"flags explicitly false", UserProfile{KYCVerified: boolPtr(false), IsKYCVerified: boolPtr(false)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.profile.KYCComplete(); got != tc.want {
				t.Fatalf("KYCComplete() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyMergesOnlySetFields(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	profile := UserProfile{
		ID:        "u-1",
		Name:      "Adi",
		Email:     "adi@example.com",
		Phone:     "+628111111111",
		CreatedAt: created,
	}

	name := "Adi Pratama"
	status := KYCStatusVerified
	merged := profile.Apply(ProfilePatch{Name: &name, KYCStatus: &status})

	if merged.Name != name {
		t.Fatalf("expected name %q, got %q", name, merged.Name)
	}
	if merged.KYCStatus != KYCStatusVerified {
		t.Fatalf("expected kyc status verified, got %q", merged.KYCStatus)
	}
	if merged.Email != profile.Email || merged.Phone != profile.Phone || merged.ID != profile.ID {
		t.Fatalf("untouched fields changed: %+v", merged)
	}
	if !merged.CreatedAt.Equal(created) {
		t.Fatalf("created timestamp changed: %v", merged.CreatedAt)
	}
	if merged.UpdatedAt.IsZero() {
		t.Fatalf("expected UpdatedAt to be bumped")
	}
}
