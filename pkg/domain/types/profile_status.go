package types

import "fmt"

// ProfileStatus is the publication state of a mentor's style profile
type ProfileStatus string

const (
	ProfileStatusInactive        ProfileStatus = "INACTIVE"
	ProfileStatusPendingApproval ProfileStatus = "PENDING_APPROVAL"
	ProfileStatusActive          ProfileStatus = "ACTIVE"
)

// AllProfileStatuses returns all valid profile statuses
func AllProfileStatuses() []ProfileStatus {
	return []ProfileStatus{
		ProfileStatusInactive,
		ProfileStatusPendingApproval,
		ProfileStatusActive,
	}
}

// IsValid checks if the profile status is valid
func (s ProfileStatus) IsValid() bool {
	switch s {
	case ProfileStatusInactive, ProfileStatusPendingApproval, ProfileStatusActive:
		return true
	default:
		return false
	}
}

// String returns the string representation of the profile status
func (s ProfileStatus) String() string {
	return string(s)
}

// ParseProfileStatus parses a string into a ProfileStatus
func ParseProfileStatus(s string) (ProfileStatus, error) {
	status := ProfileStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid profile status: %s", s)
	}
	return status, nil
}
