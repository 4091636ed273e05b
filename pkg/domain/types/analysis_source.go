package types

import "fmt"

// AnalysisSource records how a style profile was produced
type AnalysisSource string

const (
	AnalysisSourcePrimary         AnalysisSource = "primary"
	AnalysisSourceSecondary       AnalysisSource = "secondary"
	AnalysisSourceFallback        AnalysisSource = "fallback"
	AnalysisSourcePrimaryMerged   AnalysisSource = "primary_merged"
	AnalysisSourceSecondaryMerged AnalysisSource = "secondary_merged"
)

// AllAnalysisSources returns all valid analysis sources
func AllAnalysisSources() []AnalysisSource {
	return []AnalysisSource{
		AnalysisSourcePrimary,
		AnalysisSourceSecondary,
		AnalysisSourceFallback,
		AnalysisSourcePrimaryMerged,
		AnalysisSourceSecondaryMerged,
	}
}

// IsValid checks if the analysis source is valid
func (s AnalysisSource) IsValid() bool {
	switch s {
	case AnalysisSourcePrimary,
		AnalysisSourceSecondary,
		AnalysisSourceFallback,
		AnalysisSourcePrimaryMerged,
		AnalysisSourceSecondaryMerged:
		return true
	default:
		return false
	}
}

// Merged returns the merged variant of a provider-backed source.
// Fallback profiles are never merged, so they map to themselves.
func (s AnalysisSource) Merged() AnalysisSource {
	switch s {
	case AnalysisSourcePrimary:
		return AnalysisSourcePrimaryMerged
	case AnalysisSourceSecondary:
		return AnalysisSourceSecondaryMerged
	default:
		return s
	}
}

// String returns the string representation of the analysis source
func (s AnalysisSource) String() string {
	return string(s)
}

// ParseAnalysisSource parses a string into an AnalysisSource
func ParseAnalysisSource(s string) (AnalysisSource, error) {
	src := AnalysisSource(s)
	if !src.IsValid() {
		return "", fmt.Errorf("invalid analysis source: %s", s)
	}
	return src, nil
}

// AnalysisSourceFromRole maps the provider slot that answered to an analysis source
func AnalysisSourceFromRole(role ProviderRole) AnalysisSource {
	switch role {
	case ProviderRolePrimary:
		return AnalysisSourcePrimary
	case ProviderRoleSecondary:
		return AnalysisSourceSecondary
	default:
		return AnalysisSourceFallback
	}
}
