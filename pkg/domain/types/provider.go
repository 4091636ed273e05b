package types

import "fmt"

// ProviderRole tells which slot of the fallback chain produced a generation
type ProviderRole string

const (
	ProviderRolePrimary   ProviderRole = "primary"
	ProviderRoleSecondary ProviderRole = "secondary"
	// ProviderRoleNone means no provider produced the text: every backend failed,
	// or the request was answered deterministically without calling one.
	ProviderRoleNone ProviderRole = "none"
)

// IsValid checks if the provider role is valid
func (r ProviderRole) IsValid() bool {
	switch r {
	case ProviderRolePrimary, ProviderRoleSecondary, ProviderRoleNone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the provider role
func (r ProviderRole) String() string {
	return string(r)
}

// ProviderName identifies an LLM backend
type ProviderName string

const (
	ProviderOpenAI ProviderName = "openai"
	ProviderClaude ProviderName = "claude"
	ProviderGemini ProviderName = "gemini"
)

// AllProviderNames returns all supported LLM backends
func AllProviderNames() []ProviderName {
	return []ProviderName{
		ProviderOpenAI,
		ProviderClaude,
		ProviderGemini,
	}
}

// IsValid checks if the provider name is supported
func (n ProviderName) IsValid() bool {
	switch n {
	case ProviderOpenAI, ProviderClaude, ProviderGemini:
		return true
	default:
		return false
	}
}

// String returns the string representation of the provider name
func (n ProviderName) String() string {
	return string(n)
}

// ParseProviderName parses a string into a ProviderName
func ParseProviderName(s string) (ProviderName, error) {
	name := ProviderName(s)
	if !name.IsValid() {
		return "", fmt.Errorf("invalid provider name: %s", s)
	}
	return name, nil
}
