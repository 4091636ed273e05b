// Package llm holds the provider plumbing shared by services that prompt an LLM.
package llm

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/service/fallback"
)

// Provider is a named LLM backend
type Provider struct {
	Name   types.ProviderName
	Client gollem.LLMClient
}

// Validate checks that providers can be used as a fallback chain
func Validate(providers []Provider) error {
	if len(providers) == 0 {
		return goerr.New("at least one provider is required")
	}
	for _, p := range providers {
		if p.Client == nil {
			return goerr.New("provider client is required", goerr.V("provider", p.Name))
		}
	}
	return nil
}

// Order puts preferred first and keeps at most a primary and a secondary
func Order(providers []Provider, preferred types.ProviderName) []Provider {
	ordered := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p.Name == preferred {
			ordered = append(ordered, p)
		}
	}
	for _, p := range providers {
		if p.Name != preferred {
			ordered = append(ordered, p)
		}
	}
	if len(ordered) > 2 {
		ordered = ordered[:2]
	}
	return ordered
}

// RoleOf maps a fallback position to the provider role
func RoleOf(position int) types.ProviderRole {
	switch position {
	case 0:
		return types.ProviderRolePrimary
	case 1:
		return types.ProviderRoleSecondary
	default:
		return types.ProviderRoleNone
	}
}

// Backends builds a fallback chain that sends the same prompts to each provider
func Backends(providers []Provider, systemPrompt, userPrompt string) []fallback.Backend[string] {
	backends := make([]fallback.Backend[string], len(providers))
	for i, p := range providers {
		backends[i] = fallback.Backend[string]{
			Name: p.Name.String(),
			Call: func(ctx context.Context) (string, error) {
				return Complete(ctx, p.Client, systemPrompt, userPrompt)
			},
		}
	}
	return backends
}

// Complete runs one single-turn completion and fails on an empty answer
func Complete(ctx context.Context, client gollem.LLMClient, systemPrompt, userPrompt string) (string, error) {
	session, err := client.NewSession(ctx, gollem.WithSessionSystemPrompt(systemPrompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(userPrompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content")
	}

	text := strings.TrimSpace(strings.Join(resp.Texts, ""))
	if text == "" {
		return "", goerr.New("empty response from LLM")
	}

	return text, nil
}
