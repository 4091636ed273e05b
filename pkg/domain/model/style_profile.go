package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
)

// StyleProfile is a natural-language description of a mentor's communication style
type StyleProfile struct {
	ProfileText    string
	StyleTraits    string // comma separated tags from a fixed vocabulary
	AnalysisSource types.AnalysisSource
	CreatedAt      time.Time
}

// Validate checks required fields before persistence
func (p *StyleProfile) Validate() error {
	if p.ProfileText == "" {
		return goerr.Wrap(ErrInvalidRecord, "profile text is required")
	}
	if !p.AnalysisSource.IsValid() {
		return goerr.Wrap(ErrInvalidRecord, "invalid analysis source", goerr.V("source", p.AnalysisSource))
	}
	return nil
}

// Copy returns a deep copy of the profile
func (p *StyleProfile) Copy() *StyleProfile {
	if p == nil {
		return nil
	}
	copied := *p
	return &copied
}
