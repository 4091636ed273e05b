package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound   = goerr.New("configuration file not found")
	ErrInvalidConfig    = goerr.New("invalid configuration")
	ErrInvalidWindow    = goerr.New("invalid chunk window")
	ErrInvalidThreshold = goerr.New("similarity floor must be in [-1, 1]")
	ErrInvalidDuration  = goerr.New("invalid duration")
	ErrDuplicateTrait   = goerr.New("duplicate trait tag")
	ErrNoProvider       = goerr.New("no LLM provider configured")
	ErrUnknownProvider  = goerr.New("unknown LLM provider")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	FieldKey      = "field"
	ValueKey      = "value"
	ProviderKey   = "provider"
)
