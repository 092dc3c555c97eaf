package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	RepositoryType  string         `json:"repository_type"`
	Inspector       bool           `json:"inspector"`
	SchemaValidator bool           `json:"schema_validator"`
	LastCheck       *ReportSummary `json:"last_check,omitempty"`
	Repository      any            `json:"repository,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := ServiceState{
		RepositoryType:  "unknown",
		Inspector:       s.inspector != nil,
		SchemaValidator: s.validator != nil,
	}
	if s.lastReport != nil {
		last := *s.lastReport
		state.LastCheck = &last
	}
	if s.repo != nil {
		state.RepositoryType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			state.RepositoryType = comp.ComponentType()
		}
		if intro, ok := s.repo.(introspection.Introspectable); ok {
			state.Repository = intro.State()
		}
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
