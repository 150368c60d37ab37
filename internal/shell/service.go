// Package shell tracks the authenticated user's navigation state.
package shell

import (
	"fmt"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
)

// State is what the shell renders around the active view.
type State struct {
	User         domain.User                            `json:"user"`
	Navigation   []rbac.View                            `json:"navigation"`
	Capabilities map[rbac.View]map[rbac.Capability]bool `json:"capabilities"`
	ActiveView   rbac.View                              `json:"active_view"`
}

// Service resolves shell state from the permission policy.
type Service struct {
	policy *rbac.Policy
}

// NewService constructs a Service.
func NewService(policy *rbac.Policy) *Service {
	return &Service{policy: policy}
}

// State builds the shell for user. A stored view the role may not open
// falls back to the role's landing view.
func (s *Service) State(user domain.User, stored string) State {
	active := rbac.View(stored)
	if !s.policy.Allows(user.Role, active) {
		active = s.policy.DefaultView(user.Role)
	}
	return State{
		User:         user,
		Navigation:   s.policy.Navigation(user.Role),
		Capabilities: s.policy.CapabilityMap(user.Role),
		ActiveView:   active,
	}
}

// Switch validates a navigation request.
func (s *Service) Switch(user domain.User, target string) (rbac.View, error) {
	view := rbac.View(target)
	if err := s.policy.CheckView(user.Role, view); err != nil {
		return "", fmt.Errorf("shell: switch view: %w", err)
	}
	return view, nil
}
