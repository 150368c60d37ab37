package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/rbac"
	"github.com/qazi-erp/qazi-erp/internal/store"
)

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Principal is the outcome of a successful login.
type Principal struct {
	User        domain.User
	LandingView rbac.View
}

// Service wraps authentication business rules.
type Service struct {
	store  store.Store
	policy *rbac.Policy
}

// NewService constructs a new Service.
func NewService(st store.Store, policy *rbac.Policy) *Service {
	return &Service{store: st, policy: policy}
}

// Authenticate validates a username or email with its password.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (Principal, error) {
	identifier = strings.TrimSpace(identifier)
	user, err := s.store.Authenticate(ctx, identifier, password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}
	return Principal{User: user, LandingView: s.policy.DefaultView(user.Role)}, nil
}
