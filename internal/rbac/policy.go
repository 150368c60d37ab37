package rbac

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	"github.com/qazi-erp/qazi-erp/internal/platform/httpx"
)

// View is a navigation destination in the shell.
type View string

const (
	ViewDashboard View = "Dashboard"
	ViewInventory View = "Inventory"
	ViewOrders    View = "Orders"
	ViewCustomers View = "Customers"
	ViewPayments  View = "Payments"
	ViewReports   View = "Reports"
	ViewSettings  View = "Settings"
)

// Capability is a mutating action inside a view.
type Capability string

const (
	CapCreate Capability = "create"
	CapDelete Capability = "delete"
	CapStatus Capability = "status"
)

// Capabilities lists every known capability.
func Capabilities() []Capability {
	return []Capability{CapCreate, CapDelete, CapStatus}
}

// ErrForbidden is returned when the policy does not grant an action.
var ErrForbidden = fmt.Errorf("rbac: %w", httpx.ErrForbidden)

//go:embed policy.yaml
var defaultPolicyYAML []byte

// Policy maps roles to ordered navigation and per-view capabilities.
// It is immutable after Load.
type Policy struct {
	universe []View
	roles    map[domain.Role]rolePolicy
}

type rolePolicy struct {
	landing View
	views   []View
	caps    map[View]map[Capability]bool
}

type policyFile struct {
	Views []View                     `yaml:"views"`
	Roles map[domain.Role]roleRecord `yaml:"roles"`
}

type roleRecord struct {
	Landing View         `yaml:"landing"`
	Views   []viewRecord `yaml:"views"`
}

type viewRecord struct {
	Name View         `yaml:"name"`
	Can  []Capability `yaml:"can"`
}

// Load parses a YAML policy table.
func Load(data []byte) (*Policy, error) {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("rbac: parse policy: %w", err)
	}
	if len(file.Views) == 0 {
		return nil, errors.New("rbac: policy declares no views")
	}
	known := make(map[View]struct{}, len(file.Views))
	for _, v := range file.Views {
		known[v] = struct{}{}
	}
	validCap := make(map[Capability]struct{})
	for _, c := range Capabilities() {
		validCap[c] = struct{}{}
	}

	p := &Policy{universe: append([]View(nil), file.Views...), roles: make(map[domain.Role]rolePolicy, len(file.Roles))}
	for role, record := range file.Roles {
		if !role.Valid() {
			return nil, fmt.Errorf("rbac: unknown role %q", role)
		}
		rp := rolePolicy{landing: record.Landing, caps: make(map[View]map[Capability]bool)}
		seen := make(map[View]struct{}, len(record.Views))
		for _, vr := range record.Views {
			if _, ok := known[vr.Name]; !ok {
				return nil, fmt.Errorf("rbac: role %s references unknown view %q", role, vr.Name)
			}
			if _, dup := seen[vr.Name]; dup {
				return nil, fmt.Errorf("rbac: role %s lists view %s twice", role, vr.Name)
			}
			seen[vr.Name] = struct{}{}
			rp.views = append(rp.views, vr.Name)
			caps := make(map[Capability]bool, len(vr.Can))
			for _, c := range vr.Can {
				if _, ok := validCap[c]; !ok {
					return nil, fmt.Errorf("rbac: role %s view %s has unknown capability %q", role, vr.Name, c)
				}
				caps[c] = true
			}
			rp.caps[vr.Name] = caps
		}
		if rp.landing == "" {
			rp.landing = ViewDashboard
		}
		if _, ok := seen[rp.landing]; !ok {
			return nil, fmt.Errorf("rbac: role %s lands on %s which it cannot see", role, rp.landing)
		}
		p.roles[role] = rp
	}
	return p, nil
}

var (
	defaultOnce   sync.Once
	defaultPolicy *Policy
)

// Default returns the policy compiled into the binary.
func Default() *Policy {
	defaultOnce.Do(func() {
		p, err := Load(defaultPolicyYAML)
		if err != nil {
			panic(err)
		}
		defaultPolicy = p
	})
	return defaultPolicy
}

// Views returns the universal destination set in menu order.
func (p *Policy) Views() []View {
	return append([]View(nil), p.universe...)
}

// Navigation returns the destinations visible to role in menu order.
// Unknown roles get an empty set.
func (p *Policy) Navigation(role domain.Role) []View {
	rp, ok := p.lookup(role)
	if !ok {
		return []View{}
	}
	return append([]View(nil), rp.views...)
}

// Allows reports whether role may open view.
func (p *Policy) Allows(role domain.Role, view View) bool {
	rp, ok := p.lookup(role)
	if !ok {
		return false
	}
	_, ok = rp.caps[view]
	return ok
}

// Can reports whether role may perform capability inside view.
func (p *Policy) Can(role domain.Role, view View, capability Capability) bool {
	rp, ok := p.lookup(role)
	if !ok {
		return false
	}
	return rp.caps[view][capability]
}

// Check returns ErrForbidden unless Can holds.
func (p *Policy) Check(role domain.Role, view View, capability Capability) error {
	if !p.Can(role, view, capability) {
		return fmt.Errorf("%w: %s may not %s in %s", ErrForbidden, role, capability, view)
	}
	return nil
}

// CheckView returns ErrForbidden unless Allows holds.
func (p *Policy) CheckView(role domain.Role, view View) error {
	if !p.Allows(role, view) {
		return fmt.Errorf("%w: %s may not open %s", ErrForbidden, role, view)
	}
	return nil
}

// CapabilityMap returns, for each visible view, every capability with its grant.
func (p *Policy) CapabilityMap(role domain.Role) map[View]map[Capability]bool {
	out := make(map[View]map[Capability]bool)
	rp, ok := p.lookup(role)
	if !ok {
		return out
	}
	for _, v := range rp.views {
		caps := make(map[Capability]bool, len(Capabilities()))
		for _, c := range Capabilities() {
			caps[c] = rp.caps[v][c]
		}
		out[v] = caps
	}
	return out
}

// DefaultView is the landing destination after login. Unknown roles get
// no view.
func (p *Policy) DefaultView(role domain.Role) View {
	if rp, ok := p.lookup(role); ok {
		return rp.landing
	}
	return ""
}

func (p *Policy) lookup(role domain.Role) (rolePolicy, bool) {
	if p == nil || !role.Valid() {
		return rolePolicy{}, false
	}
	rp, ok := p.roles[role]
	return rp, ok
}
