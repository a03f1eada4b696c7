package authz

import "fmt"

// RoleSeed is one role with its policies and parents
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds defines the role matrix for the three account
// roles. Vendors inherit the customer surface so they can shop too.
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "customer",
			Policies: []Policy{
				{Object: "/profile", Action: "*"},
				{Object: "/profile/password", Action: "PUT"},
				{Object: "/cart", Action: "*"},
				{Object: "/cart/count", Action: "GET"},
				{Object: "/cart/items", Action: "POST"},
				{Object: "/cart/items/:product_id", Action: "*"},
				{Object: "/cart/validate", Action: "POST"},
				{Object: "/checkout", Action: "POST"},
				{Object: "/checkout/summary", Action: "GET"},
				{Object: "/orders", Action: "GET"},
				{Object: "/orders/:id", Action: "GET"},
				{Object: "/orders/:id/cancel", Action: "POST"},
			},
		},
		{
			Role:     "vendor",
			Inherits: []string{"customer"},
			Policies: []Policy{
				{Object: "/vendor/products", Action: "*"},
				{Object: "/vendor/products/:id", Action: "*"},
				{Object: "/vendor/products/:id/visibility", Action: "PATCH"},
				{Object: "/vendor/orders", Action: "GET"},
				{Object: "/vendor/orders/:id", Action: "GET"},
				{Object: "/vendor/orders/:id/status", Action: "PATCH"},
				{Object: "/vendor/stats", Action: "GET"},
				{Object: "/vendor/store", Action: "*"},
				{Object: "/vendor/store/recompute-stats", Action: "POST"},
			},
		},
		{
			Role: "admin",
			Policies: []Policy{
				{Object: "/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles installs the role matrix. Idempotent, runs at
// every startup.
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}

	return nil
}
