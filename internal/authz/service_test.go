package authz

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newAuthzTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:authz_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("BootstrapBuiltinRoles error: %v", err)
	}
	return svc
}

func TestRoleMatrix(t *testing.T) {
	svc := newAuthzTestService(t)

	cases := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{"customer", "/cart", "GET", true},
		{"customer", "/cart/items", "POST", true},
		{"customer", "/checkout", "POST", true},
		{"customer", "/orders/:id/cancel", "POST", true},
		{"customer", "/vendor/products", "GET", false},
		{"customer", "/admin/categories", "POST", false},

		// Vendors inherit the customer surface on top of their own.
		{"vendor", "/cart", "GET", true},
		{"vendor", "/vendor/products", "POST", true},
		{"vendor", "/vendor/products/:id/visibility", "PATCH", true},
		{"vendor", "/vendor/orders/:id/status", "PATCH", true},
		{"vendor", "/vendor/stats", "GET", true},
		{"vendor", "/admin/categories", "POST", false},

		{"admin", "/admin/categories", "POST", true},
		{"admin", "/admin/orders/:id/cancel", "POST", true},
		{"admin", "/vendor/products", "GET", true},
		{"admin", "/anything/else", "DELETE", true},
	}
	for _, tc := range cases {
		got, err := svc.EnforceRole(tc.role, tc.object, tc.action)
		if err != nil {
			t.Fatalf("EnforceRole(%s, %s, %s) error: %v", tc.role, tc.object, tc.action, err)
		}
		if got != tc.want {
			t.Errorf("EnforceRole(%s, %s, %s) = %v, want %v", tc.role, tc.object, tc.action, got, tc.want)
		}
	}
}

func TestEnforceStripsAPIPrefix(t *testing.T) {
	svc := newAuthzTestService(t)

	ok, err := svc.EnforceRole("customer", "/api/v1/cart", "GET")
	if err != nil {
		t.Fatalf("EnforceRole error: %v", err)
	}
	if !ok {
		t.Fatal("expected /api/v1 prefix to be normalized away")
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc := newAuthzTestService(t)

	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap error: %v", err)
	}
	ok, err := svc.EnforceRole("vendor", "/vendor/store", "PUT")
	if err != nil {
		t.Fatalf("EnforceRole error: %v", err)
	}
	if !ok {
		t.Fatal("vendor should manage their store after re-bootstrap")
	}
}

func TestNormalizeRole(t *testing.T) {
	got, err := NormalizeRole(" Customer ")
	if err != nil {
		t.Fatalf("NormalizeRole error: %v", err)
	}
	if got != "role:customer" {
		t.Fatalf("normalized role = %s, want role:customer", got)
	}
	if _, err := NormalizeRole("  "); err == nil {
		t.Fatal("expected error for empty role")
	}
}
