package utils

import "testing"

func TestMatchesPermission(t *testing.T) {
	tests := []struct {
		name         string
		pattern      string
		requiredPerm string
		expected     bool
	}{
		// Exact matches
		{"exact match same permission", "payment:calculate", "payment:calculate", true},
		{"exact match different action", "payment:calculate", "payment:cancel", false},
		{"exact match different resource", "payment:read", "period:read", false},

		// Full wildcard
		{"full wildcard *", "*", "payment:calculate", true},
		{"full wildcard *:*", "*:*", "period:export", true},
		{"full wildcard matches admin surfaces", "*", "directory:manage", true},

		// Resource wildcard
		{"resource wildcard matches read", "period:*", "period:read", true},
		{"resource wildcard matches seed", "period:*", "period:seed", true},
		{"resource wildcard matches export", "period:*", "period:export", true},
		{"resource wildcard stays on its resource", "period:*", "payment:cancel", false},

		// Action wildcard
		{"action wildcard matches payment", "*:read", "payment:read", true},
		{"action wildcard matches document", "*:read", "document:read", true},
		{"action wildcard rejects other actions", "*:read", "payment:calculate", false},

		// Edge cases
		{"empty required permission", "payment:read", "", false},
		{"empty pattern", "", "payment:read", false},
		{"both empty", "", "", true},
		{"single part only matches exactly", "admin", "admin", true},
		{"single part vs two-part", "admin", "admin:read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MatchesPermission(tt.pattern, tt.requiredPerm)
			if result != tt.expected {
				t.Errorf("MatchesPermission(%q, %q) = %v, expected %v",
					tt.pattern, tt.requiredPerm, result, tt.expected)
			}
		})
	}
}

func TestRoleHasPermission(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		required string
		expected bool
	}{
		// Accountant drives calculation and payment recording
		{"accountant can calculate", "accountant", "payment:calculate", true},
		{"accountant can record payment", "accountant", "payment:record_payment", true},
		{"accountant can seed periods", "accountant", "period:seed", true},
		{"accountant can upload evidence", "accountant", "document:upload", true},
		{"accountant cannot issue invoices", "accountant", "payment:issue_invoice", false},
		{"accountant cannot cancel", "accountant", "payment:cancel", false},

		// Manager issues invoices and cancels
		{"manager can issue invoices", "manager", "payment:issue_invoice", true},
		{"manager can cancel", "manager", "payment:cancel", true},
		{"manager can export periods", "manager", "period:export", true},
		{"manager cannot calculate", "manager", "payment:calculate", false},
		{"manager cannot record payment", "manager", "payment:record_payment", false},
		{"manager cannot upload evidence", "manager", "document:upload", false},

		// Sales is read-only
		{"sales can view payments", "sales", "payment:read", true},
		{"sales can view periods", "sales", "period:read", true},
		{"sales cannot calculate", "sales", "payment:calculate", false},
		{"sales cannot cancel", "sales", "payment:cancel", false},
		{"sales cannot seed periods", "sales", "period:seed", false},

		// Admin wildcard covers everything, including system surfaces
		{"admin can calculate", "admin", "payment:calculate", true},
		{"admin can cancel", "admin", "payment:cancel", true},
		{"admin can run the sweep", "admin", "sweep:run", true},
		{"admin can manage the directory", "admin", "directory:manage", true},

		// Unknown roles get nothing
		{"unknown role denied", "intern", "payment:read", false},
		{"empty role denied", "", "payment:read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoleHasPermission(tt.role, tt.required)
			if result != tt.expected {
				t.Errorf("RoleHasPermission(%q, %q) = %v, expected %v",
					tt.role, tt.required, result, tt.expected)
			}
		})
	}
}

func BenchmarkMatchesPermission_ExactMatch(b *testing.B) {
	for i := 0; i < b.N; i++ {
		MatchesPermission("payment:calculate", "payment:calculate")
	}
}

func BenchmarkMatchesPermission_WildcardMatch(b *testing.B) {
	for i := 0; i < b.N; i++ {
		MatchesPermission("*", "payment:calculate")
	}
}

func BenchmarkRoleHasPermission(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RoleHasPermission("accountant", "payment:record_payment")
	}
}
