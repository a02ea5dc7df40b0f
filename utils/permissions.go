package utils

import "strings"

// rolePermissions maps each back-office role to the permission patterns it
// carries. This table is the single place deciding which lifecycle actions a
// role may invoke; the accountant, manager and sales surfaces all call the
// same engine and differ only here.
//
// Permission format: "resource:action", wildcard on either part.
var rolePermissions = map[string][]string{
	"admin": {"*"},
	"accountant": {
		"payment:calculate",
		"payment:record_payment",
		"payment:read",
		"period:read",
		"period:seed",
		"period:export",
		"document:upload",
		"document:read",
	},
	"manager": {
		"payment:issue_invoice",
		"payment:cancel",
		"payment:read",
		"period:*",
		"document:read",
	},
	// Sales sees the pipeline but never moves it.
	"sales": {
		"payment:read",
		"period:read",
		"document:read",
	},
}

// RoleHasPermission reports whether the role carries the required permission
// under the table above.
func RoleHasPermission(role, requiredPerm string) bool {
	for _, pattern := range rolePermissions[role] {
		if MatchesPermission(pattern, requiredPerm) {
			return true
		}
	}
	return false
}

// MatchesPermission checks if a permission pattern matches the required
// permission. Supports wildcard patterns:
//
// Examples:
//   - "*" matches everything (admin wildcard)
//   - "payment:*" matches all actions on the payment resource
//   - "*:read" matches read on every resource
//   - "payment:calculate" exact match
//
// Permission format: "resource:action"
func MatchesPermission(pattern, requiredPerm string) bool {
	// Exact match (fastest path)
	if pattern == requiredPerm {
		return true
	}

	// Full wildcard - grants everything
	if pattern == "*" || pattern == "*:*" {
		return true
	}

	patternParts := strings.Split(pattern, ":")
	reqParts := strings.Split(requiredPerm, ":")

	// Single-part permissions only match exactly
	if len(patternParts) < 2 || len(reqParts) < 2 {
		return pattern == requiredPerm
	}

	resourceMatch := patternParts[0] == "*" || patternParts[0] == reqParts[0]
	actionMatch := patternParts[1] == "*" || patternParts[1] == reqParts[1]

	return resourceMatch && actionMatch
}
