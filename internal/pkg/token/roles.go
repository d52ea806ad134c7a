// internal/pkg/token/roles.go
package token

// roleRanks orders the role hierarchy for permission comparisons. Unknown
// roles rank 0, below guest, so lookups fail closed.
var roleRanks = map[string]int{
	"guest":       1,
	"user":        2,
	"coordinator": 3,
	"manager":     4,
	"admin":       5,
	"super_admin": 6,
}

// RoleRank returns the ordinal rank of a role, 0 for unknown roles.
func RoleRank(role string) int {
	return roleRanks[role]
}

// RoleAtLeast reports whether role ranks at or above required in the
// hierarchy. An unknown required role outranks every known role.
func RoleAtLeast(role, required string) bool {
	rank, ok := roleRanks[role]
	if !ok {
		return false
	}
	requiredRank, ok := roleRanks[required]
	if !ok {
		return false
	}
	return rank >= requiredRank
}
