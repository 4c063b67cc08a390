package common

import (
	"errors"
	"fmt"
	"strings"
)

// Role is one of the three recognized supply-chain roles.
type Role string

const (
	RoleManufacturer = Role("manufacturer")
	RoleDistributor  = Role("distributor")
	RoleRetailer     = Role("retailer")
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole parses a role from its string form, case-insensitive.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleManufacturer:
		return RoleManufacturer, nil
	case RoleDistributor:
		return RoleDistributor, nil
	case RoleRetailer:
		return RoleRetailer, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

func (r Role) String() string {
	return string(r)
}

// RoleCanTransferTo is the single source of truth for the role-transfer
// compatibility rule, shared by the custody guards and any off-chain
// pre-validation:
//   - manufacturer -> distributor
//   - distributor  -> distributor | retailer
//   - retailer     -> retailer
func RoleCanTransferTo(from, to Role) bool {
	switch from {
	case RoleManufacturer:
		return to == RoleDistributor
	case RoleDistributor:
		return to == RoleDistributor || to == RoleRetailer
	case RoleRetailer:
		return to == RoleRetailer
	default:
		return false
	}
}
