package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleCanTransferToClosure(t *testing.T) {
	roles := []Role{RoleManufacturer, RoleDistributor, RoleRetailer}
	allowed := map[Role]map[Role]bool{
		RoleManufacturer: {RoleDistributor: true},
		RoleDistributor:  {RoleDistributor: true, RoleRetailer: true},
		RoleRetailer:     {RoleRetailer: true},
	}

	for _, from := range roles {
		for _, to := range roles {
			expected := allowed[from][to]
			require.Equal(
				t, expected, RoleCanTransferTo(from, to),
				"from %s to %s", from, to,
			)
		}
	}
}

func TestRoleCanTransferToUnknownRole(t *testing.T) {
	require.False(t, RoleCanTransferTo(Role("auditor"), RoleRetailer))
	require.False(t, RoleCanTransferTo(RoleManufacturer, Role("")))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Manufacturer ")
	require.NoError(t, err)
	require.Equal(t, RoleManufacturer, r)

	_, err = ParseRole("warehouse")
	require.ErrorIs(t, err, ErrUnknownRole)
}
