package etherman

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/require"
)

func TestSupplyChainABIParses(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(supplyChainABI))
	require.NoError(t, err)

	for _, method := range []string{
		"createBatch",
		"transferBatch",
		"receiveBatch",
		"grantDistributorRole",
		"grantRetailerRole",
		"revokeDistributorRole",
		"revokeRetailerRole",
		"isManufacturer",
		"isDistributor",
		"isRetailer",
		"getBatch",
		"getBatchHistory",
	} {
		_, ok := parsed.Methods[method]
		require.True(t, ok, "missing method %s", method)
	}

	for _, event := range []string{"BatchCreated", "BatchTransferred", "BatchReceived"} {
		_, ok := parsed.Events[event]
		require.True(t, ok, "missing event %s", event)
	}
}

func TestRoleMethod(t *testing.T) {
	m, err := roleMethod("distributor", "grant")
	require.NoError(t, err)
	require.Equal(t, "grantDistributorRole", m)

	m, err = roleMethod("retailer", "revoke")
	require.NoError(t, err)
	require.Equal(t, "revokeRetailerRole", m)

	_, err = roleMethod("manufacturer", "grant")
	require.ErrorIs(t, err, ErrManufacturerRoleImmutable)
}
