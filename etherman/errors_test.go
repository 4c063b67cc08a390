package etherman

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTryParseWithExactMatch(t *testing.T) {
	expected := ErrNotCurrentHolder
	smartContractErr := expected

	actualErr, ok := TryParseError(smartContractErr)

	assert.ErrorIs(t, actualErr, expected)
	assert.True(t, ok)
}

func TestTryParseWithContains(t *testing.T) {
	expected := ErrIncompatibleRoleTransfer
	smartContractErr := fmt.Errorf("execution reverted: %w", expected)

	actualErr, ok := TryParseError(smartContractErr)

	assert.ErrorIs(t, actualErr, expected)
	assert.True(t, ok)
}

func TestTryParseWithNonExistingErr(t *testing.T) {
	smartContractErr := fmt.Errorf("some non-existing err")

	actualErr, ok := TryParseError(smartContractErr)

	assert.Nil(t, actualErr)
	assert.False(t, ok)
}
