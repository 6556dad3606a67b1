package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleInstanceGuard(t *testing.T) {
	guard, err := AcquireSingleInstance("cyfox-test")
	require.NoError(t, err)

	_, err = AcquireSingleInstance("cyfox-test")
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, guard.Release())

	again, err := AcquireSingleInstance("cyfox-test")
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestReleaseNilGuard(t *testing.T) {
	var guard *InstanceGuard
	assert.NoError(t, guard.Release())
}
