package errors_test

import (
	"testing"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, errors.Wrapf(nil, "context %d", 1))
	})

	t.Run("wrapped sentinel is still matched", func(t *testing.T) {
		err := errors.Wrapf(errors.ErrUpstreamFailure, "device-detail %s", "8988")
		require.True(t, errors.Is(err, errors.ErrUpstreamFailure))
		require.Equal(t, "device-detail 8988: upstream failure", err.Error())
	})
}
