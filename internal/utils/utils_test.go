package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestStringSlice(t *testing.T) {
	require.Equal(t, []string{"admins", "users"}, utils.StringSlice([]any{"admins", 7, "users", nil}))
	require.Empty(t, utils.StringSlice(nil))
	require.Empty(t, utils.StringSlice("users"))
}

func TestFirstNonEmpty(t *testing.T) {
	require.Equal(t, "Alice", utils.FirstNonEmpty("", "Alice", "alice"))
	require.Empty(t, utils.FirstNonEmpty("", ""))
}

func TestValue(t *testing.T) {
	require.Equal(t, "A1", utils.Value(utils.Ptr("A1")))
	require.Empty(t, utils.Value[string](nil))
}
