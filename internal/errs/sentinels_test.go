package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyError_IsKind(t *testing.T) {
	err := fmt.Errorf("open: %w", NotFound("tld", "xyz"))
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrConflict)
	require.Equal(t, "tld", Key(err))
	require.Equal(t, `open: not found: tld="xyz"`, err.Error())
}

func TestInvalidPeriod_IsNotFound(t *testing.T) {
	err := InvalidPeriod("period", "7")
	require.ErrorIs(t, err, ErrInvalidPeriod)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMissing_NoValue(t *testing.T) {
	err := Missing("contact_admin")
	require.True(t, errors.Is(err, ErrMissing))
	require.Equal(t, "missing: contact_admin", err.Error())
	require.Equal(t, "", Key(errors.New("plain")))
}
