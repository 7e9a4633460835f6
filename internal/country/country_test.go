package country

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/rutld-connector/internal/errs"
)

const countries = `{"elem":[{"iso2":"RU","id":"182"},{"iso2":"us","id":230},{"iso2":"DE","id":"81"}]}`

type fakeCountries struct {
	byID  map[int64]string
	byISO map[string]int64
}

func (f *fakeCountries) ISO2ByID(_ context.Context, id int64) (string, error) {
	if iso, ok := f.byID[id]; ok {
		return iso, nil
	}
	return "", errs.NotFound("country", "x")
}

func (f *fakeCountries) IDByISO2(_ context.Context, iso string) (int64, error) {
	if id, ok := f.byISO[iso]; ok {
		return id, nil
	}
	return 0, errs.NotFound("iso2", iso)
}

func TestLoadTable(t *testing.T) {
	tbl, err := LoadTable(strings.NewReader(countries))
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())

	id, err := tbl.RemoteID("ru")
	require.NoError(t, err)
	require.Equal(t, "182", id)

	iso, err := tbl.ISO2("230")
	require.NoError(t, err)
	require.Equal(t, "US", iso)

	_, err = tbl.RemoteID("ZZ")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, "iso2", errs.Key(err))

	_, err = tbl.ISO2("999")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, "country_id", errs.Key(err))
}

func TestLoadTable_Errors(t *testing.T) {
	_, err := LoadTable(strings.NewReader(`{"elem":`))
	require.ErrorIs(t, err, errs.ErrInvalidValue)

	_, err = LoadTable(strings.NewReader(`{"elem":[{"id":"1"}]}`))
	require.ErrorIs(t, err, errs.ErrMissing)

	_, err = LoadTable(strings.NewReader(`{"elem":[{"iso2":"RU","id":"1"},{"iso2":"ru","id":"2"}]}`))
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestBridge(t *testing.T) {
	tbl, err := LoadTable(strings.NewReader(countries))
	require.NoError(t, err)
	store := &fakeCountries{
		byID:  map[int64]string{1: "RU", 2: "FR"},
		byISO: map[string]int64{"RU": 1, "US": 7},
	}
	b := NewBridge(tbl, store)
	ctx := context.Background()

	remote, err := b.ToRemote(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "182", remote)

	local, err := b.ToLocal(ctx, "182")
	require.NoError(t, err)
	require.Equal(t, "1", local)

	// known locally, absent from the remote table
	_, err = b.ToRemote(ctx, "2")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, "iso2", errs.Key(err))

	// known remotely, absent locally
	_, err = b.ToLocal(ctx, "81")
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = b.ToRemote(ctx, "abc")
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}
