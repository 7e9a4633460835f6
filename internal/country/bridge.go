package country

import (
	"context"
	"strconv"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/repository"
)

// Bridge composes the billing store's country table with the remote table.
// Local IDs travel as strings, the way profile parameters carry them.
type Bridge struct {
	table *Table
	store repository.CountryRepository
}

// NewBridge constructs a bridge.
func NewBridge(table *Table, store repository.CountryRepository) *Bridge {
	return &Bridge{table: table, store: store}
}

// ToRemote maps a local country ID to the remote country ID.
func (b *Bridge) ToRemote(ctx context.Context, localID string) (string, error) {
	id, err := strconv.ParseInt(localID, 10, 64)
	if err != nil {
		return "", errs.InvalidValue("country", localID)
	}
	iso, err := b.store.ISO2ByID(ctx, id)
	if err != nil {
		return "", err
	}
	return b.table.RemoteID(iso)
}

// ToLocal maps a remote country ID to the local country ID.
func (b *Bridge) ToLocal(ctx context.Context, remoteID string) (string, error) {
	iso, err := b.table.ISO2(remoteID)
	if err != nil {
		return "", err
	}
	id, err := b.store.IDByISO2(ctx, iso)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}
