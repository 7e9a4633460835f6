package repository

import (
	"context"

	"github.com/and161185/rutld-connector/internal/model"
)

// CountryRepository resolves the billing store's country table.
type CountryRepository interface {
	ISO2ByID(ctx context.Context, id int64) (string, error)
	IDByISO2(ctx context.Context, iso2 string) (int64, error)
}

// TLDRepository resolves the billing store's TLD table.
type TLDRepository interface {
	// NameByPricelist returns the TLD name of a domain price list.
	NameByPricelist(ctx context.Context, pricelistID int64) (string, error)

	// IDByName returns the local TLD ID used as the import price list.
	IDByName(ctx context.Context, name string) (int64, error)
}

// AccountRepository loads processing module settings.
type AccountRepository interface {
	Get(ctx context.Context, accountID int64) (model.Account, error)
}
