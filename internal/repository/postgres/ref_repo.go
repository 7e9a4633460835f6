package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/model"
)

// CountryRepo implements CountryRepository.
type CountryRepo struct{ db *DB }

// NewCountryRepo constructs a country repository.
func NewCountryRepo(db *DB) *CountryRepo { return &CountryRepo{db: db} }

// ISO2ByID returns the ISO2 code of a local country.
func (r *CountryRepo) ISO2ByID(ctx context.Context, id int64) (string, error) {
	var iso string
	err := r.db.Pool.QueryRow(ctx, `SELECT iso2 FROM country WHERE id=$1`, id).Scan(&iso)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", errs.NotFound("country", strconv.FormatInt(id, 10))
	}
	return iso, err
}

// IDByISO2 returns the local country ID of an ISO2 code.
func (r *CountryRepo) IDByISO2(ctx context.Context, iso2 string) (int64, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx, `SELECT id FROM country WHERE iso2=$1`, iso2).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errs.NotFound("iso2", iso2)
	}
	return id, err
}

// TLDRepo implements TLDRepository.
type TLDRepo struct{ db *DB }

// NewTLDRepo constructs a TLD repository.
func NewTLDRepo(db *DB) *TLDRepo { return &TLDRepo{db: db} }

// NameByPricelist resolves the TLD sold by a domain price list.
func (r *TLDRepo) NameByPricelist(ctx context.Context, pricelistID int64) (string, error) {
	const q = `
SELECT t.name FROM pricelist p JOIN tld t ON t.id::text = p.intname
WHERE p.id=$1`
	var name string
	err := r.db.Pool.QueryRow(ctx, q, pricelistID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", errs.NotFound("pricelist", strconv.FormatInt(pricelistID, 10))
	}
	return name, err
}

// IDByName resolves a TLD name to its local ID.
func (r *TLDRepo) IDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx, `SELECT id FROM tld WHERE name=$1`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errs.NotFound("tld", name)
	}
	return id, err
}

// AccountRepo implements AccountRepository over processing module params.
type AccountRepo struct {
	db         *DB
	defaultURL string
}

// NewAccountRepo constructs an account repository. defaultURL is used when
// the module has no url of its own.
func NewAccountRepo(db *DB, defaultURL string) *AccountRepo {
	return &AccountRepo{db: db, defaultURL: defaultURL}
}

// Get loads the settings of a processing module.
func (r *AccountRepo) Get(ctx context.Context, accountID int64) (model.Account, error) {
	const q = `SELECT intname, value FROM processingparam WHERE processingmodule=$1`
	rows, err := r.db.Pool.Query(ctx, q, accountID)
	if err != nil {
		return model.Account{}, err
	}
	defer rows.Close()

	params := map[string]string{}
	for rows.Next() {
		var name, value string
		if err = rows.Scan(&name, &value); err != nil {
			return model.Account{}, err
		}
		params[name] = value
	}
	if err = rows.Err(); err != nil {
		return model.Account{}, err
	}
	if len(params) == 0 {
		return model.Account{}, errs.NotFound("processingmodule", strconv.FormatInt(accountID, 10))
	}
	return AccountFromParams(accountID, params, r.defaultURL)
}

// AccountFromParams builds account settings from module parameters.
func AccountFromParams(accountID int64, params map[string]string, defaultURL string) (model.Account, error) {
	acc := model.Account{
		ID:        accountID,
		URL:       params["url"],
		Username:  params["username"],
		Password:  params["password"],
		Registrar: model.AnyRegistrar,
	}
	if acc.URL == "" {
		acc.URL = defaultURL
	}
	if v := params["registrar"]; v != "" {
		reg, err := strconv.Atoi(v)
		if err != nil {
			return model.Account{}, errs.InvalidValue("registrar", v)
		}
		acc.Registrar = reg
	}
	return acc, nil
}
