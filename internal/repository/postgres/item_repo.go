package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/model"
)

// ItemRepo implements ItemRepository over the billing item tables.
type ItemRepo struct{ db *DB }

// NewItemRepo constructs an item repository.
func NewItemRepo(db *DB) *ItemRepo { return &ItemRepo{db: db} }

// Get loads an item row with its type and all parameters.
func (r *ItemRepo) Get(ctx context.Context, itemID int64) (model.DomainItem, error) {
	const q = `
SELECT i.id, i.processingmodule, i.pricelist, i.period, t.intname
FROM item i JOIN itemtype t ON t.id = i.itemtype
WHERE i.id=$1`
	it := model.DomainItem{Params: map[string]string{}}
	row := r.db.Pool.QueryRow(ctx, q, itemID)
	if err := row.Scan(&it.ID, &it.AccountID, &it.PricelistID, &it.PeriodMonths, &it.ItemType); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DomainItem{}, errs.NotFound("item", strconv.FormatInt(itemID, 10))
		}
		return model.DomainItem{}, err
	}

	const qp = `SELECT intname, value FROM itemparam WHERE item=$1`
	rows, err := r.db.Pool.Query(ctx, qp, itemID)
	if err != nil {
		return model.DomainItem{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var name, value string
		if err = rows.Scan(&name, &value); err != nil {
			return model.DomainItem{}, err
		}
		it.Params[name] = value
	}
	return it, rows.Err()
}

// SaveParam upserts one item parameter.
func (r *ItemRepo) SaveParam(ctx context.Context, itemID int64, name, value string) error {
	const q = `
INSERT INTO itemparam (item, intname, value) VALUES ($1,$2,$3)
ON CONFLICT (item, intname) DO UPDATE SET value=EXCLUDED.value`
	_, err := r.db.Pool.Exec(ctx, q, itemID, name, value)
	return err
}

// ProfileRepo implements ProfileRepository over the service profile tables.
type ProfileRepo struct{ db *DB }

// NewProfileRepo constructs a profile repository.
func NewProfileRepo(db *DB) *ProfileRepo { return &ProfileRepo{db: db} }

// ForItem loads the profile linked to the item under role.
func (r *ProfileRepo) ForItem(ctx context.Context, itemID int64, role string) (model.Profile, error) {
	const q = `
SELECT sp.id, sp.profiletype
FROM service_profile sp JOIN service_profile2item s ON s.service_profile = sp.id
WHERE s.item=$1 AND s.type=$2`
	var id int64
	var ptype int
	if err := r.db.Pool.QueryRow(ctx, q, itemID, role).Scan(&id, &ptype); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, errs.NotFound("profile_"+role, strconv.FormatInt(itemID, 10))
		}
		return model.Profile{}, err
	}

	const qp = `SELECT intname, value FROM service_profileparam WHERE service_profile=$1`
	rows, err := r.db.Pool.Query(ctx, qp, id)
	if err != nil {
		return model.Profile{}, err
	}
	defer rows.Close()
	params := map[string]string{}
	for rows.Next() {
		var name, value string
		if err = rows.Scan(&name, &value); err != nil {
			return model.Profile{}, err
		}
		params[name] = value
	}
	if err = rows.Err(); err != nil {
		return model.Profile{}, err
	}
	params["profiletype"] = strconv.Itoa(ptype)
	return model.ProfileFromParams(id, params)
}
