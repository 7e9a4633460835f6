package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/rutld-connector/internal/errs"
)

// ContactMappingTable stores local profile <-> remote contact links.
const ContactMappingTable = "b4_contact_mapping"

const (
	createMappingTable = `
CREATE TABLE IF NOT EXISTS b4_contact_mapping (
    processingmodule integer NOT NULL,
    service_profile  integer NOT NULL,
    is_generic       boolean NOT NULL,
    externalid       varchar(64) NOT NULL,
    PRIMARY KEY (processingmodule, service_profile, is_generic)
)`
	createMappingIndex = `
CREATE INDEX IF NOT EXISTS b4_contact_mapping_externalid
    ON b4_contact_mapping (processingmodule, externalid)`
)

// ContactRepo implements ContactMappingRepository. The table is created on
// first use; the check runs once per process.
type ContactRepo struct {
	db *DB

	mu      sync.Mutex
	ensured bool
}

// NewContactRepo constructs a contact mapping repository on a dedicated DB.
func NewContactRepo(db *DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) ensureSchema(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ensured {
		return nil
	}
	for _, q := range []string{createMappingTable, createMappingIndex} {
		// IF NOT EXISTS still races on the catalog when two processes create at once.
		if _, err := r.db.Pool.Exec(ctx, q); err != nil && !isDuplicateTable(err) && !isUniqueViolation(err) {
			return fmt.Errorf("ensure %s: %w", ContactMappingTable, err)
		}
	}
	r.ensured = true
	return nil
}

// GetRemoteID returns the remote contact ID for a local profile and shape.
func (r *ContactRepo) GetRemoteID(ctx context.Context, accountID, profileID int64, generic bool) (string, bool, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return "", false, err
	}
	const q = `
SELECT externalid FROM b4_contact_mapping
WHERE processingmodule=$1 AND service_profile=$2 AND is_generic=$3`
	var id string
	err := r.db.Pool.QueryRow(ctx, q, accountID, profileID, generic).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return id, true, nil
}

// GetLocalID returns the local profile linked to a remote contact.
func (r *ContactRepo) GetLocalID(ctx context.Context, accountID int64, remoteID string) (int64, bool, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return 0, false, err
	}
	const q = `
SELECT service_profile FROM b4_contact_mapping
WHERE processingmodule=$1 AND externalid=$2
ORDER BY is_generic LIMIT 1`
	var id int64
	err := r.db.Pool.QueryRow(ctx, q, accountID, remoteID).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return 0, false, nil
	case err != nil:
		return 0, false, err
	}
	return id, true, nil
}

// Put inserts a new mapping; an existing key is reported as errs.ErrConflict.
func (r *ContactRepo) Put(ctx context.Context, accountID, profileID int64, generic bool, remoteID string) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	const q = `
INSERT INTO b4_contact_mapping (processingmodule, service_profile, is_generic, externalid)
VALUES ($1,$2,$3,$4)`
	_, err := r.db.Pool.Exec(ctx, q, accountID, profileID, generic, remoteID)
	if isUniqueViolation(err) {
		return errs.Conflict("contact_mapping", fmt.Sprintf("%d/%d/%t", accountID, profileID, generic))
	}
	return err
}
