package repository

import "context"

// ContactMappingRepository persists the write-once link between a local
// profile and its remote contact, per account and contact shape.
type ContactMappingRepository interface {
	// GetRemoteID returns the remote contact ID; found is false when no mapping exists.
	GetRemoteID(ctx context.Context, accountID, profileID int64, generic bool) (remoteID string, found bool, err error)

	// GetLocalID returns the local profile mapped to remoteID within the account.
	GetLocalID(ctx context.Context, accountID int64, remoteID string) (profileID int64, found bool, err error)

	// Put stores a new mapping. Returns errs.ErrConflict if the key already exists.
	Put(ctx context.Context, accountID, profileID int64, generic bool, remoteID string) error
}
