// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/rutld-connector/internal/model"
)

// ItemRepository reads local domain records and writes connector-managed params.
type ItemRepository interface {
	// Get loads the item with its type intname and parameters.
	Get(ctx context.Context, itemID int64) (model.DomainItem, error)

	// SaveParam inserts or replaces a single item parameter.
	SaveParam(ctx context.Context, itemID int64, name, value string) error
}

// ProfileRepository reads local contact profiles.
type ProfileRepository interface {
	// ForItem returns the profile attached to the item under the given role.
	ForItem(ctx context.Context, itemID int64, role string) (model.Profile, error)
}
