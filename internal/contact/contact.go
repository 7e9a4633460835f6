package contact

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/metrics"
	"github.com/and161185/rutld-connector/internal/model"
	"github.com/and161185/rutld-connector/internal/oplog"
	"github.com/and161185/rutld-connector/internal/repository"
)

// RemoteContacts is the registrar side of contact management.
type RemoteContacts interface {
	CreateContact(ctx context.Context, ctype, name string) (string, error)
	EditContact(ctx context.Context, id string, fields map[string]string) error
	GetContact(ctx context.Context, id string) (map[string]string, error)
}

// ProfileImporter creates local profiles on the billing host.
type ProfileImporter interface {
	ImportProfile(ctx context.Context, accountID int64, p model.Profile) (int64, error)
}

// Service is the only place remote contacts are created or imported.
type Service struct {
	store  repository.ContactMappingRepository
	mapper *Mapper
	log    *zap.Logger
	m      *metrics.Metrics
}

// NewService constructs a contact service.
func NewService(store repository.ContactMappingRepository, mapper *Mapper, log *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, mapper: mapper, log: log, m: m}
}

// EnsureRemote returns the remote contact for profile p in the given shape,
// creating it on first use. A stored mapping short-circuits without any
// remote call.
func (s *Service) EnsureRemote(ctx context.Context, api RemoteContacts, accountID int64, generic bool, p model.Profile) (string, error) {
	if id, found, err := s.store.GetRemoteID(ctx, accountID, p.ID, generic); err != nil {
		return "", err
	} else if found {
		return id, nil
	}

	rc, err := s.mapper.ToRemote(ctx, generic, p)
	if err != nil {
		return "", fmt.Errorf("profile %d: %w", p.ID, err)
	}
	id, err := api.CreateContact(ctx, rc.Type, rc.Name)
	if err != nil {
		return "", err
	}
	s.m.IncContactsCreated()
	if err = api.EditContact(ctx, id, rc.Fields); err != nil {
		return "", err
	}

	err = s.store.Put(ctx, accountID, p.ID, generic, id)
	if errors.Is(err, errs.ErrConflict) {
		s.m.IncMappingConflicts()
		stored, found, rerr := s.store.GetRemoteID(ctx, accountID, p.ID, generic)
		if rerr != nil {
			return "", rerr
		}
		if !found {
			return "", err
		}
		oplog.Logger(ctx, s.log).Warn("contact mapping created concurrently, using stored contact",
			zap.Int64("profile", p.ID),
			zap.Bool("generic", generic),
			zap.String("created", id),
			zap.String("stored", stored),
		)
		return stored, nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// ResolveLocal returns the local profile linked to a remote contact,
// importing the contact as a new profile when it is not known yet.
func (s *Service) ResolveLocal(ctx context.Context, api RemoteContacts, host ProfileImporter, accountID int64, remoteID string) (int64, error) {
	if id, found, err := s.store.GetLocalID(ctx, accountID, remoteID); err != nil {
		return 0, err
	} else if found {
		return id, nil
	}

	fields, err := api.GetContact(ctx, remoteID)
	if err != nil {
		return 0, err
	}
	p, generic, err := s.mapper.ToLocal(ctx, fields)
	if err != nil {
		return 0, fmt.Errorf("remote contact %s: %w", remoteID, err)
	}
	pid, err := host.ImportProfile(ctx, accountID, p)
	if err != nil {
		return 0, err
	}

	err = s.store.Put(ctx, accountID, pid, generic, remoteID)
	if errors.Is(err, errs.ErrConflict) {
		s.m.IncMappingConflicts()
		oplog.Logger(ctx, s.log).Warn("contact mapping already present", zap.Int64("profile", pid), zap.String("remote", remoteID))
		return pid, nil
	}
	if err != nil {
		return 0, err
	}
	oplog.Logger(ctx, s.log).Info("imported remote contact", zap.Int64("profile", pid), zap.String("remote", remoteID))
	return pid, nil
}
