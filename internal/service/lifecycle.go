package service

import (
	"context"
	"strconv"
	"time"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/model"
)

// Translate maps a remote listing entry to the local status and expiry.
// Only codes 2 and 3 are meaningful; anything else means the domain is not
// usable remotely and is reported as errs.ErrNotFound.
func Translate(d model.RemoteDomainSnapshot) (model.StatusUpdate, error) {
	var status model.DomainStatus
	switch d.Status {
	case model.RemoteStatusDelegated:
		status = model.StatusDelegated
	case model.RemoteStatusNotDelegated:
		status = model.StatusNotDelegated
	case model.RemoteStatusNone:
		return model.StatusUpdate{}, errs.NotFound("remote_domain", d.ID)
	default:
		return model.StatusUpdate{}, errs.NotFound("remote_domain_status", strconv.Itoa(d.Status))
	}
	expire, err := time.Parse(time.DateOnly, d.Expire)
	if err != nil {
		return model.StatusUpdate{}, errs.InvalidValue("expiredate", d.Expire)
	}
	return model.StatusUpdate{Status: status, Expire: expire}, nil
}

// SyncItem pulls the domain's remote state and pushes it to the host.
func (s *DomainServiceImpl) SyncItem(ctx context.Context, itemID int64) (upd model.StatusUpdate, err error) {
	err = s.run(ctx, "sync", itemFields(itemID), func(ctx context.Context) error {
		upd, err = s.sync(ctx, itemID)
		return err
	})
	return upd, err
}

func (s *DomainServiceImpl) sync(ctx context.Context, itemID int64) (model.StatusUpdate, error) {
	item, _, reg, err := s.load(ctx, itemID)
	if err != nil {
		return model.StatusUpdate{}, err
	}
	remoteID := item.Param(model.ParamRemoteID)
	if remoteID == "" {
		return model.StatusUpdate{}, errs.NotFound("remote_domain", "")
	}
	snap, found, err := reg.FindDomain(ctx, remoteID)
	if err != nil {
		return model.StatusUpdate{}, err
	}
	if !found {
		return model.StatusUpdate{}, errs.NotFound("remote_domain", remoteID)
	}
	upd, err := Translate(snap)
	if err != nil {
		return model.StatusUpdate{}, err
	}
	if err = s.host.SetStatus(ctx, item.ID, upd.Status); err != nil {
		return model.StatusUpdate{}, err
	}
	if err = s.host.SetExpireDate(ctx, item.ID, upd.Expire); err != nil {
		return model.StatusUpdate{}, err
	}
	return upd, nil
}
