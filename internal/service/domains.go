package service

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/model"
	"github.com/and161185/rutld-connector/internal/registrar"
)

// Open registers the domain of a freshly paid item.
func (s *DomainServiceImpl) Open(ctx context.Context, itemID int64) error {
	return s.run(ctx, "open", itemFields(itemID), func(ctx context.Context) error {
		item, acc, reg, err := s.load(ctx, itemID)
		if err != nil {
			return err
		}
		tld, err := s.tlds.NameByPricelist(ctx, item.PricelistID)
		if err != nil {
			return err
		}
		offer, err := s.catalog.SelectForOrder(tld, acc.Registrar)
		if err != nil {
			return err
		}
		periodID, err := offer.PeriodID(item.PeriodMonths / 12)
		if err != nil {
			return err
		}
		domain := item.Domain()
		name, found := strings.CutSuffix(domain, "."+offer.TLD)
		if !found || name == "" {
			return errs.InvalidValue("domain_and_tld_does_not_match", domain)
		}

		contacts, err := s.remoteContacts(ctx, reg, acc.ID, item.ID, offer)
		if err != nil {
			return err
		}
		payer, err := reg.AccountID(ctx)
		if err != nil {
			return err
		}
		remoteID, err := reg.OrderDomain(ctx, registrar.Order{
			Name:        name,
			Offer:       offer,
			PeriodID:    periodID,
			AccountID:   payer,
			Contacts:    contacts,
			Nameservers: item.Nameservers(),
		})
		if err != nil {
			return err
		}

		if err = s.items.SaveParam(ctx, item.ID, model.ParamRemoteID, remoteID); err != nil {
			return err
		}
		if err = s.items.SaveParam(ctx, item.ID, model.ParamRemotePrice, strconv.Itoa(offer.ID)); err != nil {
			return err
		}
		if err = s.host.OpenDone(ctx, item.ItemType, item.ID); err != nil {
			return err
		}
		_, err = s.sync(ctx, itemID)
		return err
	})
}

// remoteContacts ensures the remote contacts the offer's zone requires.
func (s *DomainServiceImpl) remoteContacts(ctx context.Context, reg *registrar.Client, accountID, itemID int64, offer model.PriceOffer) (map[string]string, error) {
	out := map[string]string{}
	ensure := func(role, profileRole string, generic bool) error {
		p, err := s.profiles.ForItem(ctx, itemID, profileRole)
		if err != nil {
			return err
		}
		id, err := s.contacts.EnsureRemote(ctx, reg, accountID, generic, p)
		if err != nil {
			return err
		}
		out[role] = id
		return nil
	}

	if offer.IsNicRegistrar {
		if err := ensure(model.RoleCustomer, model.RoleOwner, false); err != nil {
			return nil, err
		}
	}
	if offer.IsRussianZone {
		if err := ensure(model.RoleOwner, model.RoleOwner, false); err != nil {
			return nil, err
		}
		return out, nil
	}
	for _, role := range []string{model.RoleOwner, model.RoleAdmin, model.RoleBill, model.RoleTech} {
		if err := ensure(role, role, true); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Prolong renews the domain using the offer recorded at purchase.
func (s *DomainServiceImpl) Prolong(ctx context.Context, itemID int64) error {
	return s.run(ctx, "prolong", itemFields(itemID), func(ctx context.Context) error {
		item, acc, reg, err := s.load(ctx, itemID)
		if err != nil {
			return err
		}
		remoteID, err := remoteIDOf(item)
		if err != nil {
			return err
		}
		raw := item.Param(model.ParamRemotePrice)
		offerID, err := strconv.Atoi(raw)
		if err != nil {
			return errs.InvalidValue(model.ParamRemotePrice, raw)
		}
		tld, err := s.tlds.NameByPricelist(ctx, item.PricelistID)
		if err != nil {
			return err
		}
		offer, err := s.catalog.SelectForRenewal(tld, offerID, acc.Registrar)
		if err != nil {
			return err
		}
		periodID, err := offer.PeriodID(item.PeriodMonths / 12)
		if err != nil {
			return err
		}
		payer, err := reg.AccountID(ctx)
		if err != nil {
			return err
		}
		if err = reg.RenewDomain(ctx, remoteID, payer, periodID); err != nil {
			return err
		}
		if err = s.host.PostProlong(ctx, item.ID); err != nil {
			return err
		}
		_, err = s.sync(ctx, itemID)
		return err
	})
}

// UpdateNS replaces the remote nameservers with the item's ns0..ns3.
func (s *DomainServiceImpl) UpdateNS(ctx context.Context, itemID int64) error {
	return s.run(ctx, "updatens", itemFields(itemID), func(ctx context.Context) error {
		item, _, reg, err := s.load(ctx, itemID)
		if err != nil {
			return err
		}
		remoteID, err := remoteIDOf(item)
		if err != nil {
			return err
		}
		return reg.UpdateNS(ctx, remoteID, item.Nameservers())
	})
}

// Suspend acknowledges a suspension; the registrar side is left untouched.
func (s *DomainServiceImpl) Suspend(ctx context.Context, itemID int64) error {
	return s.run(ctx, "suspend", itemFields(itemID), func(ctx context.Context) error {
		return s.host.PostSuspend(ctx, itemID)
	})
}

// Resume acknowledges a resume.
func (s *DomainServiceImpl) Resume(ctx context.Context, itemID int64) error {
	return s.run(ctx, "resume", itemFields(itemID), func(ctx context.Context) error {
		return s.host.PostResume(ctx, itemID)
	})
}

// Close acknowledges a close. Domains expire remotely on their own.
func (s *DomainServiceImpl) Close(ctx context.Context, itemID int64) error {
	return s.run(ctx, "close", itemFields(itemID), func(ctx context.Context) error {
		return s.host.PostClose(ctx, itemID)
	})
}

// Transfer always fails with errs.ErrUnimplemented.
func (s *DomainServiceImpl) Transfer(ctx context.Context, itemID int64) error {
	return s.run(ctx, "transfer", itemFields(itemID), func(context.Context) error {
		return errs.Unimplemented("transfer")
	})
}

// CheckConnection validates the pinned registrar, dials with the given
// settings and resolves the paying account.
func (s *DomainServiceImpl) CheckConnection(ctx context.Context, acc model.Account) error {
	return s.run(ctx, "check", nil, func(ctx context.Context) error {
		if acc.Pinned() && !slices.Contains(s.catalog.Registrars(), acc.Registrar) {
			return errs.NotFound("registrar", strconv.Itoa(acc.Registrar))
		}
		c, err := s.dial(acc)
		if err != nil {
			return err
		}
		_, err = registrar.New(c, s.project).AccountID(ctx)
		return err
	})
}

// ContactTypes lists the contact roles the TLD requires.
func (s *DomainServiceImpl) ContactTypes(tld string) ([]model.ContactRole, error) {
	return s.catalog.ContactRoles(tld)
}

// Registrars lists registrar IDs present in the catalog.
func (s *DomainServiceImpl) Registrars() []int { return s.catalog.Registrars() }

func remoteIDOf(item model.DomainItem) (string, error) {
	id := item.Param(model.ParamRemoteID)
	if id == "" {
		return "", errs.Missing(model.ParamRemoteID)
	}
	return id, nil
}
