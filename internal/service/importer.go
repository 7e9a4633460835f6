package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/model"
	"github.com/and161185/rutld-connector/internal/oplog"
	"github.com/and161185/rutld-connector/internal/registrar"
)

// ImportItemType is the only item type that can be imported.
const ImportItemType = "domain"

// ImportedDomain is one domain created locally by Import.
type ImportedDomain struct {
	Name      string
	RemoteID  string
	ServiceID int64
	Status    model.DomainStatus
}

// ImportReport lists what Import created before it finished or failed.
type ImportReport struct {
	Imported []ImportedDomain
	Skipped  int
}

// Import walks the account's remote domains and creates a local service
// with contacts for each. search is a space separated list of names to
// import; empty means all. The first failing domain stops the run; domains
// imported before it stay imported.
func (s *DomainServiceImpl) Import(ctx context.Context, accountID int64, itemType, search string) (rep ImportReport, err error) {
	fields := []zap.Field{zap.Int64("account", accountID), zap.String("itemtype", itemType)}
	err = s.run(ctx, "import", fields, func(ctx context.Context) error {
		if itemType != ImportItemType {
			return errs.Unimplemented("import_" + itemType)
		}
		acc, reg, err := s.connect(ctx, accountID)
		if err != nil {
			return err
		}
		wanted := map[string]bool{}
		for _, n := range strings.Fields(search) {
			wanted[n] = true
		}

		list, err := reg.ListDomains(ctx)
		if err != nil {
			return err
		}
		for _, d := range list {
			if len(wanted) > 0 && !wanted[d.Name] {
				rep.Skipped++
				continue
			}
			if acc.Pinned() && d.RegistrarID != strconv.Itoa(acc.Registrar) {
				rep.Skipped++
				continue
			}
			imp, err := s.importDomain(ctx, acc, reg, itemType, d)
			if err != nil {
				return fmt.Errorf("import %s: %w", d.Name, err)
			}
			rep.Imported = append(rep.Imported, imp)
		}
		return nil
	})
	return rep, err
}

// importDomain is all-or-nothing for the local side: every role is checked
// and every profile resolved before the service is created.
func (s *DomainServiceImpl) importDomain(ctx context.Context, acc model.Account, reg *registrar.Client, itemType string, d model.RemoteDomainSnapshot) (ImportedDomain, error) {
	log := oplog.Logger(ctx, s.log).With(zap.String("domain", d.Name), zap.String("remote_id", d.ID))

	_, tld, found := strings.Cut(d.Name, ".")
	if !found || tld == "" {
		return ImportedDomain{}, errs.InvalidValue("domain", d.Name)
	}
	tldID, err := s.tlds.IDByName(ctx, tld)
	if err != nil {
		return ImportedDomain{}, err
	}

	expire, perr := time.Parse(time.DateOnly, d.Expire)
	if perr != nil {
		log.Warn("unparsable remote expiry, importing as expired", zap.String("expire", d.Expire))
		expire = time.Time{}
	}
	status := model.StatusNotDelegated
	if expire.After(s.now()) {
		status = model.StatusDelegated
	}

	details, err := reg.DomainDetails(ctx, d.ID)
	if err != nil {
		return ImportedDomain{}, err
	}
	roles := []string{model.RoleOwner, model.RoleAdmin, model.RoleBill, model.RoleTech}
	if s.zones.Contains(tld) {
		roles = []string{model.RoleOwner}
	}
	for _, role := range roles {
		if details.Contacts[role] == "" {
			return ImportedDomain{}, errs.Missing("contact_" + role)
		}
	}
	profiles := make(map[string]int64, len(roles))
	for _, role := range roles {
		pid, err := s.contacts.ResolveLocal(ctx, reg, s.host, acc.ID, details.Contacts[role])
		if err != nil {
			return ImportedDomain{}, fmt.Errorf("contact_%s: %w", role, err)
		}
		profiles[role] = pid
	}

	var remotePrice string
	if regID, err := strconv.Atoi(d.RegistrarID); err == nil {
		if offer, ok := s.catalog.FindByRegistrar(tld, regID); ok {
			remotePrice = strconv.Itoa(offer.ID)
		}
	}

	sid, err := s.host.ImportService(ctx, model.ServiceImport{
		AccountID:   acc.ID,
		ItemType:    itemType,
		Domain:      d.Name,
		PricelistID: strconv.FormatInt(tldID, 10),
		Status:      status,
		Expire:      expire,
		Nameservers: details.Nameservers,
		RemoteID:    d.ID,
		RemotePrice: remotePrice,
	})
	if err != nil {
		return ImportedDomain{}, err
	}
	for _, role := range roles {
		if err = s.host.AttachProfile(ctx, profiles[role], sid, role); err != nil {
			return ImportedDomain{}, err
		}
	}
	log.Info("imported", zap.Int64("service", sid), zap.Stringer("status", status))
	return ImportedDomain{Name: d.Name, RemoteID: d.ID, ServiceID: sid, Status: status}, nil
}
