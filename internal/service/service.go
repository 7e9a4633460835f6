// Package service implements the connector's entry points on top of the
// catalog, the contact service and the registrar and host clients.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/rutld-connector/internal/billing"
	"github.com/and161185/rutld-connector/internal/catalog"
	"github.com/and161185/rutld-connector/internal/contact"
	"github.com/and161185/rutld-connector/internal/metrics"
	"github.com/and161185/rutld-connector/internal/model"
	"github.com/and161185/rutld-connector/internal/registrar"
	"github.com/and161185/rutld-connector/internal/remote"
	"github.com/and161185/rutld-connector/internal/repository"
)

// DomainService defines the operations the billing host invokes.
type DomainService interface {
	// Open registers the item's domain and acknowledges it to the host.
	Open(ctx context.Context, itemID int64) error
	// Prolong renews the domain with the offer it was bought with.
	Prolong(ctx context.Context, itemID int64) error
	// SyncItem pulls remote status and expiry into the local record.
	SyncItem(ctx context.Context, itemID int64) (model.StatusUpdate, error)
	// UpdateNS pushes the item's nameservers to the registrar.
	UpdateNS(ctx context.Context, itemID int64) error
	Suspend(ctx context.Context, itemID int64) error
	Resume(ctx context.Context, itemID int64) error
	Close(ctx context.Context, itemID int64) error
	// Transfer is not supported.
	Transfer(ctx context.Context, itemID int64) error
	// Import creates local services for remote domains of the account.
	Import(ctx context.Context, accountID int64, itemType, search string) (ImportReport, error)
	// CheckConnection verifies credentials and the paying project.
	CheckConnection(ctx context.Context, acc model.Account) error
	// ContactTypes lists the contact roles a TLD needs.
	ContactTypes(tld string) ([]model.ContactRole, error)
	// Registrars lists the registrar IDs an account may be pinned to.
	Registrars() []int
}

// Dialer opens a registrar connection for an account.
type Dialer func(acc model.Account) (remote.Caller, error)

// Deps are the collaborators of DomainServiceImpl.
type Deps struct {
	Items    repository.ItemRepository
	Profiles repository.ProfileRepository
	Accounts repository.AccountRepository
	TLDs     repository.TLDRepository

	Catalog      *catalog.Catalog
	RussianZones catalog.ZoneSet
	Contacts     *contact.Service
	Host         *billing.Client
	Dial         Dialer
	Project      string

	Log     *zap.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// DomainServiceImpl implements DomainService.
type DomainServiceImpl struct {
	items    repository.ItemRepository
	profiles repository.ProfileRepository
	accounts repository.AccountRepository
	tlds     repository.TLDRepository

	catalog  *catalog.Catalog
	zones    catalog.ZoneSet
	contacts *contact.Service
	host     *billing.Client
	dial     Dialer
	project  string

	log *zap.Logger
	m   *metrics.Metrics
	now func() time.Time
}

var _ DomainService = (*DomainServiceImpl)(nil)

// NewDomainService constructs the service.
func NewDomainService(d Deps) *DomainServiceImpl {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.RussianZones == nil {
		d.RussianZones = catalog.DefaultRussianZones
	}
	return &DomainServiceImpl{
		items:    d.Items,
		profiles: d.Profiles,
		accounts: d.Accounts,
		tlds:     d.TLDs,
		catalog:  d.Catalog,
		zones:    d.RussianZones,
		contacts: d.Contacts,
		host:     d.Host,
		dial:     d.Dial,
		project:  d.Project,
		log:      d.Log,
		m:        d.Metrics,
		now:      d.Now,
	}
}

// connect loads account settings and dials its registrar.
func (s *DomainServiceImpl) connect(ctx context.Context, accountID int64) (model.Account, *registrar.Client, error) {
	acc, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return model.Account{}, nil, err
	}
	c, err := s.dial(acc)
	if err != nil {
		return model.Account{}, nil, err
	}
	return acc, registrar.New(c, s.project), nil
}

// load returns the item together with its account and registrar.
func (s *DomainServiceImpl) load(ctx context.Context, itemID int64) (model.DomainItem, model.Account, *registrar.Client, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return model.DomainItem{}, model.Account{}, nil, err
	}
	acc, reg, err := s.connect(ctx, item.AccountID)
	if err != nil {
		return model.DomainItem{}, model.Account{}, nil, err
	}
	return item, acc, reg, nil
}
