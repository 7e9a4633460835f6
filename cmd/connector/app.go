package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/and161185/rutld-connector/internal/billing"
	"github.com/and161185/rutld-connector/internal/catalog"
	"github.com/and161185/rutld-connector/internal/config"
	"github.com/and161185/rutld-connector/internal/contact"
	"github.com/and161185/rutld-connector/internal/country"
	"github.com/and161185/rutld-connector/internal/metrics"
	"github.com/and161185/rutld-connector/internal/model"
	"github.com/and161185/rutld-connector/internal/remote"
	"github.com/and161185/rutld-connector/internal/repository/postgres"
	"github.com/and161185/rutld-connector/internal/service"
)

// app holds everything one invocation needs.
type app struct {
	svc      service.DomainService
	registry *prometheus.Registry
	closers  []func()
}

func newApp(ctx context.Context, cfg config.Config, log *zap.Logger) (_ *app, err error) {
	a := &app{registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			a.close()
		}
	}()
	m := metrics.New(a.registry)

	cat, err := catalog.LoadFile(cfg.CatalogPath, cfg.CatalogOptions(), log)
	if err != nil {
		return nil, err
	}
	table, err := country.LoadTableFile(cfg.CountriesPath)
	if err != nil {
		return nil, err
	}

	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("billing db: %w", err)
	}
	a.closers = append(a.closers, db.Pool.Close)
	contactDB, err := postgres.New(ctx, cfg.ContactDSN)
	if err != nil {
		return nil, fmt.Errorf("contact db: %w", err)
	}
	a.closers = append(a.closers, contactDB.Pool.Close)

	hostRPC, err := remote.NewXMLRPC(cfg.BillingURL, cfg.BillingAuth, cfg.RemoteTimeout)
	if err != nil {
		return nil, fmt.Errorf("billing api: %w", err)
	}
	a.closers = append(a.closers, func() { _ = hostRPC.Close() })

	d := newDialer(cfg, log, m)
	a.closers = append(a.closers, d.close)

	bridge := country.NewBridge(table, postgres.NewCountryRepo(db))
	contacts := contact.NewService(postgres.NewContactRepo(contactDB), contact.NewMapper(bridge), log, m)

	a.svc = service.NewDomainService(service.Deps{
		Items:        postgres.NewItemRepo(db),
		Profiles:     postgres.NewProfileRepo(db),
		Accounts:     postgres.NewAccountRepo(db, cfg.RemoteURL),
		TLDs:         postgres.NewTLDRepo(db),
		Catalog:      cat,
		RussianZones: catalog.ZoneSet(cfg.RussianZones),
		Contacts:     contacts,
		Host:         billing.New(remote.Instrument(hostRPC, "billing", log, m)),
		Dial:         d.dial,
		Project:      cfg.ProjectName,
		Log:          log,
		Metrics:      m,
	})
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) execute(ctx context.Context, c command, out io.Writer) error {
	switch c.name {
	case "open":
		return a.svc.Open(ctx, c.itemID)
	case "prolong":
		return a.svc.Prolong(ctx, c.itemID)
	case "sync":
		upd, err := a.svc.SyncItem(ctx, c.itemID)
		if err != nil {
			return err
		}
		printJSON(out, map[string]any{"status": int(upd.Status), "expire": upd.Expire.Format(time.DateOnly)})
		return nil
	case "updatens":
		return a.svc.UpdateNS(ctx, c.itemID)
	case "suspend":
		return a.svc.Suspend(ctx, c.itemID)
	case "resume":
		return a.svc.Resume(ctx, c.itemID)
	case "close":
		return a.svc.Close(ctx, c.itemID)
	case "transfer":
		return a.svc.Transfer(ctx, c.itemID)
	case "import":
		rep, err := a.svc.Import(ctx, c.accountID, c.itemType, c.search)
		printJSON(out, rep)
		return err
	case "check":
		return a.svc.CheckConnection(ctx, c.account)
	case "contacttypes":
		roles, err := a.svc.ContactTypes(c.tld)
		if err != nil {
			return err
		}
		printJSON(out, roles)
		return nil
	case "registrars":
		printJSON(out, a.svc.Registrars())
		return nil
	}
	return fmt.Errorf("unknown command %q", c.name)
}

type dialKey struct{ url, user, password string }

// dialer keeps one XML-RPC client per distinct set of credentials.
type dialer struct {
	cfg config.Config
	log *zap.Logger
	m   *metrics.Metrics

	mu      sync.Mutex
	clients map[dialKey]*remote.XMLRPC
}

func newDialer(cfg config.Config, log *zap.Logger, m *metrics.Metrics) *dialer {
	return &dialer{cfg: cfg, log: log, m: m, clients: map[dialKey]*remote.XMLRPC{}}
}

func (d *dialer) dial(acc model.Account) (remote.Caller, error) {
	k := dialKey{acc.URL, acc.Username, acc.Password}
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.clients[k]
	if !ok {
		var err error
		c, err = remote.NewXMLRPC(acc.URL, acc.Username+":"+acc.Password, d.cfg.RemoteTimeout)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", acc.URL, err)
		}
		d.clients[k] = c
	}
	return remote.Instrument(c, "registrar", d.log.With(zap.Int64("account", acc.ID)), d.m), nil
}

func (d *dialer) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, c := range d.clients {
		_ = c.Close()
		delete(d.clients, k)
	}
}
