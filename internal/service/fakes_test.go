package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/rutld-connector/internal/billing"
	"github.com/and161185/rutld-connector/internal/catalog"
	"github.com/and161185/rutld-connector/internal/contact"
	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/metrics"
	"github.com/and161185/rutld-connector/internal/model"
	"github.com/and161185/rutld-connector/internal/registrar"
	"github.com/and161185/rutld-connector/internal/remote"
	"github.com/and161185/rutld-connector/internal/remote/remotetest"
	"github.com/and161185/rutld-connector/internal/repository"
)

const project = "*.ru-tld.ru (Domains)"

const offersJSON = `[
  {"tld":"ru","id":10,"registrar_id":5,"name":"ru nic","priority":1,
   "period":[{"per_type":"year","p_length":1,"id":101,"price_num":"300.00"}]},
  {"tld":"com","id":40,"registrar_id":7,"name":"com","priority":1,
   "period":[{"per_type":"year","p_length":1,"id":401,"price_num":"900.00"},
             {"per_type":"year","p_length":2,"id":402,"price_num":"1800.00"}]},
  {"tld":"com","id":50,"registrar_id":13,"name":"com ardis","priority":2,
   "period":[{"per_type":"year","p_length":1,"id":501,"price_num":"5000.00"}]}
]`

// ---- repositories ----

type fakeItems struct {
	mu    sync.Mutex
	items map[int64]model.DomainItem
}

var _ repository.ItemRepository = (*fakeItems)(nil)

func (f *fakeItems) Get(_ context.Context, id int64) (model.DomainItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == panicItem {
		panic("boom")
	}
	it, ok := f.items[id]
	if !ok {
		return model.DomainItem{}, errs.NotFound("item", fmt.Sprint(id))
	}
	return it, nil
}

func (f *fakeItems) SaveParam(_ context.Context, id int64, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return errs.NotFound("item", fmt.Sprint(id))
	}
	it.Params[name] = value
	return nil
}

const panicItem = 666

// fakeProfiles returns the role's profile; roles without one are NotFound.
type fakeProfiles map[string]model.Profile

var _ repository.ProfileRepository = fakeProfiles(nil)

func (f fakeProfiles) ForItem(_ context.Context, _ int64, role string) (model.Profile, error) {
	p, ok := f[role]
	if !ok {
		return model.Profile{}, errs.NotFound("profile_"+role, "")
	}
	return p, nil
}

type fakeAccounts map[int64]model.Account

var _ repository.AccountRepository = fakeAccounts(nil)

func (f fakeAccounts) Get(_ context.Context, id int64) (model.Account, error) {
	a, ok := f[id]
	if !ok {
		return model.Account{}, errs.NotFound("processingmodule", fmt.Sprint(id))
	}
	return a, nil
}

type fakeTLDs struct {
	byPricelist map[int64]string
	ids         map[string]int64
}

var _ repository.TLDRepository = fakeTLDs{}

func (f fakeTLDs) NameByPricelist(_ context.Context, id int64) (string, error) {
	if n, ok := f.byPricelist[id]; ok {
		return n, nil
	}
	return "", errs.NotFound("pricelist", fmt.Sprint(id))
}

func (f fakeTLDs) IDByName(_ context.Context, name string) (int64, error) {
	if id, ok := f.ids[name]; ok {
		return id, nil
	}
	return 0, errs.NotFound("tld", name)
}

type mappingKey struct {
	account, profile int64
	generic          bool
}

type fakeMappings struct {
	mu   sync.Mutex
	rows map[mappingKey]string
}

var _ repository.ContactMappingRepository = (*fakeMappings)(nil)

func (s *fakeMappings) GetRemoteID(_ context.Context, a, p int64, g bool) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.rows[mappingKey{a, p, g}]
	return id, ok, nil
}

func (s *fakeMappings) GetLocalID(_ context.Context, a int64, remoteID string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.rows {
		if k.account == a && v == remoteID {
			return k.profile, true, nil
		}
	}
	return 0, false, nil
}

func (s *fakeMappings) Put(_ context.Context, a, p int64, g bool, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := mappingKey{a, p, g}
	if _, dup := s.rows[k]; dup {
		return errs.Conflict("contact_mapping", fmt.Sprint(k))
	}
	s.rows[k] = remoteID
	return nil
}

// countries maps local "1" (RU) and "2" (DE) to remote 182 and 81.
type countries map[string]string

func (c countries) ToRemote(_ context.Context, local string) (string, error) {
	if r, ok := c[local]; ok {
		return r, nil
	}
	return "", errs.NotFound("country", local)
}

func (c countries) ToLocal(_ context.Context, remoteID string) (string, error) {
	for l, r := range c {
		if r == remoteID {
			return l, nil
		}
	}
	return "", errs.NotFound("country_id", remoteID)
}

// ---- harness ----

type env struct {
	svc      *DomainServiceImpl
	items    *fakeItems
	profiles fakeProfiles
	accounts fakeAccounts
	mappings *fakeMappings
	reg      *remotetest.Recorder
	host     *remotetest.Recorder
	metrics  *metrics.Metrics
	dials    int
}

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zaptest.NewLogger(t)
	cat, err := catalog.Load(strings.NewReader(offersJSON), catalog.DefaultOptions(), log)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	e := &env{
		items:    &fakeItems{items: map[int64]model.DomainItem{}},
		profiles: fakeProfiles{},
		accounts: fakeAccounts{3: {ID: 3, URL: "https://remote", Username: "u", Password: "p", Registrar: model.AnyRegistrar}},
		mappings: &fakeMappings{rows: map[mappingKey]string{}},
		reg:      remotetest.New(),
		host:     remotetest.New(),
		metrics:  metrics.New(prometheus.NewRegistry()),
	}
	e.reg.Elems(registrar.FuncAccountInfo, map[string]string{"id": "77", "project": project})
	var created int
	e.reg.Handle(registrar.FuncContactCreate, func(map[string]string) (*remote.Response, error) {
		created++
		return &remote.Response{Values: map[string]string{"domaincontact.id": fmt.Sprintf("C%d", created)}}, nil
	})
	e.reg.Values(registrar.FuncDomainOrder, map[string]string{"item.id": "555"})

	contacts := contact.NewService(e.mappings, contact.NewMapper(countries{"1": "182", "2": "81"}), log, e.metrics)
	e.svc = NewDomainService(Deps{
		Items:    e.items,
		Profiles: e.profiles,
		Accounts: e.accounts,
		TLDs: fakeTLDs{
			byPricelist: map[int64]string{1000: "ru", 2000: "com"},
			ids:         map[string]int64{"ru": 1000, "com": 2000},
		},
		Catalog:  cat,
		Contacts: contacts,
		Host:     billing.New(e.host),
		Dial: func(acc model.Account) (remote.Caller, error) {
			e.dials++
			return e.reg, nil
		},
		Project: project,
		Log:     log,
		Metrics: e.metrics,
		Now:     func() time.Time { return now },
	})
	return e
}

// listing answers the remote domain listing.
func (e *env) listing(elems ...map[string]string) { e.reg.Elems(registrar.FuncDomainList, elems...) }

func (e *env) addItem(it model.DomainItem) {
	if it.ItemType == "" {
		it.ItemType = "domain"
	}
	if it.AccountID == 0 {
		it.AccountID = 3
	}
	if it.Params == nil {
		it.Params = map[string]string{}
	}
	e.items.items[it.ID] = it
}

func address(country string) model.Address {
	return model.Address{Country: country, State: "Moscow", Postcode: "101000", City: "Moscow", Street: "Tverskaya 1"}
}

func person(id int64) model.Profile {
	return model.Profile{
		ID: id, Type: model.ProfileIndividual,
		Email: "ivan@example.ru", Phone: "+7 (495) 123-45-67",
		Location: address("1"), Postal: address("1"), PostalAddressee: "Ivan Petrov",
		FirstName: "Ivan", LastName: "Petrov",
		FirstNameLocale: "Иван", LastNameLocale: "Петров",
		Birthdate: "1980-02-03", Passport: "4500 123456", PassportOrg: "OVD", PassportDate: "2000-01-01",
	}
}

func company(id int64) model.Profile {
	return model.Profile{
		ID: id, Type: model.ProfileOrganization,
		Email: "office@example.com", Phone: "+7-495-000-00-00",
		Location: address("2"), Postal: address("2"),
		FirstName: "Anna", LastName: "Smirnova",
		Company: "Example LLC", TaxID: "7700000000",
	}
}
