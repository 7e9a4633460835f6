package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/and161185/rutld-connector/internal/billing"
	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/metrics"
	"github.com/and161185/rutld-connector/internal/model"
	"github.com/and161185/rutld-connector/internal/registrar"
	"github.com/and161185/rutld-connector/internal/remote"
)

func delegated(id string) map[string]string {
	return map[string]string{"id": id, "name": "example.ru", "registrarId": "5", "domainstatus": "2", "expire": "2030-01-01"}
}

func TestOpen_RussianZoneNic(t *testing.T) {
	e := newEnv(t)
	e.addItem(model.DomainItem{ID: 1, PricelistID: 1000, PeriodMonths: 12, Params: map[string]string{
		"domain": "example.ru", "ns0": "ns1.example.net", "ns1": "ns2.example.net",
	}})
	e.profiles[model.RoleOwner] = person(5)
	e.listing(delegated("555"))

	require.NoError(t, e.svc.Open(context.Background(), 1))

	// customer and owner share one non-generic contact
	require.Len(t, e.reg.Calls(registrar.FuncContactCreate), 1)
	create := e.reg.Last(registrar.FuncContactCreate)
	require.Equal(t, registrar.ContactPerson, create.Params["ctype"])

	order := e.reg.Last(registrar.FuncDomainOrder).Params
	require.Equal(t, "C1", order[model.RoleCustomer])
	require.Equal(t, "C1", order[model.RoleOwner])
	require.NotContains(t, order, model.RoleAdmin)
	require.Equal(t, "example", order["domainname_0"])
	require.Equal(t, "ru", order["tld"])
	require.Equal(t, "10", order["pricelist_0"])
	require.Equal(t, "101", order["period_0"])
	require.Equal(t, "account77", order["payfrom"])
	require.Equal(t, "ns1.example.net ns2.example.net", order["nslist_0"])

	it := e.items.items[1]
	require.Equal(t, "555", it.Param(model.ParamRemoteID))
	require.Equal(t, "10", it.Param(model.ParamRemotePrice))

	require.Equal(t, []string{"domain.open", billing.FuncSetStatus, billing.FuncSetExpireDate}, e.host.Funcs())
	require.Equal(t, "2", e.host.Last(billing.FuncSetStatus).Params["service_status"])
	require.Equal(t, "2030-01-01", e.host.Last(billing.FuncSetExpireDate).Params["expiredate"])

	id, found, _ := e.mappings.GetRemoteID(context.Background(), 3, 5, false)
	require.True(t, found)
	require.Equal(t, "C1", id)
}

func TestOpen_GenericContacts(t *testing.T) {
	e := newEnv(t)
	e.accounts[3] = model.Account{ID: 3, Registrar: 7}
	e.addItem(model.DomainItem{ID: 2, PricelistID: 2000, PeriodMonths: 24, Params: map[string]string{"domain": "example.com"}})
	e.profiles[model.RoleOwner] = company(10)
	e.profiles[model.RoleAdmin] = person(11)
	e.profiles[model.RoleBill] = company(12)
	e.profiles[model.RoleTech] = person(13)
	e.listing(delegated("555"))

	require.NoError(t, e.svc.Open(context.Background(), 2))

	for _, c := range e.reg.Calls(registrar.FuncContactCreate) {
		require.Equal(t, registrar.ContactGeneric, c.Params["ctype"])
	}
	require.Len(t, e.reg.Calls(registrar.FuncContactCreate), 4)
	order := e.reg.Last(registrar.FuncDomainOrder).Params
	for _, role := range []string{model.RoleOwner, model.RoleAdmin, model.RoleBill, model.RoleTech} {
		require.NotEmpty(t, order[role], role)
	}
	require.NotContains(t, order, model.RoleCustomer)
	require.Equal(t, "40", order["pricelist_0"], "pinned registrar 7")
	require.Equal(t, "402", order["period_0"])
	require.Equal(t, 4.0, testutil.ToFloat64(e.metrics.ContactsCreated))
}

func TestOpen_DomainDoesNotMatchTLD(t *testing.T) {
	e := newEnv(t)
	e.addItem(model.DomainItem{ID: 1, PricelistID: 1000, PeriodMonths: 12, Params: map[string]string{"domain": "example.com"}})
	e.profiles[model.RoleOwner] = person(5)

	err := e.svc.Open(context.Background(), 1)
	require.ErrorIs(t, err, errs.ErrInvalidValue)
	require.Empty(t, e.reg.Calls(registrar.FuncContactCreate))
	require.Empty(t, e.reg.Calls(registrar.FuncDomainOrder))
}

func TestOpen_UnsupportedPeriod(t *testing.T) {
	e := newEnv(t)
	e.addItem(model.DomainItem{ID: 1, PricelistID: 1000, PeriodMonths: 36, Params: map[string]string{"domain": "example.ru"}})

	err := e.svc.Open(context.Background(), 1)
	require.ErrorIs(t, err, errs.ErrInvalidPeriod)
	require.Empty(t, e.reg.Calls())
}

func TestOpen_MissingProfile(t *testing.T) {
	e := newEnv(t)
	e.addItem(model.DomainItem{ID: 1, PricelistID: 1000, PeriodMonths: 12, Params: map[string]string{"domain": "example.ru"}})

	err := e.svc.Open(context.Background(), 1)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, "profile_owner", errs.Key(err))
	require.Empty(t, e.reg.Calls(registrar.FuncDomainOrder))
}

func TestProlong(t *testing.T) {
	e := newEnv(t)
	e.accounts[3] = model.Account{ID: 3, Registrar: 7}
	e.addItem(model.DomainItem{ID: 4, PricelistID: 2000, PeriodMonths: 12, Params: map[string]string{
		"domain": "example.com", model.ParamRemoteID: "555", model.ParamRemotePrice: "40",
	}})
	e.listing(delegated("555"))

	require.NoError(t, e.svc.Prolong(context.Background(), 4))

	renew := e.reg.Last(registrar.FuncDomainRenew).Params
	require.Equal(t, "555", renew["elid"])
	require.Equal(t, "401", renew["autoperiod"])
	require.Equal(t, "account77", renew["payfrom"])
	require.Equal(t, []string{billing.FuncPostProlong, billing.FuncSetStatus, billing.FuncSetExpireDate}, e.host.Funcs())
}

func TestProlong_RegistrarMismatch(t *testing.T) {
	e := newEnv(t)
	e.accounts[3] = model.Account{ID: 3, Registrar: 13}
	e.addItem(model.DomainItem{ID: 4, PricelistID: 2000, PeriodMonths: 12, Params: map[string]string{
		"domain": "example.com", model.ParamRemoteID: "555", model.ParamRemotePrice: "40",
	}})

	err := e.svc.Prolong(context.Background(), 4)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Empty(t, e.reg.Calls(registrar.FuncDomainRenew))
	require.Empty(t, e.host.Calls())
}

func TestProlong_NoRemoteID(t *testing.T) {
	e := newEnv(t)
	e.addItem(model.DomainItem{ID: 4, PricelistID: 2000, PeriodMonths: 12, Params: map[string]string{"domain": "example.com"}})

	err := e.svc.Prolong(context.Background(), 4)
	require.ErrorIs(t, err, errs.ErrMissing)
	require.Equal(t, model.ParamRemoteID, errs.Key(err))
}

func TestUpdateNS(t *testing.T) {
	e := newEnv(t)
	e.addItem(model.DomainItem{ID: 4, Params: map[string]string{
		model.ParamRemoteID: "555", "ns0": "a.example.net", "ns2": "c.example.net",
	}})

	require.NoError(t, e.svc.UpdateNS(context.Background(), 4))
	p := e.reg.Last(registrar.FuncDomainEdit).Params
	require.Equal(t, "on", p["changens"])
	require.Equal(t, "a.example.net", p["ns1"])
	require.Equal(t, "c.example.net", p["ns2"])
	require.NotContains(t, p, "ns3")
}

func TestHostOnlyOperations(t *testing.T) {
	cases := map[string]struct {
		call func(*DomainServiceImpl) error
		fn   string
	}{
		"suspend": {func(s *DomainServiceImpl) error { return s.Suspend(context.Background(), 9) }, billing.FuncPostSuspend},
		"resume":  {func(s *DomainServiceImpl) error { return s.Resume(context.Background(), 9) }, billing.FuncPostResume},
		"close":   {func(s *DomainServiceImpl) error { return s.Close(context.Background(), 9) }, billing.FuncPostClose},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t)
			require.NoError(t, tc.call(e.svc))
			require.Equal(t, []string{tc.fn}, e.host.Funcs())
			require.Equal(t, "9", e.host.Last(tc.fn).Params["elid"])
			require.Empty(t, e.reg.Calls())
		})
	}
}

func TestTransfer_Unimplemented(t *testing.T) {
	e := newEnv(t)
	err := e.svc.Transfer(context.Background(), 1)
	require.ErrorIs(t, err, errs.ErrUnimplemented)
	require.Equal(t, 1.0, testutil.ToFloat64(e.metrics.Operations.WithLabelValues("transfer", metrics.ResultError)))
}

func TestRun_RecoversPanic(t *testing.T) {
	e := newEnv(t)
	err := e.svc.Open(context.Background(), panicItem)
	require.Error(t, err)
	require.Contains(t, err.Error(), "panic: boom")
}

func TestCheckConnection(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.svc.CheckConnection(context.Background(), e.accounts[3]))

	e.reg.Elems(registrar.FuncAccountInfo, map[string]string{"id": "1", "project": "other"})
	err := e.svc.CheckConnection(context.Background(), e.accounts[3])
	require.ErrorIs(t, err, errs.ErrMissing)

	e.svc.dial = func(model.Account) (remote.Caller, error) { return nil, errors.New("no route") }
	require.Error(t, e.svc.CheckConnection(context.Background(), e.accounts[3]))
}

func TestCheckConnection_PinnedRegistrar(t *testing.T) {
	e := newEnv(t)
	acc := e.accounts[3]
	acc.Registrar = 7
	require.NoError(t, e.svc.CheckConnection(context.Background(), acc))

	acc.Registrar = 99
	err := e.svc.CheckConnection(context.Background(), acc)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, "registrar", errs.Key(err))
	require.Equal(t, 1, e.dials, "unknown registrar is rejected before dialing")
}

func TestContactTypesAndRegistrars(t *testing.T) {
	e := newEnv(t)
	roles, err := e.svc.ContactTypes("ru")
	require.NoError(t, err)
	require.Equal(t, []model.ContactRole{{Name: model.RoleOwner, Main: true}}, roles)
	require.Equal(t, []int{5, 7, 13}, e.svc.Registrars())
}
