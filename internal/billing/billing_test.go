package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/model"
	"github.com/and161185/rutld-connector/internal/remote/remotetest"
)

func TestAcks(t *testing.T) {
	rec := remotetest.New()
	h := New(rec)
	ctx := context.Background()

	require.NoError(t, h.OpenDone(ctx, "domain", 42))
	require.NoError(t, h.PostProlong(ctx, 42))
	require.NoError(t, h.PostSuspend(ctx, 42))
	require.NoError(t, h.PostResume(ctx, 42))
	require.NoError(t, h.PostClose(ctx, 42))

	require.Equal(t, []string{"domain.open", FuncPostProlong, FuncPostSuspend, FuncPostResume, FuncPostClose}, rec.Funcs())
	for _, c := range rec.Calls() {
		require.Equal(t, map[string]string{"sok": "ok", "elid": "42"}, c.Params)
	}
}

func TestStatusAndExpiry(t *testing.T) {
	rec := remotetest.New()
	h := New(rec)
	ctx := context.Background()

	require.NoError(t, h.SetStatus(ctx, 42, model.StatusDelegated))
	require.NoError(t, h.SetExpireDate(ctx, 42, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))

	require.Equal(t, "2", rec.Last(FuncSetStatus).Params["service_status"])
	require.Equal(t, "2030-01-01", rec.Last(FuncSetExpireDate).Params["expiredate"])
}

func TestImportService(t *testing.T) {
	rec := remotetest.New().Values(FuncImportService, map[string]string{"service_id": "900"})
	h := New(rec)

	sid, err := h.ImportService(context.Background(), model.ServiceImport{
		AccountID:   3,
		ItemType:    "domain",
		Domain:      "example.com",
		PricelistID: "12",
		Status:      model.StatusNotDelegated,
		Expire:      time.Date(2020, 5, 6, 0, 0, 0, 0, time.UTC),
		Nameservers: [4]string{"a.ns", "b.ns"},
		RemoteID:    "555",
		RemotePrice: "40",
	})
	require.NoError(t, err)
	require.Equal(t, int64(900), sid)

	p := rec.Last(FuncImportService).Params
	require.Equal(t, "example.com", p["domain"])
	require.Equal(t, "12", p["import_pricelist"])
	require.Equal(t, "3", p["status"])
	require.Equal(t, "3", p["module"])
	require.Equal(t, "2020-05-06", p["expiredate"])
	require.Equal(t, "a.ns", p["ns0"])
	require.Equal(t, "", p["ns3"])
	require.Equal(t, "555", p[model.ParamRemoteID])
	require.Equal(t, "40", p[model.ParamRemotePrice])
}

func TestImportService_UnknownExpiry(t *testing.T) {
	rec := remotetest.New().Values(FuncImportService, map[string]string{"service_id": "901"})
	_, err := New(rec).ImportService(context.Background(), model.ServiceImport{
		AccountID: 3, ItemType: "domain", Domain: "example.com", RemoteID: "555",
	})
	require.NoError(t, err)
	require.NotContains(t, rec.Last(FuncImportService).Params, "expiredate")
}

func TestImportService_ZeroID(t *testing.T) {
	rec := remotetest.New().Values(FuncImportService, map[string]string{"service_id": "0"})
	_, err := New(rec).ImportService(context.Background(), model.ServiceImport{})
	require.ErrorIs(t, err, errs.ErrInvalidValue)
	require.Equal(t, "domain_import", errs.Key(err))
}

func TestImportProfileAndAttach(t *testing.T) {
	rec := remotetest.New().Values(FuncImportProfile, map[string]string{"profile_id": "31"})
	h := New(rec)
	ctx := context.Background()

	pid, err := h.ImportProfile(ctx, 3, model.Profile{Type: model.ProfileIndividual, Email: "a@b.c"})
	require.NoError(t, err)
	require.Equal(t, int64(31), pid)
	p := rec.Last(FuncImportProfile).Params
	require.Equal(t, "owner", p["type"])
	require.Equal(t, "3", p["module"])
	require.Equal(t, "2", p["profiletype"])
	require.Equal(t, "a@b.c", p["email"])

	require.NoError(t, h.AttachProfile(ctx, 31, 900, model.RoleAdmin))
	require.Equal(t, map[string]string{"sok": "ok", "service_profile": "31", "item": "900", "type": "admin"},
		rec.Last(FuncAttachProfile).Params)

	_, err = New(remotetest.New()).ImportProfile(ctx, 3, model.Profile{Type: model.ProfileIndividual})
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}
