// Package billing calls the local billing host to acknowledge lifecycle
// events and to create imported services and profiles.
package billing

import (
	"context"
	"strconv"
	"time"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/model"
	"github.com/and161185/rutld-connector/internal/remote"
)

// Host function names.
const (
	FuncPostProlong   = "service.postprolong"
	FuncPostSuspend   = "service.postsuspend"
	FuncPostResume    = "service.postresume"
	FuncPostClose     = "service.postclose"
	FuncSetStatus     = "service.setstatus"
	FuncSetExpireDate = "service.setexpiredate"
	FuncImportService = "processing.import.service"
	FuncImportProfile = "processing.import.profile"
	FuncAttachProfile = "service_profile2item.edit"
)

// Client issues host calls.
type Client struct{ c remote.Caller }

// New constructs a host client.
func New(c remote.Caller) *Client { return &Client{c: c} }

func id(v int64) string { return strconv.FormatInt(v, 10) }

func (h *Client) post(ctx context.Context, fn string, itemID int64) error {
	_, err := h.c.Call(ctx, fn, map[string]string{"sok": "ok", "elid": id(itemID)})
	return err
}

// OpenDone acknowledges a completed registration; intname is the item type.
func (h *Client) OpenDone(ctx context.Context, intname string, itemID int64) error {
	return h.post(ctx, intname+".open", itemID)
}

// PostProlong acknowledges a renewal.
func (h *Client) PostProlong(ctx context.Context, itemID int64) error {
	return h.post(ctx, FuncPostProlong, itemID)
}

// PostSuspend acknowledges a suspension.
func (h *Client) PostSuspend(ctx context.Context, itemID int64) error {
	return h.post(ctx, FuncPostSuspend, itemID)
}

// PostResume acknowledges a resume.
func (h *Client) PostResume(ctx context.Context, itemID int64) error {
	return h.post(ctx, FuncPostResume, itemID)
}

// PostClose acknowledges a close.
func (h *Client) PostClose(ctx context.Context, itemID int64) error {
	return h.post(ctx, FuncPostClose, itemID)
}

// SetStatus pushes the domain's service status.
func (h *Client) SetStatus(ctx context.Context, itemID int64, s model.DomainStatus) error {
	_, err := h.c.Call(ctx, FuncSetStatus, map[string]string{
		"elid":           id(itemID),
		"service_status": strconv.Itoa(int(s)),
	})
	return err
}

// SetExpireDate pushes the domain's expiry date.
func (h *Client) SetExpireDate(ctx context.Context, itemID int64, expire time.Time) error {
	_, err := h.c.Call(ctx, FuncSetExpireDate, map[string]string{
		"elid":       id(itemID),
		"expiredate": expire.Format(time.DateOnly),
	})
	return err
}

// ImportService creates a local service for a remote domain and returns its ID.
func (h *Client) ImportService(ctx context.Context, s model.ServiceImport) (int64, error) {
	p := map[string]string{
		"sok":                 "ok",
		"import_itemtype":     s.ItemType,
		"import_service_name": s.Domain,
		"domain":              s.Domain,
		"import_pricelist":    s.PricelistID,
		"status":              strconv.Itoa(int(s.Status)),
		"period":              "12",
		"module":              id(s.AccountID),
		model.ParamRemoteID:   s.RemoteID,
	}
	if !s.Expire.IsZero() {
		p["expiredate"] = s.Expire.Format(time.DateOnly)
	}
	for i, ns := range s.Nameservers {
		p["ns"+strconv.Itoa(i)] = ns
	}
	if s.RemotePrice != "" {
		p[model.ParamRemotePrice] = s.RemotePrice
	}
	resp, err := h.c.Call(ctx, FuncImportService, p)
	if err != nil {
		return 0, err
	}
	v := resp.Value("service_id")
	sid, err := strconv.ParseInt(v, 10, 64)
	if err != nil || sid == 0 {
		return 0, errs.InvalidValue("domain_import", v)
	}
	return sid, nil
}

// ImportProfile creates a local profile owned by the account's client and
// returns its ID.
func (h *Client) ImportProfile(ctx context.Context, accountID int64, p model.Profile) (int64, error) {
	params := p.Params()
	params["sok"] = "ok"
	params["type"] = model.RoleOwner
	params["module"] = id(accountID)
	resp, err := h.c.Call(ctx, FuncImportProfile, params)
	if err != nil {
		return 0, err
	}
	v := resp.Value("profile_id")
	pid, err := strconv.ParseInt(v, 10, 64)
	if err != nil || pid == 0 {
		return 0, errs.InvalidValue("profile_import", v)
	}
	return pid, nil
}

// AttachProfile links a profile to a service under role.
func (h *Client) AttachProfile(ctx context.Context, profileID, itemID int64, role string) error {
	_, err := h.c.Call(ctx, FuncAttachProfile, map[string]string{
		"sok":             "ok",
		"service_profile": id(profileID),
		"item":            id(itemID),
		"type":            role,
	})
	return err
}
