// Package registrar wraps the registrar's billing panel functions in typed calls.
package registrar

import (
	"context"
	"strconv"
	"strings"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/model"
	"github.com/and161185/rutld-connector/internal/remote"
)

// Remote function names.
const (
	FuncAccountInfo   = "accountinfo"
	FuncContactCreate = "contcat.create.1"
	FuncContactEdit   = "domaincontact.edit"
	FuncDomainOrder   = "domain.order.4"
	FuncDomainRenew   = "domain.renew"
	FuncDomainList    = "domain"
	FuncDomainEdit    = "domain.edit"
)

// Remote contact types.
const (
	ContactGeneric = "generic"
	ContactPerson  = "person"
	ContactCompany = "company"
)

// Client issues registrar calls for one account.
type Client struct {
	c       remote.Caller
	project string
}

// New constructs a client; project selects the registrar account used to pay.
func New(c remote.Caller, project string) *Client {
	return &Client{c: c, project: project}
}

// call issues fn and turns an error reply into an error. The panel reports
// some failures in the reply body instead of a fault.
func (c *Client) call(ctx context.Context, fn string, p map[string]string) (*remote.Response, error) {
	resp, err := c.c.Call(ctx, fn, p)
	if err != nil {
		return nil, err
	}
	for _, key := range []string{"error.msg", "error"} {
		if msg, found := resp.Lookup(key); found {
			return nil, errs.InvalidValue("remote_error", fn+": "+msg)
		}
	}
	return resp, nil
}

func ok(p map[string]string) map[string]string {
	p["sok"] = "ok"
	return p
}

// AccountID returns the ID of the remote account for the configured project.
func (c *Client) AccountID(ctx context.Context) (string, error) {
	resp, err := c.call(ctx, FuncAccountInfo, map[string]string{})
	if err != nil {
		return "", err
	}
	for _, e := range resp.Elems {
		if e["project"] == c.project && e["id"] != "" {
			return e["id"], nil
		}
	}
	return "", errs.Missing("account_for_project")
}

// CreateContact creates an empty remote contact and returns its ID.
func (c *Client) CreateContact(ctx context.Context, ctype, name string) (string, error) {
	resp, err := c.call(ctx, FuncContactCreate, ok(map[string]string{
		"ctype": ctype,
		"cname": name,
	}))
	if err != nil {
		return "", err
	}
	id, found := resp.Lookup("domaincontact.id")
	if !found {
		return "", errs.Missing("domaincontact.id")
	}
	return id, nil
}

// EditContact stores fields on a remote contact.
func (c *Client) EditContact(ctx context.Context, id string, fields map[string]string) error {
	p := make(map[string]string, len(fields)+2)
	for k, v := range fields {
		p[k] = v
	}
	p["elid"] = id
	_, err := c.call(ctx, FuncContactEdit, ok(p))
	return err
}

// GetContact reads a remote contact's fields.
func (c *Client) GetContact(ctx context.Context, id string) (map[string]string, error) {
	resp, err := c.call(ctx, FuncContactEdit, map[string]string{"elid": id})
	if err != nil {
		return nil, err
	}
	if len(resp.Values) == 0 {
		return nil, errs.NotFound("remote_contact", id)
	}
	return resp.Values, nil
}

// Order is a domain registration request.
type Order struct {
	Name        string // domain without the TLD
	Offer       model.PriceOffer
	PeriodID    int
	AccountID   string
	Contacts    map[string]string // role -> remote contact ID
	Nameservers []string
}

// OrderDomain places and pays a registration order; returns the remote domain ID.
func (c *Client) OrderDomain(ctx context.Context, o Order) (string, error) {
	offer := strconv.Itoa(o.Offer.ID)
	p := ok(map[string]string{
		"paynow":       "on",
		"countdomain":  "1",
		"operation":    "register",
		"domain":       o.Name,
		"domainname_0": o.Name,
		"tld":          o.Offer.TLD,
		"price":        offer,
		"pricelist_0":  offer,
		"period_0":     strconv.Itoa(o.PeriodID),
		"registrar":    strconv.Itoa(o.Offer.RegistrarID),
		"payfrom":      "account" + o.AccountID,
		"nslist_0":     strings.Join(o.Nameservers, " "),
	})
	for role, id := range o.Contacts {
		p[role] = id
	}
	resp, err := c.call(ctx, FuncDomainOrder, p)
	if err != nil {
		return "", err
	}
	id, found := resp.Lookup("item.id")
	if !found {
		return "", errs.Missing("item.id")
	}
	return id, nil
}

// RenewDomain prolongs a domain for the given remote period.
func (c *Client) RenewDomain(ctx context.Context, remoteID, accountID string, periodID int) error {
	_, err := c.call(ctx, FuncDomainRenew, ok(map[string]string{
		"elid":       remoteID,
		"paynow":     "on",
		"payfrom":    "account" + accountID,
		"autoperiod": strconv.Itoa(periodID),
	}))
	return err
}

// ListDomains returns the account's remote domains.
func (c *Client) ListDomains(ctx context.Context) ([]model.RemoteDomainSnapshot, error) {
	resp, err := c.call(ctx, FuncDomainList, map[string]string{"api": "on"})
	if err != nil {
		return nil, err
	}
	out := make([]model.RemoteDomainSnapshot, 0, len(resp.Elems))
	for _, e := range resp.Elems {
		status, err := strconv.Atoi(e["domainstatus"])
		if err != nil {
			status = model.RemoteStatusNone
		}
		out = append(out, model.RemoteDomainSnapshot{
			ID:          e["id"],
			Name:        e["name"],
			RegistrarID: e["registrarId"],
			Status:      status,
			Expire:      e["expire"],
		})
	}
	return out, nil
}

// FindDomain returns the listing entry with the given remote ID.
func (c *Client) FindDomain(ctx context.Context, remoteID string) (model.RemoteDomainSnapshot, bool, error) {
	list, err := c.ListDomains(ctx)
	if err != nil {
		return model.RemoteDomainSnapshot{}, false, err
	}
	for _, d := range list {
		if d.ID == remoteID {
			return d, true, nil
		}
	}
	return model.RemoteDomainSnapshot{}, false, nil
}

// DomainDetails reads nameservers and role contacts of a remote domain.
func (c *Client) DomainDetails(ctx context.Context, remoteID string) (model.RemoteDomainDetails, error) {
	resp, err := c.call(ctx, FuncDomainEdit, map[string]string{"elid": remoteID})
	if err != nil {
		return model.RemoteDomainDetails{}, err
	}
	var d model.RemoteDomainDetails
	for i := range d.Nameservers {
		d.Nameservers[i] = resp.Value("ns" + strconv.Itoa(i))
	}
	d.Contacts = map[string]string{}
	for _, role := range []string{model.RoleOwner, model.RoleAdmin, model.RoleBill, model.RoleTech} {
		if v, found := resp.Lookup(role); found {
			d.Contacts[role] = v
		}
	}
	return d, nil
}

// UpdateNS replaces the domain's nameservers. The remote form numbers them from 1.
func (c *Client) UpdateNS(ctx context.Context, remoteID string, ns []string) error {
	p := ok(map[string]string{"elid": remoteID, "changens": "on"})
	for i, n := range ns {
		p["ns"+strconv.Itoa(i+1)] = n
	}
	_, err := c.call(ctx, FuncDomainEdit, p)
	return err
}
