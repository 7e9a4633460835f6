// Package model defines domain entities used by services and repositories.
package model

import (
	"fmt"
	"time"

	"github.com/and161185/rutld-connector/internal/errs"
)

// Item parameters managed by the connector on the local domain record.
const (
	ParamRemoteID    = "b4_remote_id"    // remote domain ID
	ParamRemotePrice = "b4_remote_price" // remote offer ID used at purchase time
)

// AnyRegistrar marks an account that is not pinned to a registrar.
const AnyRegistrar = -1

// PriceOffer is a purchasable (TLD, registrar) offer. Immutable once loaded.
type PriceOffer struct {
	TLD             string
	ID              int
	RegistrarID     int
	Name            string
	Priority        int         // informational only
	Periods         map[int]int // years -> remote period ID
	IsRussianZone   bool
	IsNicRegistrar  bool
	OneYearPrice    float64
	HasOneYearPrice bool
}

// PeriodID resolves a period length in years to the remote period ID.
func (o PriceOffer) PeriodID(years int) (int, error) {
	id, ok := o.Periods[years]
	if !ok {
		return 0, errs.InvalidPeriod("period", fmt.Sprintf("%d/%d", o.ID, years))
	}
	return id, nil
}

// Account holds the settings of one processing module (tenant).
type Account struct {
	ID        int64
	URL       string
	Username  string
	Password  string
	Registrar int // AnyRegistrar when unpinned
}

// Pinned reports whether the account only works with one registrar.
func (a Account) Pinned() bool { return a.Registrar != AnyRegistrar }

// DomainItem is the local domain record owned by the billing store.
type DomainItem struct {
	ID           int64
	AccountID    int64 // processing module
	PricelistID  int64
	PeriodMonths int
	ItemType     string // item type intname, e.g. "domain"
	Params       map[string]string
}

// Param returns an item parameter or "".
func (d DomainItem) Param(name string) string { return d.Params[name] }

// Domain returns the fully qualified domain name.
func (d DomainItem) Domain() string { return d.Params["domain"] }

// Nameservers returns the non-empty ns0..ns3 parameters in order.
func (d DomainItem) Nameservers() []string {
	var ns []string
	for _, key := range []string{"ns0", "ns1", "ns2", "ns3"} {
		if v := d.Params[key]; v != "" {
			ns = append(ns, v)
		}
	}
	return ns
}

// DomainStatus is the local service status code.
type DomainStatus int

// Local service statuses pushed to the billing host.
const (
	StatusDelegated    DomainStatus = 2
	StatusNotDelegated DomainStatus = 3
)

func (s DomainStatus) String() string {
	switch s {
	case StatusDelegated:
		return "delegated"
	case StatusNotDelegated:
		return "not delegated"
	default:
		return "unknown"
	}
}

// Remote domain status codes reported by the registrar listing.
const (
	RemoteStatusNone         = 0
	RemoteStatusDelegated    = 2
	RemoteStatusNotDelegated = 3
)

// RemoteDomainSnapshot is one element of the remote domain listing.
type RemoteDomainSnapshot struct {
	ID          string
	Name        string
	RegistrarID string
	Status      int // 0 when absent or unparsable
	Expire      string
}

// RemoteDomainDetails is the remote domain edit form: nameservers and role contacts.
type RemoteDomainDetails struct {
	Nameservers [4]string
	Contacts    map[string]string // role -> remote contact ID
}

// StatusUpdate is the normalized result of a sync, pushed to the billing host.
type StatusUpdate struct {
	Status DomainStatus
	Expire time.Time
}

// Contact roles.
const (
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
	RoleBill     = "bill"
	RoleTech     = "tech"
	RoleCustomer = "customer"
)

// ContactRole describes a contact type required for a TLD.
type ContactRole struct {
	Name string
	Main bool
}

// ContactKey addresses one remote counterpart of a local profile.
type ContactKey struct {
	AccountID int64
	ProfileID int64
	Generic   bool
}

// ServiceImport is the payload for creating an imported domain on the host.
type ServiceImport struct {
	AccountID   int64
	ItemType    string
	Domain      string
	PricelistID string
	Status      DomainStatus
	Expire      time.Time // zero when the remote date is unknown
	Nameservers [4]string
	RemoteID    string
	RemotePrice string // empty when no matching offer is known
}
