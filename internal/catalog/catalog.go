// Package catalog loads the registrar's offer catalog and selects offers for
// orders, renewals and imports.
package catalog

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/model"
)

// Registrar IDs of the production catalog.
const (
	DefaultPriorityRegistrar = 13 // Ardis
	DefaultNicRegistrar      = 5
)

// Options controls classification and ordering of offers.
type Options struct {
	PriorityRegistrar int
	NicRegistrar      int
	RussianZones      ZoneSet
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		PriorityRegistrar: DefaultPriorityRegistrar,
		NicRegistrar:      DefaultNicRegistrar,
		RussianZones:      DefaultRussianZones,
	}
}

// Catalog is the immutable set of offers indexed by TLD in canonical order.
type Catalog struct {
	byTLD      map[string][]model.PriceOffer
	registrars []int
}

// LoadFile reads the catalog from a JSON file.
func LoadFile(path string, opts Options, log *zap.Logger) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f, opts, log)
}

// Load parses the JSON offer array and builds the per-TLD index.
func Load(r io.Reader, opts Options, log *zap.Logger) (*Catalog, error) {
	var raw []rawOffer
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, errs.ErrInvalidValue) {
			return nil, err
		}
		return nil, errs.InvalidValue("json", err.Error())
	}

	offers := make([]model.PriceOffer, 0, len(raw))
	seen := map[int]struct{}{}
	for i := range raw {
		o, err := raw[i].offer(opts, log)
		if err != nil {
			return nil, fmt.Errorf("offer[%d]: %w", i, err)
		}
		seen[o.RegistrarID] = struct{}{}
		offers = append(offers, o)
	}

	slices.SortStableFunc(offers, func(a, b model.PriceOffer) int {
		return compareOffers(a, b, opts.PriorityRegistrar)
	})

	c := &Catalog{byTLD: map[string][]model.PriceOffer{}}
	for _, o := range offers {
		c.byTLD[o.TLD] = append(c.byTLD[o.TLD], o)
	}
	for id := range seen {
		c.registrars = append(c.registrars, id)
	}
	slices.Sort(c.registrars)
	return c, nil
}

// compareOffers is the canonical order: priority registrar first, then
// cheapest one-year price (unpriced last), then lowest offer ID.
func compareOffers(a, b model.PriceOffer, priority int) int {
	ap, bp := a.RegistrarID == priority, b.RegistrarID == priority
	if ap != bp {
		if ap {
			return -1
		}
		return 1
	}
	if a.HasOneYearPrice != b.HasOneYearPrice {
		if a.HasOneYearPrice {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.OneYearPrice, b.OneYearPrice); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Offers returns the TLD's offers in canonical order.
func (c *Catalog) Offers(tld string) ([]model.PriceOffer, error) {
	offers, ok := c.byTLD[tld]
	if !ok || len(offers) == 0 {
		return nil, errs.NotFound("tld", tld)
	}
	return offers, nil
}

// Registrars returns the sorted set of registrar IDs present in the catalog.
func (c *Catalog) Registrars() []int { return slices.Clone(c.registrars) }

// SelectForOrder picks the default offer for a new order.
func (c *Catalog) SelectForOrder(tld string, registrar int) (model.PriceOffer, error) {
	offers, err := c.Offers(tld)
	if err != nil {
		return model.PriceOffer{}, err
	}
	if registrar == model.AnyRegistrar {
		return offers[0], nil
	}
	for _, o := range offers {
		if o.RegistrarID == registrar {
			return o, nil
		}
	}
	return model.PriceOffer{}, errs.NotFound("registrar_offer", tld+"/"+strconv.Itoa(registrar))
}

// SelectForRenewal returns exactly the offer the domain was bought with.
func (c *Catalog) SelectForRenewal(tld string, offerID, registrar int) (model.PriceOffer, error) {
	offers, err := c.Offers(tld)
	if err != nil {
		return model.PriceOffer{}, err
	}
	for _, o := range offers {
		if o.ID != offerID {
			continue
		}
		if registrar == model.AnyRegistrar || o.RegistrarID == registrar {
			return o, nil
		}
	}
	return model.PriceOffer{}, errs.NotFound("offer", tld+"/"+strconv.Itoa(offerID))
}

// FindByRegistrar returns the first offer of the TLD sold through registrar.
func (c *Catalog) FindByRegistrar(tld string, registrar int) (model.PriceOffer, bool) {
	for _, o := range c.byTLD[tld] {
		if o.RegistrarID == registrar {
			return o, true
		}
	}
	return model.PriceOffer{}, false
}

// ContactRoles lists the contact types the TLD requires.
func (c *Catalog) ContactRoles(tld string) ([]model.ContactRole, error) {
	offers, err := c.Offers(tld)
	if err != nil {
		return nil, err
	}
	if offers[0].IsRussianZone {
		return []model.ContactRole{{Name: model.RoleOwner, Main: true}}, nil
	}
	return []model.ContactRole{
		{Name: model.RoleOwner},
		{Name: model.RoleAdmin},
		{Name: model.RoleTech},
		{Name: model.RoleBill},
	}, nil
}
