// Package contact maps local profiles to remote registrar contacts and keeps
// the two linked exactly once per account and contact shape.
package contact

import (
	"context"
	"strconv"
	"strings"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/model"
	"github.com/and161185/rutld-connector/internal/registrar"
)

// companyNone is what the generic shape carries for a plain individual.
const companyNone = "N/A"

var phoneCleaner = strings.NewReplacer("-", "", "(", "", ")", "")

// Countries translates country IDs between local and remote numbering.
type Countries interface {
	ToRemote(ctx context.Context, localID string) (string, error)
	ToLocal(ctx context.Context, remoteID string) (string, error)
}

// RemoteContact is a contact ready to be created on the registrar.
type RemoteContact struct {
	Type   string // generic, person or company
	Name   string
	Fields map[string]string
}

// Mapper converts between local profiles and remote contact fields.
type Mapper struct{ countries Countries }

// NewMapper constructs a mapper.
func NewMapper(c Countries) *Mapper { return &Mapper{countries: c} }

// RemoteType picks the remote contact type for a profile and shape.
func RemoteType(generic bool, t model.ProfileType) string {
	switch {
	case generic:
		return registrar.ContactGeneric
	case t.Person():
		return registrar.ContactPerson
	default:
		return registrar.ContactCompany
	}
}

// DisplayName is the name a new remote contact is created with.
func DisplayName(profileID int64, generic bool) string {
	name := "Remote " + strconv.FormatInt(profileID, 10)
	if generic {
		name += " (generic)"
	}
	return name
}

// ToRemote produces the edit form of a remote contact for profile p.
func (m *Mapper) ToRemote(ctx context.Context, generic bool, p model.Profile) (RemoteContact, error) {
	if !p.Type.Valid() {
		return RemoteContact{}, errs.InvalidValue("profiletype", strconv.Itoa(int(p.Type)))
	}
	rc := RemoteContact{
		Type: RemoteType(generic, p.Type),
		Name: DisplayName(p.ID, generic),
	}
	f := map[string]string{
		"name":  rc.Name,
		"ctype": rc.Type,
		"email": p.Email,
		"phone": phoneCleaner.Replace(p.Phone),
		"fax":   phoneCleaner.Replace(p.Fax),
	}
	if err := m.addressToRemote(ctx, "la", p.Location, f); err != nil {
		return RemoteContact{}, err
	}

	if !generic {
		if err := m.addressToRemote(ctx, "pa", p.Postal, f); err != nil {
			return RemoteContact{}, err
		}
		f["pa_addressee"] = p.PostalAddressee
		mobile := p.Mobile
		if mobile == "" {
			mobile = p.Phone
		}
		f["mobile"] = phoneCleaner.Replace(mobile)
	}

	switch rc.Type {
	case registrar.ContactPerson:
		f["firstname_ru"] = p.FirstNameLocale
		f["middlename_ru"] = p.MiddleNameLocale
		f["lastname_ru"] = p.LastNameLocale
		f["firstname"] = p.FirstName
		f["middlename"] = p.MiddleName
		f["lastname"] = p.LastName
		if p.Type == model.ProfileSoleProprietor {
			f["inn"] = p.TaxID
		}
		f["birthdate"] = p.Birthdate
		f["passport_series"] = p.Passport
		f["passport_org"] = p.PassportOrg
		f["passport_date"] = p.PassportDate
	case registrar.ContactCompany:
		f["company"] = p.Company
		f["company_ru"] = p.CompanyLocale
		f["inn"] = p.TaxID
		f["kpp"] = p.TaxRegCode
		f["ogrn"] = p.StateRegNum
	default:
		switch p.Type {
		case model.ProfileIndividual:
			f["company"] = companyNone
		case model.ProfileSoleProprietor:
			f["company"] = "IP " + p.FirstName + " " + p.LastName
		default:
			f["company"] = p.Company
		}
		f["firstname"] = p.FirstName
		f["lastname"] = p.LastName
	}
	rc.Fields = f
	return rc, nil
}

// ToLocal builds a local profile from a remote contact's fields. The
// profile has no ID yet; generic reports the contact's shape.
func (m *Mapper) ToLocal(ctx context.Context, f map[string]string) (p model.Profile, generic bool, err error) {
	ctype := f["ctype"]
	switch ctype {
	case registrar.ContactGeneric, registrar.ContactPerson, registrar.ContactCompany:
	default:
		return model.Profile{}, false, errs.InvalidValue("ctype", ctype)
	}
	generic = ctype == registrar.ContactGeneric

	p.Email = f["email"]
	p.Phone = f["phone"]
	p.Fax = f["fax"]
	if p.Location, err = m.addressToLocal(ctx, "la", f); err != nil {
		return model.Profile{}, false, err
	}

	if !generic {
		if p.Postal, err = m.addressToLocal(ctx, "pa", f); err != nil {
			return model.Profile{}, false, err
		}
		p.PostalAddressee = f["pa_addressee"]
		p.Mobile = f["mobile"]
	}

	switch ctype {
	case registrar.ContactPerson:
		p.FirstNameLocale = f["firstname_ru"]
		p.MiddleNameLocale = f["middlename_ru"]
		p.LastNameLocale = f["lastname_ru"]
		p.FirstName = f["firstname"]
		p.MiddleName = f["middlename"]
		p.LastName = f["lastname"]
		if inn := f["inn"]; inn != "" {
			p.Type = model.ProfileSoleProprietor
			p.TaxID = inn
		} else {
			p.Type = model.ProfileIndividual
		}
		p.Birthdate = f["birthdate"]
		p.Passport = f["passport_series"]
		p.PassportOrg = f["passport_org"]
		p.PassportDate = f["passport_date"]
	case registrar.ContactCompany:
		p.Type = model.ProfileOrganization
		p.Company = f["company"]
		p.CompanyLocale = f["company_ru"]
		p.TaxID = f["inn"]
		p.TaxRegCode = f["kpp"]
		p.StateRegNum = f["ogrn"]
	default:
		if c := f["company"]; c == "" || c == companyNone {
			p.Type = model.ProfileIndividual
		} else {
			p.Type = model.ProfileOrganization
			p.Company = c
		}
		p.FirstName = f["firstname"]
		p.LastName = f["lastname"]
	}
	return p, generic, nil
}

func (m *Mapper) addressToRemote(ctx context.Context, prefix string, a model.Address, f map[string]string) error {
	country, err := m.countries.ToRemote(ctx, a.Country)
	if err != nil {
		return err
	}
	f[prefix+"_country"] = country
	f[prefix+"_state"] = a.State
	f[prefix+"_postcode"] = a.Postcode
	f[prefix+"_city"] = a.City
	f[prefix+"_address"] = a.Street
	return nil
}

func (m *Mapper) addressToLocal(ctx context.Context, prefix string, f map[string]string) (model.Address, error) {
	country, err := m.countries.ToLocal(ctx, f[prefix+"_country"])
	if err != nil {
		return model.Address{}, err
	}
	return model.Address{
		Country:  country,
		State:    f[prefix+"_state"],
		Postcode: f[prefix+"_postcode"],
		City:     f[prefix+"_city"],
		Street:   f[prefix+"_address"],
	}, nil
}
