package model

import (
	"strconv"

	"github.com/and161185/rutld-connector/internal/errs"
)

// ProfileType is the billing system's profile type code.
type ProfileType int

// Profile types.
const (
	ProfileOrganization   ProfileType = 1
	ProfileIndividual     ProfileType = 2
	ProfileSoleProprietor ProfileType = 3
)

// Valid reports whether t is a known profile type.
func (t ProfileType) Valid() bool {
	return t == ProfileOrganization || t == ProfileIndividual || t == ProfileSoleProprietor
}

// Person reports whether the profile describes a natural person.
func (t ProfileType) Person() bool {
	return t == ProfileIndividual || t == ProfileSoleProprietor
}

// Address is a location or postal address block.
type Address struct {
	Country  string // local country ID
	State    string
	Postcode string
	City     string
	Street   string
}

// Profile is a local contact profile. Type selects which fields are meaningful.
type Profile struct {
	ID   int64
	Type ProfileType

	Email  string
	Phone  string
	Fax    string
	Mobile string

	Location        Address
	Postal          Address
	PostalAddressee string

	FirstName        string
	MiddleName       string
	LastName         string
	FirstNameLocale  string
	MiddleNameLocale string
	LastNameLocale   string
	Birthdate        string
	Passport         string
	PassportOrg      string
	PassportDate     string

	Company       string
	CompanyLocale string
	TaxID         string // inn
	TaxRegCode    string // kpp
	StateRegNum   string // ogrn
}

// ProfileFromParams decodes a profile from the billing system's flat parameters.
func ProfileFromParams(id int64, p map[string]string) (Profile, error) {
	t, err := strconv.Atoi(p["profiletype"])
	if err != nil || !ProfileType(t).Valid() {
		return Profile{}, errs.InvalidValue("profiletype", p["profiletype"])
	}
	return Profile{
		ID:               id,
		Type:             ProfileType(t),
		Email:            p["email"],
		Phone:            p["phone"],
		Fax:              p["fax"],
		Mobile:           p["mobile"],
		Location:         addressFromParams("location", p),
		Postal:           addressFromParams("postal", p),
		PostalAddressee:  p["postal_addressee"],
		FirstName:        p["firstname"],
		MiddleName:       p["middlename"],
		LastName:         p["lastname"],
		FirstNameLocale:  p["firstname_locale"],
		MiddleNameLocale: p["middlename_locale"],
		LastNameLocale:   p["lastname_locale"],
		Birthdate:        p["birthdate"],
		Passport:         p["passport"],
		PassportOrg:      p["passport_org"],
		PassportDate:     p["passport_date"],
		Company:          p["company"],
		CompanyLocale:    p["company_locale"],
		TaxID:            p["inn"],
		TaxRegCode:       p["kpp"],
		StateRegNum:      p["ogrn"],
	}, nil
}

// Params encodes the profile into the billing system's flat parameters.
// Empty fields are omitted.
func (p Profile) Params() map[string]string {
	out := map[string]string{"profiletype": strconv.Itoa(int(p.Type))}
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set("email", p.Email)
	set("phone", p.Phone)
	set("fax", p.Fax)
	set("mobile", p.Mobile)
	p.Location.params("location", set)
	p.Postal.params("postal", set)
	set("postal_addressee", p.PostalAddressee)
	set("firstname", p.FirstName)
	set("middlename", p.MiddleName)
	set("lastname", p.LastName)
	set("firstname_locale", p.FirstNameLocale)
	set("middlename_locale", p.MiddleNameLocale)
	set("lastname_locale", p.LastNameLocale)
	set("birthdate", p.Birthdate)
	set("passport", p.Passport)
	set("passport_org", p.PassportOrg)
	set("passport_date", p.PassportDate)
	set("company", p.Company)
	set("company_locale", p.CompanyLocale)
	set("inn", p.TaxID)
	set("kpp", p.TaxRegCode)
	set("ogrn", p.StateRegNum)
	return out
}

func addressFromParams(prefix string, p map[string]string) Address {
	return Address{
		Country:  p[prefix+"_country"],
		State:    p[prefix+"_state"],
		Postcode: p[prefix+"_postcode"],
		City:     p[prefix+"_city"],
		Street:   p[prefix+"_address"],
	}
}

func (a Address) params(prefix string, set func(k, v string)) {
	set(prefix+"_country", a.Country)
	set(prefix+"_state", a.State)
	set(prefix+"_postcode", a.Postcode)
	set(prefix+"_city", a.City)
	set(prefix+"_address", a.Street)
}
