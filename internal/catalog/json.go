package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/model"
)

// jsonInt accepts a JSON number or a string holding an exact integer.
type jsonInt int

func (n *jsonInt) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return errs.InvalidValue("json_int", string(b))
		}
		v, err := strconv.Atoi(s)
		if err != nil || strconv.Itoa(v) != s {
			return errs.InvalidValue("json_string_not_an_int", s)
		}
		*n = jsonInt(v)
		return nil
	}
	v, err := strconv.Atoi(string(bytes.TrimSpace(b)))
	if err != nil {
		return errs.InvalidValue("json_bad_int_type", string(b))
	}
	*n = jsonInt(v)
	return nil
}

type rawPeriod struct {
	PerType string   `json:"per_type"`
	Length  *jsonInt `json:"p_length"`
	ID      *jsonInt `json:"id"`
	Price   *string  `json:"price_num"`
}

type rawOffer struct {
	TLD         *string      `json:"tld"`
	ID          *jsonInt     `json:"id"`
	RegistrarID *jsonInt     `json:"registrar_id"`
	Name        *string      `json:"name"`
	Priority    *jsonInt     `json:"priority"`
	Period      *[]rawPeriod `json:"period"`
}

func (r *rawOffer) offer(opts Options, log *zap.Logger) (model.PriceOffer, error) {
	switch {
	case r.TLD == nil:
		return model.PriceOffer{}, errs.Missing("tld")
	case r.ID == nil:
		return model.PriceOffer{}, errs.Missing("id")
	case r.RegistrarID == nil:
		return model.PriceOffer{}, errs.Missing("registrar_id")
	case r.Name == nil:
		return model.PriceOffer{}, errs.Missing("name")
	case r.Priority == nil:
		return model.PriceOffer{}, errs.Missing("priority")
	case r.Period == nil:
		return model.PriceOffer{}, errs.Missing("period")
	}

	o := model.PriceOffer{
		TLD:         *r.TLD,
		ID:          int(*r.ID),
		RegistrarID: int(*r.RegistrarID),
		Name:        *r.Name,
		Priority:    int(*r.Priority),
		Periods:     map[int]int{},
	}
	for _, p := range *r.Period {
		if p.PerType != "year" {
			log.Warn("skipping period type", zap.String("per_type", p.PerType), zap.Int("price", o.ID))
			continue
		}
		if p.Length == nil {
			return model.PriceOffer{}, errs.Missing("p_length")
		}
		if p.ID == nil {
			return model.PriceOffer{}, errs.Missing("id")
		}
		if _, dup := o.Periods[int(*p.Length)]; dup {
			return model.PriceOffer{}, errs.Conflict("p_length", strconv.Itoa(o.ID)+"/"+strconv.Itoa(int(*p.Length)))
		}
		o.Periods[int(*p.Length)] = int(*p.ID)
		if *p.Length == 1 {
			if p.Price == nil {
				return model.PriceOffer{}, errs.Missing("price_num")
			}
			price, err := strconv.ParseFloat(*p.Price, 64)
			if err != nil {
				return model.PriceOffer{}, errs.InvalidValue("price_num", *p.Price)
			}
			o.OneYearPrice, o.HasOneYearPrice = price, true
		}
	}
	o.IsNicRegistrar = o.RegistrarID == opts.NicRegistrar
	o.IsRussianZone = opts.RussianZones.Covers(o.TLD)
	return o, nil
}
