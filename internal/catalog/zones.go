package catalog

import "strings"

// DefaultRussianZones lists the zones registered with a single owner contact.
var DefaultRussianZones = ZoneSet{"ru", "su", "рф", "ru.net", "москва", "moscow"}

// ZoneSet is a fixed list of top-level zones.
type ZoneSet []string

// Contains reports exact membership.
func (z ZoneSet) Contains(tld string) bool {
	for _, zone := range z {
		if tld == zone {
			return true
		}
	}
	return false
}

// Covers reports whether tld is a zone of the set or a subzone of one ("msk.ru").
func (z ZoneSet) Covers(tld string) bool {
	for _, zone := range z {
		if tld == zone || strings.HasSuffix(tld, "."+zone) {
			return true
		}
	}
	return false
}
