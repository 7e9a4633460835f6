// Package country translates jurisdiction identifiers between the billing
// store and the remote registrar.
package country

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/and161185/rutld-connector/internal/errs"
)

// Table is the immutable ISO2 <-> remote country ID mapping.
type Table struct {
	toRemote map[string]string
	toISO2   map[string]string
}

type rawTable struct {
	Elem []struct {
		ISO2 string          `json:"iso2"`
		ID   json.RawMessage `json:"id"`
	} `json:"elem"`
}

// LoadTableFile reads the country table from a JSON file.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open countries: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}

// LoadTable parses {"elem":[{"iso2":"RU","id":"182"}, ...]}.
func LoadTable(r io.Reader) (*Table, error) {
	var raw rawTable
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errs.InvalidValue("json", err.Error())
	}
	t := &Table{
		toRemote: make(map[string]string, len(raw.Elem)),
		toISO2:   make(map[string]string, len(raw.Elem)),
	}
	for i, e := range raw.Elem {
		iso := strings.ToUpper(strings.TrimSpace(e.ISO2))
		id := strings.Trim(strings.TrimSpace(string(e.ID)), `"`)
		if iso == "" {
			return nil, fmt.Errorf("elem[%d]: %w", i, errs.Missing("iso2"))
		}
		if id == "" || id == "null" {
			return nil, fmt.Errorf("elem[%d]: %w", i, errs.Missing("id"))
		}
		if _, dup := t.toRemote[iso]; dup {
			return nil, fmt.Errorf("elem[%d]: %w", i, errs.Conflict("iso2", iso))
		}
		if _, dup := t.toISO2[id]; dup {
			return nil, fmt.Errorf("elem[%d]: %w", i, errs.Conflict("country_id", id))
		}
		t.toRemote[iso] = id
		t.toISO2[id] = iso
	}
	return t, nil
}

// RemoteID returns the remote country ID for an ISO2 code.
func (t *Table) RemoteID(iso2 string) (string, error) {
	id, ok := t.toRemote[strings.ToUpper(iso2)]
	if !ok {
		return "", errs.NotFound("iso2", iso2)
	}
	return id, nil
}

// ISO2 returns the ISO2 code for a remote country ID.
func (t *Table) ISO2(remoteID string) (string, error) {
	iso, ok := t.toISO2[remoteID]
	if !ok {
		return "", errs.NotFound("country_id", remoteID)
	}
	return iso, nil
}

// Len returns the number of known countries.
func (t *Table) Len() int { return len(t.toRemote) }
