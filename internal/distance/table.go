// Package distance resolves port-to-port sailing distances for the
// optimizer. Lookups that miss the table fall back to a default distance and
// are tagged so the report can surface the provenance of every leg.
package distance

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FallbackNm is used when a port pair has no table entry.
const FallbackNm = 3000

// Provider resolves the sailing distance in nautical miles between two
// ports. exact reports whether the value came from the table.
type Provider interface {
	Distance(from, to string) (nm float64, exact bool)
}

// Entry is one row of a distance table file.
type Entry struct {
	From string  `yaml:"from"`
	To   string  `yaml:"to"`
	Nm   float64 `yaml:"nm"`
}

// Table is an in-memory symmetric port-distance matrix with canonicalized
// port names.
type Table struct {
	entries map[string]float64
}

// NewTable builds a table from entries. Later duplicates win.
func NewTable(entries []Entry) *Table {
	t := &Table{entries: make(map[string]float64, len(entries))}
	for _, e := range entries {
		t.entries[pairKey(e.From, e.To)] = e.Nm
	}
	return t
}

// Load reads a YAML distance table file: a list of {from, to, nm} rows.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("distance table: read %s: %w", path, err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("distance table: parse %s: %w", path, err)
	}
	for _, e := range entries {
		if strings.TrimSpace(e.From) == "" || strings.TrimSpace(e.To) == "" || e.Nm < 0 {
			return nil, fmt.Errorf("distance table: invalid entry %q -> %q (%v nm)", e.From, e.To, e.Nm)
		}
	}
	return NewTable(entries), nil
}

// Distance implements Provider. Identical ports are zero at table accuracy;
// unknown pairs return the fallback with exact=false.
func (t *Table) Distance(from, to string) (float64, bool) {
	if canonical(from) == canonical(to) {
		return 0, true
	}
	if nm, ok := t.entries[pairKey(from, to)]; ok {
		return nm, true
	}
	return FallbackNm, false
}

// canonical normalizes a port name for keying: trimmed, upper-cased,
// inner whitespace collapsed.
func canonical(port string) string {
	return strings.ToUpper(strings.Join(strings.Fields(port), " "))
}

// pairKey is direction-independent: sailing distance is symmetric.
func pairKey(a, b string) string {
	ca, cb := canonical(a), canonical(b)
	if ca > cb {
		ca, cb = cb, ca
	}
	return ca + "|" + cb
}

// Default is a small built-in table of major dry-bulk routes, used when no
// table file is configured.
func Default() *Table {
	return NewTable([]Entry{
		{From: "Santos", To: "Qingdao", Nm: 11000},
		{From: "Santos", To: "Rotterdam", Nm: 5100},
		{From: "Tubarao", To: "Qingdao", Nm: 11100},
		{From: "Tubarao", To: "Rotterdam", Nm: 5000},
		{From: "Port Hedland", To: "Qingdao", Nm: 3600},
		{From: "Richards Bay", To: "Rotterdam", Nm: 6900},
		{From: "Richards Bay", To: "Mundra", Nm: 4200},
		{From: "New Orleans", To: "Qingdao", Nm: 10500},
		{From: "New Orleans", To: "Rotterdam", Nm: 5000},
		{From: "Newcastle", To: "Qingdao", Nm: 4400},
	})
}
