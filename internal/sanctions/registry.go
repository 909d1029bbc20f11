// Package sanctions provides the static sanctioned-address registry.
// The dataset is embedded at build time and loaded once; lookups are
// exact-match against the normalized lowercase address.
package sanctions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"chainguard/internal/domain"
	"chainguard/internal/ethaddr"
)

//go:embed dataset/sanctioned.json
var datasetJSON []byte

// Registry is an immutable in-memory index of sanctions entries.
type Registry struct {
	byAddress map[string]*domain.SanctionsEntry
	entries   []*domain.SanctionsEntry
	skipped   int // rows dropped at load time for invalid addresses
}

// Load builds the registry from the embedded dataset.
func Load() (*Registry, error) {
	return loadFrom(datasetJSON)
}

func loadFrom(data []byte) (*Registry, error) {
	var rows []domain.SanctionsEntry
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode sanctions dataset: %w", err)
	}

	// Malformed upstream rows are dropped here. The dataset build step
	// is outside this service; validate at the boundary and keep going.
	return NewFromEntries(rows), nil
}

// NewFromEntries builds a registry from an in-memory entry list.
// Rows with invalid addresses are skipped, same as Load.
func NewFromEntries(entries []domain.SanctionsEntry) *Registry {
	r := &Registry{byAddress: make(map[string]*domain.SanctionsEntry, len(entries))}
	for i := range entries {
		entry := entries[i]
		addr, err := ethaddr.Normalize(entry.Address)
		if err != nil {
			r.skipped++
			continue
		}
		entry.Address = addr
		r.byAddress[addr] = &entry
		r.entries = append(r.entries, &entry)
	}
	return r
}

// Lookup returns the entry for the given address, or nil on no hit.
// Case normalization happens here; partial matches never match.
func (r *Registry) Lookup(address string) *domain.SanctionsEntry {
	addr, err := ethaddr.Normalize(address)
	if err != nil {
		return nil
	}
	return r.byAddress[addr]
}

// Size returns the number of loaded entries.
func (r *Registry) Size() int {
	return len(r.entries)
}

// ByType returns all entries of the given address type.
func (r *Registry) ByType(t domain.AddressType) []*domain.SanctionsEntry {
	var out []*domain.SanctionsEntry
	for _, e := range r.entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// BySource returns all entries whose source authority contains the query
// (case-insensitive substring, matching the original dataset tooling).
func (r *Registry) BySource(source string) []*domain.SanctionsEntry {
	q := strings.ToLower(source)
	var out []*domain.SanctionsEntry
	for _, e := range r.entries {
		if strings.Contains(strings.ToLower(e.Source), q) {
			out = append(out, e)
		}
	}
	return out
}

// Search returns entries whose name, reason, or tags contain the query.
func (r *Registry) Search(query string) []*domain.SanctionsEntry {
	q := strings.ToLower(query)
	var out []*domain.SanctionsEntry
	for _, e := range r.entries {
		if strings.Contains(strings.ToLower(e.Name), q) ||
			strings.Contains(strings.ToLower(e.Reason), q) {
			out = append(out, e)
			continue
		}
		for _, tag := range e.Tags {
			if strings.Contains(tag, q) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Stats summarizes the registry contents.
type Stats struct {
	Total      int            `json:"total"`
	Skipped    int            `json:"skipped"`
	ByType     map[string]int `json:"byType"`
	BySeverity map[string]int `json:"bySeverity"`
	BySource   map[string]int `json:"bySource"`
}

// Stats returns counts by type, severity, and source.
func (r *Registry) Stats() Stats {
	s := Stats{
		Total:      len(r.entries),
		Skipped:    r.skipped,
		ByType:     make(map[string]int),
		BySeverity: make(map[string]int),
		BySource:   make(map[string]int),
	}
	for _, e := range r.entries {
		s.ByType[string(e.Type)]++
		s.BySeverity[string(e.Severity)]++
		s.BySource[e.Source]++
	}
	return s
}
