package models

import "strings"

// Station binds a workshop name to its ledger table.
type Station struct {
	Name  string
	Table string
}

// PseudoStationOutsourcing labels items that are currently at an external
// vendor. It is synthesized at query time and has no ledger table.
const PseudoStationOutsourcing = "Outsourcing"

// StationRegistry is the fixed, ordered set of workshop stations built once
// at startup. Scans iterate it in declaration order.
type StationRegistry struct {
	stations []Station
	byName   map[string]Station
}

// NewStationRegistry materializes stations from the configured display names.
func NewStationRegistry(names []string) *StationRegistry {
	reg := &StationRegistry{byName: make(map[string]Station, len(names))}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, exists := reg.byName[name]; exists {
			continue
		}
		st := Station{Name: name, Table: StationTableName(name)}
		reg.stations = append(reg.stations, st)
		reg.byName[name] = st
	}
	return reg
}

// Stations returns all stations in registry order.
func (r *StationRegistry) Stations() []Station {
	return r.stations
}

// Lookup resolves a station by its display name.
func (r *StationRegistry) Lookup(name string) (Station, bool) {
	st, ok := r.byName[strings.TrimSpace(name)]
	return st, ok
}

// Names returns the display names in registry order.
func (r *StationRegistry) Names() []string {
	names := make([]string, 0, len(r.stations))
	for _, st := range r.stations {
		names = append(names, st.Name)
	}
	return names
}

// StationTableName derives the ledger table identifier for a station name.
// Table names come from configuration only, never from user input.
func StationTableName(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = strings.ReplaceAll(slug, "-", "_")
	return "station_" + slug
}
