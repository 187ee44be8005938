// Package zone loads the canonical zone registry and resolves
// free-text zone names against it.
//
// The registry is a static JSON resource produced from the urbanism
// PDFs: one entry per district with its boundary polygon, notes, and
// planning coefficients (POT, CUT, frontage). It is read once at
// startup and is read-only afterwards.
package zone

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Zone is one canonical registry entry.
type Zone struct {
	Name     string      `json:"zone"`
	Boundary [][]float64 `json:"delimitare,omitempty"`
	Notes    string      `json:"obiectii,omitempty"`
	PDF      string      `json:"pdf,omitempty"`
	POT      string      `json:"pot"`
	CUT      string      `json:"cut"`
	Frontage string      `json:"deschidere,omitempty"`
}

// Registry is an ordered, read-only collection of zones. Order
// matters: resolution ties break in favor of the earlier entry.
type Registry struct {
	zones []Zone
}

// NewRegistry builds a registry from a fixed slice of zones.
func NewRegistry(zones []Zone) *Registry {
	return &Registry{zones: zones}
}

// Load reads the registry JSON from disk. A missing or corrupt file is
// surfaced as an error so the caller can decide; use LoadOrEmpty at
// startup where resolution should degrade instead of failing.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zone registry %s: %w", path, err)
	}

	var zones []Zone
	if err := json.Unmarshal(data, &zones); err != nil {
		return nil, fmt.Errorf("parse zone registry %s: %w", path, err)
	}
	return NewRegistry(zones), nil
}

// LoadOrEmpty loads the registry, degrading to an empty one (every
// lookup misses) when the file is missing or corrupt. The resolver
// stays usable either way.
func LoadOrEmpty(path string) *Registry {
	reg, err := Load(path)
	if err != nil {
		slog.Warn("zone registry unavailable, resolving against empty registry",
			"path", path,
			"error", err,
		)
		return NewRegistry(nil)
	}
	slog.Info("zone registry loaded", "path", path, "zones", reg.Len())
	return reg
}

// Len returns the number of registry entries.
func (r *Registry) Len() int { return len(r.zones) }

// Zones returns the entries in registry order. Callers must not
// mutate the returned slice.
func (r *Registry) Zones() []Zone { return r.zones }
