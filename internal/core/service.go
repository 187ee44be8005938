package core

// service.go orchestrates the pipeline: read source file → normalize
// → resolve zones → enrich batch → admin collection. It also fronts
// the store's transitions so the web layer talks to one object.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/imm-a8ub/backoffice/internal/enrich"
	"github.com/imm-a8ub/backoffice/internal/ingest"
	"github.com/imm-a8ub/backoffice/internal/listing"
	"github.com/imm-a8ub/backoffice/internal/zone"
)

// Service wires the store, zone registry, and enricher together.
type Service struct {
	store    *Store
	registry *zone.Registry
	enricher *enrich.Enricher
	audit    *AuditTrail

	// listingsPath is the admin backing file; deletes from admin
	// rewrite it. Empty disables the rewrite.
	listingsPath string

	// validationSeedPath lazily seeds the validation collection on
	// first read when it is empty. Empty disables seeding.
	validationSeedPath string
}

// ServiceConfig carries the optional backing file locations.
type ServiceConfig struct {
	ListingsPath       string
	ValidationSeedPath string
}

// NewService creates the service. The registry and enricher must be
// non-nil; use an empty registry and a providerless enricher when the
// collaborators are unavailable.
func NewService(store *Store, registry *zone.Registry, enricher *enrich.Enricher, cfg ServiceConfig) *Service {
	return &Service{
		store:              store,
		registry:           registry,
		enricher:           enricher,
		audit:              NewAuditTrail(0),
		listingsPath:       cfg.ListingsPath,
		validationSeedPath: cfg.ValidationSeedPath,
	}
}

// Store exposes the underlying store for tests and setup code.
func (s *Service) Store() *Store { return s.store }

// Audit exposes the workflow audit trail.
func (s *Service) Audit() *AuditTrail { return s.audit }

// IngestFile runs the full pipeline on a source file and returns how
// many listings entered the admin collection. Row-level problems
// degrade in place; only the file I/O boundary can fail.
func (s *Service) IngestFile(ctx context.Context, path string) (int, error) {
	rows, err := ingest.ReadFile(path)
	if err != nil {
		return 0, &SourceError{Path: path, Err: err}
	}
	return s.IngestRows(ctx, rows), nil
}

// IngestRows normalizes, resolves, and enriches raw rows, then moves
// them into the admin collection.
func (s *Service) IngestRows(ctx context.Context, rows []ingest.Row) int {
	start := time.Now()

	items := ingest.NormalizeAll(rows)
	for i := range items {
		if z, ok := s.registry.Resolve(items[i].Zone); ok {
			items[i].ResolvedZone = z.Name
		}
	}

	items = s.enricher.EnrichBatch(ctx, items)
	added := s.store.Ingest(items)
	s.audit.Record(ActionIngest, "system", "", fmt.Sprintf("%d of %d rows", added, len(rows)))

	slog.Info("ingest complete",
		"rows", len(rows),
		"added", added,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return added
}

// ResolveZone resolves a free-text zone name against the registry.
func (s *Service) ResolveZone(name string) (zone.Zone, bool) {
	return s.registry.Resolve(name)
}

// Zones returns the full registry for map rendering.
func (s *Service) Zones() []zone.Zone {
	return s.registry.Zones()
}

// AdminData returns the admin collection.
func (s *Service) AdminData() []listing.Listing {
	return s.store.Admin()
}

// EmployeeData returns the employee collection.
func (s *Service) EmployeeData() []listing.Listing {
	return s.store.Employee()
}

// ValidationData returns the validation collection, lazily seeding it
// from the validation snapshot file the first time it is read empty.
func (s *Service) ValidationData() ([]listing.Listing, error) {
	items := s.store.Validation()
	if len(items) > 0 || s.validationSeedPath == "" {
		return items, nil
	}

	seed, err := readSnapshot(s.validationSeedPath)
	if err != nil {
		return nil, err
	}
	if s.store.SeedValidation(seed) {
		s.audit.Record(ActionSeed, "system", "", fmt.Sprintf("%d listings from %s", len(seed), s.validationSeedPath))
		slog.Info("validation collection seeded",
			"path", s.validationSeedPath,
			"listings", len(seed),
		)
	}
	return s.store.Validation(), nil
}

// DispatchToEmployee forwards the admin transition.
func (s *Service) DispatchToEmployee(role Role, id string, questions []string) error {
	if err := s.store.DispatchToEmployee(role, id, questions); err != nil {
		return err
	}
	s.audit.Record(ActionDispatch, string(role), id, fmt.Sprintf("%d questions", len(questions)))
	return nil
}

// SubmitForValidation forwards the employee transition.
func (s *Service) SubmitForValidation(role Role, id string, edits listing.Edits) error {
	if err := s.store.SubmitForValidation(role, id, edits); err != nil {
		return err
	}
	s.audit.Record(ActionSubmit, string(role), id, "")
	return nil
}

// Delete removes a listing from admin or validation. A delete from
// admin also rewrites the backing file so the snapshot matches what
// operators see; the rewrite failing does not undo the in-memory
// delete.
func (s *Service) Delete(role Role, col Collection, id string) error {
	if err := s.store.Delete(role, col, id); err != nil {
		return err
	}
	s.audit.Record(ActionDelete, string(role), id, string(col))

	if col == CollectionAdmin && s.listingsPath != "" {
		if err := writeSnapshot(s.listingsPath, s.store.Admin()); err != nil {
			slog.Error("backing file rewrite failed", "path", s.listingsPath, "error", err)
			return err
		}
	}
	return nil
}

// GetAdditionalDetails returns the side-table entry for a listing.
// The entry may describe a listing that no longer exists in any
// collection.
func (s *Service) GetAdditionalDetails(id string) (listing.AdditionalDetails, bool) {
	return s.store.AdditionalDetails(id)
}

// Restructure rewrites one description on demand, reporting whether
// the result is genuine or a degraded fallback.
func (s *Service) Restructure(ctx context.Context, description string) enrich.Result {
	return s.enricher.Restructure(ctx, description)
}

// BackingData loads the admin backing file, filling in a restructured
// description for entries that are missing one. Entries whose
// restructure call degrades keep their raw description.
func (s *Service) BackingData(ctx context.Context) ([]listing.Listing, error) {
	if s.listingsPath == "" {
		return nil, &SourceError{Path: "(unset)", Err: ErrNotFound}
	}

	items, err := readSnapshot(s.listingsPath)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].Structured == "" {
			items[i].Structured = s.enricher.Restructure(ctx, items[i].Description).Text
		}
	}
	return items, nil
}

// LoadAdminFromBacking seeds the admin collection from the backing
// file at startup. A missing file is not fatal to the caller that
// chooses to ignore the error: the collection starts empty and fills
// on the next ingest.
func (s *Service) LoadAdminFromBacking() error {
	if s.listingsPath == "" {
		return nil
	}

	items, err := readSnapshot(s.listingsPath)
	if err != nil {
		return err
	}

	added := s.store.Ingest(items)
	slog.Info("admin collection loaded from backing file",
		"path", s.listingsPath,
		"listings", added,
	)
	return nil
}
