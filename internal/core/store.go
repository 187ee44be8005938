package core

// store.go holds the in-memory workflow state: three mutually
// exclusive collections (admin, employee, validation) plus the
// additional-details side table. One mutex guards everything, so a
// transition that spans two collections is a single critical section
// and partial moves are never observable.
//
// State is volatile by design; the only durability is the optional
// backing-file rewrite the Service performs at the storage boundary.

import (
	"log/slog"
	"sync"

	"github.com/imm-a8ub/backoffice/internal/listing"
)

// Role is the authenticated principal kind attempting a transition.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Authenticated reports whether the role represents a logged-in user.
func (r Role) Authenticated() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Collection names a workflow stage.
type Collection string

const (
	CollectionAdmin      Collection = "admin"
	CollectionEmployee   Collection = "employee"
	CollectionValidation Collection = "validation"
)

// Store owns the workflow collections for the lifetime of the
// process. Pass it by reference into every operation; there is no
// ambient global.
type Store struct {
	mu         sync.Mutex
	admin      []listing.Listing
	employee   []listing.Listing
	validation []listing.Listing
	details    map[string]listing.AdditionalDetails
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{details: make(map[string]listing.AdditionalDetails)}
}

// Ingest appends normalized listings to the admin collection and
// returns how many were added. A listing whose identifier is already
// in admin is replaced (re-ingestion refreshes it, including its
// resolved zone); an identifier currently in employee or validation
// is skipped so it never occupies two stages at once.
func (s *Store) Ingest(items []listing.Listing) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, item := range items {
		if indexOf(s.employee, item.ID) >= 0 || indexOf(s.validation, item.ID) >= 0 {
			slog.Warn("ingest: identifier already in review, skipped", "id", item.ID)
			continue
		}
		if i := indexOf(s.admin, item.ID); i >= 0 {
			s.admin[i] = item
			continue
		}
		s.admin = append(s.admin, item)
		added++
	}
	return added
}

// DispatchToEmployee moves a listing from admin to employee,
// attaching the admin's custom questions. Requires the admin role.
func (s *Store) DispatchToEmployee(role Role, id string, questions []string) error {
	if role != RoleAdmin {
		return ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.admin, id)
	if i < 0 {
		return ErrNotFound
	}

	item := s.admin[i]
	item.Questions = questions
	s.admin = removeAt(s.admin, i)
	s.employee = append(s.employee, item)
	return nil
}

// SubmitForValidation moves a listing from employee to validation,
// stamping its status "new", applying the employee's edits, and
// upserting the side-table entry. Requires the employee role.
func (s *Store) SubmitForValidation(role Role, id string, edits listing.Edits) error {
	if role != RoleEmployee {
		return ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.employee, id)
	if i < 0 {
		return ErrNotFound
	}

	item := s.employee[i]
	item.Status = listing.StatusNew
	if edits.Description != "" {
		item.Description = edits.Description
	}
	if edits.Coordinates != nil {
		item.Coordinates = edits.Coordinates
	}

	s.employee = removeAt(s.employee, i)
	s.validation = append(s.validation, item)

	s.details[id] = listing.AdditionalDetails{
		StreetNumber:      edits.StreetNumber,
		AdditionalDetails: edits.AdditionalDetails,
	}
	return nil
}

// Delete removes a listing from the admin or validation collection.
// Any authenticated role may delete. The side-table entry is left
// untouched; orphaned entries are tolerated.
func (s *Store) Delete(role Role, col Collection, id string) error {
	if !role.Authenticated() {
		return ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch col {
	case CollectionAdmin:
		i := indexOf(s.admin, id)
		if i < 0 {
			return ErrNotFound
		}
		s.admin = removeAt(s.admin, i)
	case CollectionValidation:
		i := indexOf(s.validation, id)
		if i < 0 {
			return ErrNotFound
		}
		s.validation = removeAt(s.validation, i)
	default:
		return ErrNotFound
	}
	return nil
}

// Admin returns a copy of the admin collection in ingestion order.
func (s *Store) Admin() []listing.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyOf(s.admin)
}

// Employee returns a copy of the employee collection.
func (s *Store) Employee() []listing.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyOf(s.employee)
}

// Validation returns a copy of the validation collection.
func (s *Store) Validation() []listing.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyOf(s.validation)
}

// SeedValidation fills the validation collection from a snapshot, but
// only when it is still empty. Used for the lazy load of the seed
// file on first read.
func (s *Store) SeedValidation(items []listing.Listing) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.validation) > 0 {
		return false
	}
	s.validation = copyOf(items)
	return true
}

// AdditionalDetails returns the side-table entry for an identifier.
func (s *Store) AdditionalDetails(id string) (listing.AdditionalDetails, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.details[id]
	return d, ok
}

// Contains reports which collection, if any, holds the identifier.
func (s *Store) Contains(id string) (Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case indexOf(s.admin, id) >= 0:
		return CollectionAdmin, true
	case indexOf(s.employee, id) >= 0:
		return CollectionEmployee, true
	case indexOf(s.validation, id) >= 0:
		return CollectionValidation, true
	}
	return "", false
}

func indexOf(items []listing.Listing, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func removeAt(items []listing.Listing, i int) []listing.Listing {
	return append(items[:i], items[i+1:]...)
}

func copyOf(items []listing.Listing) []listing.Listing {
	out := make([]listing.Listing, len(items))
	copy(out, items)
	return out
}
