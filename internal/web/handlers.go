package web

// handlers.go implements the JSON API endpoints. Each handler decodes
// its payload, calls one service operation, and renders the result;
// role checks happen inside the core so an unauthorized attempt never
// mutates anything regardless of which route it came through.

import (
	"encoding/json"
	"net/http"

	"github.com/imm-a8ub/backoffice/internal/core"
	"github.com/imm-a8ub/backoffice/internal/listing"
	"github.com/imm-a8ub/backoffice/internal/logging"
)

// statusSuccess is the legacy success body the front-end checks for.
var statusSuccess = map[string]string{"status": "success"}

// handleLogin authenticates a username/password pair and issues the
// session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	logger := logging.FromContext(r.Context())

	role, ok := s.users.authenticate(payload.Username, payload.Password)
	if !ok {
		logger.Warn("invalid login attempt", "username", payload.Username)
		respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	if err := s.sessions.issue(w, payload.Username, role); err != nil {
		s.respondError(w, r, err)
		return
	}

	logger.Info("user logged in", "username", payload.Username, "role", role)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"role":    string(role),
	})
}

// handleLogout clears the session cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.clear(w)
	logging.FromContext(r.Context()).Info("user logged out")
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// handleAdminData returns the admin collection. Admin only.
func (s *Server) handleAdminData(w http.ResponseWriter, r *http.Request) {
	if sessionFrom(r.Context()).Role != core.RoleAdmin {
		s.respondError(w, r, core.ErrUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, s.service.AdminData())
}

// handleEmployeeData returns the employee collection. Employee only.
func (s *Server) handleEmployeeData(w http.ResponseWriter, r *http.Request) {
	if sessionFrom(r.Context()).Role != core.RoleEmployee {
		s.respondError(w, r, core.ErrUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, s.service.EmployeeData())
}

// handleValidationData returns the validation collection, visible to
// both roles.
func (s *Server) handleValidationData(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.ValidationData()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// handleBackingData serves the admin backing file, filling in missing
// structured descriptions on the way out.
func (s *Server) handleBackingData(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.BackingData(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// handleSendToEmployee moves a listing from admin to employee with
// the selected custom questions attached.
func (s *Server) handleSendToEmployee(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID        string   `json:"ID"`
		Questions []string `json:"questions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	session := sessionFrom(r.Context())
	if err := s.service.DispatchToEmployee(session.Role, payload.ID, payload.Questions); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("listing dispatched to employee",
		"id", payload.ID,
		"questions", len(payload.Questions),
	)
	respondJSON(w, http.StatusOK, statusSuccess)
}

// detailsPayload is shared by send_to_validation and save_details:
// the front-end posts the whole row plus the employee's edits.
type detailsPayload struct {
	ID                string         `json:"ID"`
	StreetNumber      string         `json:"streetNumber"`
	AdditionalDetails string         `json:"additionalDetails"`
	Description       string         `json:"Description"`
	Coordinates       *listing.Point `json:"coordinates"`
}

func (p detailsPayload) edits() listing.Edits {
	return listing.Edits{
		StreetNumber:      p.StreetNumber,
		AdditionalDetails: p.AdditionalDetails,
		Description:       p.Description,
		Coordinates:       p.Coordinates,
	}
}

// handleSendToValidation moves a listing from employee to validation.
func (s *Server) handleSendToValidation(w http.ResponseWriter, r *http.Request) {
	s.submitForValidation(w, r)
}

// handleSaveDetails is the legacy alias the front-end uses when an
// employee finishes editing: same transition, same payload.
func (s *Server) handleSaveDetails(w http.ResponseWriter, r *http.Request) {
	s.submitForValidation(w, r)
}

func (s *Server) submitForValidation(w http.ResponseWriter, r *http.Request) {
	var payload detailsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	session := sessionFrom(r.Context())
	if err := s.service.SubmitForValidation(session.Role, payload.ID, payload.edits()); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("listing submitted for validation", "id", payload.ID)
	respondJSON(w, http.StatusOK, statusSuccess)
}

// handleDeleteRow removes a listing from the admin collection and
// rewrites the backing file.
func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	s.deleteFrom(w, r, core.CollectionAdmin)
}

// handleDeleteValidationRow removes a listing from the validation
// collection.
func (s *Server) handleDeleteValidationRow(w http.ResponseWriter, r *http.Request) {
	s.deleteFrom(w, r, core.CollectionValidation)
}

func (s *Server) deleteFrom(w http.ResponseWriter, r *http.Request, col core.Collection) {
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	session := sessionFrom(r.Context())
	if err := s.service.Delete(session.Role, col, payload.ID); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("listing deleted", "id", payload.ID, "collection", col)
	respondJSON(w, http.StatusOK, statusSuccess)
}

// handleGetAdditionalDetails returns the side-table entry for an id.
// An id with no entry returns an empty object, matching what the
// details pane expects.
func (s *Server) handleGetAdditionalDetails(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	details, _ := s.service.GetAdditionalDetails(id)
	respondJSON(w, http.StatusOK, details)
}

// handleAuditTrail returns the workflow audit trail, newest first.
// Admin only.
func (s *Server) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	if sessionFrom(r.Context()).Role != core.RoleAdmin {
		s.respondError(w, r, core.ErrUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, s.service.Audit().Entries())
}

// handleZones returns the full zone registry for map rendering.
func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Zones())
}

// handleResolveZone fuzzy-matches a free-text zone name.
func (s *Server) handleResolveZone(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	z, ok := s.service.ResolveZone(name)
	if !ok {
		respondJSON(w, http.StatusOK, map[string]any{"match": nil})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"match": z})
}

// handleMarkdown restructures one description on demand.
func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	if payload.Description == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "Description is required"})
		return
	}

	result := s.service.Restructure(r.Context(), payload.Description)
	if result.Degraded {
		logging.FromContext(r.Context()).Warn("restructure degraded to original text")
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"markdown": result.Text,
		"degraded": result.Degraded,
	})
}
