package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/programs"
)

var errSelfDisable = fmt.Errorf("%w: admins cannot disable their own account", gate.ErrInvalidOperation)

// UpdateRoleRequest is the body of PATCH /api/admin/users/{id}/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateStatusRequest is the body of PATCH /api/admin/users/{id}/status.
type UpdateStatusRequest struct {
	Disabled bool `json:"disabled"`
}

// RevokeResponse reports how many sessions a revocation ended.
type RevokeResponse struct {
	Revoked int `json:"revoked"`
}

// AssignMentorRequest is the body of POST /api/admin/mentorships.
type AssignMentorRequest struct {
	MentorID string `json:"mentor_id"`
	MenteeID string `json:"mentee_id"`
	Notes    string `json:"notes"`
}

func mountAdmin(r chi.Router, h *handlers) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Get("/users", h.handleListUsers)
		r.Get("/users/{id}", h.handleGetUser)
		r.Patch("/users/{id}/role", h.handleUpdateRole)
		r.Patch("/users/{id}/status", h.handleUpdateStatus)
		r.Delete("/users/{id}/sessions", h.handleRevokeSessions)
		if h.Programs != nil {
			r.Get("/applications", h.handleAdminListApplications)
			r.Get("/mentorships", h.handleListMentorships)
			r.Post("/mentorships", h.handleAssignMentor)
		}
	})
}

func (h *handlers) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Profiles.ListProfiles(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userViews(ps))
}

func (h *handlers) handleGetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Profiles.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userView(profile))
}

func (h *handlers) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req UpdateRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	profile, err := h.Profiles.UpdateRole(r.Context(), p.UserID, chi.URLParam(r, "id"), req.Role)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userView(profile))
}

func (h *handlers) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	target := chi.URLParam(r, "id")
	if target == p.UserID && req.Disabled {
		writeError(w, r, h.logger, errSelfDisable)
		return
	}
	if err := h.Accounts.SetDisabled(r.Context(), target, req.Disabled); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	profile, err := h.Profiles.GetProfile(r.Context(), target)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userView(profile))
}

func (h *handlers) handleRevokeSessions(w http.ResponseWriter, r *http.Request) {
	n, err := h.Accounts.RevokeUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, RevokeResponse{Revoked: n})
}

func (h *handlers) handleAdminListApplications(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	q := r.URL.Query()
	apps, err := h.Programs.ListReviewableApplications(r.Context(), p, programs.ReviewFilter{
		OpportunityID: q.Get("opportunity_id"),
		Status:        q.Get("status"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationViews(apps))
}

func (h *handlers) handleListMentorships(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	ms, err := h.Programs.ListMentorships(r.Context(), p, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mentorshipViews(ms))
}

func (h *handlers) handleAssignMentor(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req AssignMentorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	m, err := h.Programs.AssignMentor(r.Context(), p, req.MentorID, req.MenteeID, req.Notes)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, mentorshipView(m))
}
