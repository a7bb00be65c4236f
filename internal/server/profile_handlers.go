package server

import (
	"net/http"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/auth"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/profiles"
)

// UpdateProfileRequest is the body of PUT /api/profile. A null attribute
// removes the key.
type UpdateProfileRequest struct {
	FullName   string         `json:"full_name"`
	Attributes map[string]any `json:"attributes"`
}

// caller returns the principal the gate placed in the context. Routes using
// it sit behind a role area, so a missing principal means the gate was
// bypassed.
func caller(r *http.Request) (gate.Principal, error) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		return gate.Principal{}, gate.ErrUnauthenticated
	}
	return p, nil
}

func (h *handlers) handleGetOwnProfile(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	profile, err := h.Profiles.GetProfile(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userView(profile))
}

func (h *handlers) handleUpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	profile, err := h.Profiles.UpdateDetails(r.Context(), p.UserID, req.FullName, req.Attributes)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userView(profile))
}

func (h *handlers) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	org, err := h.Profiles.Organization(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (h *handlers) handleSetOrganization(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var org profiles.Organization
	if err := decodeJSON(w, r, &org); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	org, err = h.Profiles.SetOrganization(r.Context(), p.UserID, org)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}
