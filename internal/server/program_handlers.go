package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/programs"
)

// SubmitApplicationRequest is the body of POST /api/applications.
type SubmitApplicationRequest struct {
	OpportunityID string         `json:"opportunity_id"`
	Answers       map[string]any `json:"answers"`
}

// ReviewRequest is the body of PATCH /api/partners/applications/{id}.
type ReviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// MentorshipUpdateRequest is the body of PATCH /api/mentorship/{id}.
type MentorshipUpdateRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func mountPrograms(r chi.Router, h *handlers) {
	r.Route("/api/opportunities", func(r chi.Router) {
		r.Get("/", h.withCaller(h.handleListOpportunities))
		r.Post("/", h.withCaller(h.handleCreateOpportunity))
		r.Get("/{id}", h.withCaller(h.handleGetOpportunity))
		r.Put("/{id}", h.withCaller(h.handleUpdateOpportunity))
		r.Delete("/{id}", h.withCaller(h.handleDeleteOpportunity))
		r.Post("/{id}/close", h.withCaller(h.handleCloseOpportunity))
	})

	r.Route("/api/applications", func(r chi.Router) {
		r.Get("/opportunities", h.handleListOpenOpportunities)
		r.Get("/opportunities/{id}", h.handleGetOpenOpportunity)
		r.Get("/", h.withCaller(h.handleListMyApplications))
		r.Post("/", h.withCaller(h.handleSubmitApplication))
		r.Get("/{id}", h.withCaller(h.handleGetMyApplication))
		r.Post("/{id}/withdraw", h.withCaller(h.handleWithdrawApplication))
	})

	r.Route("/api/partners/applications", func(r chi.Router) {
		r.Get("/", h.withCaller(h.handleListReviewable))
		r.Patch("/{id}", h.withCaller(h.handleReviewApplication))
	})

	r.Route("/api/mentorship", func(r chi.Router) {
		r.Get("/", h.handleListMentorships)
		r.Patch("/{id}", h.withCaller(h.handleUpdateMentorship))
	})
}

// withCaller adapts a handler that needs the gate's principal.
func (h *handlers) withCaller(fn func(w http.ResponseWriter, r *http.Request, p gate.Principal)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := caller(r)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		fn(w, r, p)
	}
}

func (h *handlers) handleListOpportunities(w http.ResponseWriter, r *http.Request, p gate.Principal) {
	opps, err := h.Programs.ListOpportunities(r.Context(), p, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, opportunityViews(opps))
}

func (h *handlers) handleCreateOpportunity(w http.ResponseWriter, r *http.Request, p gate.Principal) {
	var in programs.OpportunityInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	o, err := h.Programs.CreateOpportunity(r.Context(), p, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, opportunityView(o))
}

func (h *handlers) handleGetOpportunity(w http.ResponseWriter, r *http.Request, p gate.Principal) {
	o, err := h.Programs.GetOpportunity(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, opportunityView(o))
}

func (h *handlers) handleUpdateOpportunity(w http.ResponseWriter, r *http.Request, p gate.Principal) {
	var in programs.OpportunityInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	o, err := h.Programs.UpdateOpportunity(r.Context(), p, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, opportunityView(o))
}

func (h *handlers) handleCloseOpportunity(w http.ResponseWriter, r *http.Request, p gate.Principal) {
	o, err := h.Programs.CloseOpportunity(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, opportunityView(o))
}

func (h *handlers) handleDeleteOpportunity(w http.ResponseWriter, r *http.Request, p gate.Principal) {
	if err := h.Programs.DeleteOpportunity(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleListOpenOpportunities(w http.ResponseWriter, r *http.Request) {
	opps, err := h.Programs.ListOpenOpportunities(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, opportunityViews(opps))
}

func (h *handlers) handleGetOpenOpportunity(w http.ResponseWriter, r *http.Request) {
	o, err := h.Programs.OpenOpportunity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, opportunityView(o))
}

func (h *handlers) handleListMyApplications(w http.ResponseWriter, r *http.Request, p gate.Principal) {
	apps, err := h.Programs.ListMyApplications(r.Context(), p)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationViews(apps))
}

func (h *handlers) handleSubmitApplication(w http.ResponseWriter, r *http.Request, p gate.Principal) {
	var req SubmitApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	a, err := h.Programs.SubmitApplication(r.Context(), p, req.OpportunityID, req.Answers)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, applicationView(a))
}

func (h *handlers) handleGetMyApplication(w http.ResponseWriter, r *http.Request, p gate.Principal) {
	a, err := h.Programs.GetMyApplication(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationView(a))
}

func (h *handlers) handleWithdrawApplication(w http.ResponseWriter, r *http.Request, p gate.Principal) {
	a, err := h.Programs.WithdrawApplication(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationView(a))
}

func (h *handlers) handleListReviewable(w http.ResponseWriter, r *http.Request, p gate.Principal) {
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

func (h *handlers) handleReviewApplication(w http.ResponseWriter, r *http.Request, p gate.Principal) {
	var req ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	a, err := h.Programs.ReviewApplication(r.Context(), p, chi.URLParam(r, "id"), req.Status, req.Notes)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationView(a))
}

func (h *handlers) handleUpdateMentorship(w http.ResponseWriter, r *http.Request, p gate.Principal) {
	var req MentorshipUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	m, err := h.Programs.UpdateMentorship(r.Context(), p, chi.URLParam(r, "id"), req.Status, req.Notes)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mentorshipView(m))
}
