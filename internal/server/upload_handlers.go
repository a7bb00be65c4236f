package server

import (
	"net/http"
)

// PresignRequest is the body of POST /api/uploads.
type PresignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

func (h *handlers) handlePresignUpload(w http.ResponseWriter, r *http.Request) {
	p, err := caller(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req PresignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	up, err := h.Uploads.PresignUpload(r.Context(), p.UserID, req.Filename, req.ContentType)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, up)
}
