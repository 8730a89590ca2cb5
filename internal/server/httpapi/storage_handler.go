package httpapi

import (
	"net/http"

	"github.com/google/uuid"
)

func (s *Server) handleStorageStatus(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "", s.deps.Storage.Status(r.Context()))
}

func (s *Server) handleDriveAuthURL(w http.ResponseWriter, r *http.Request) {
	if s.deps.Drive == nil {
		writeError(w, http.StatusBadRequest, "Google Drive is not configured")
		return
	}
	state := uuid.NewString()
	writeData(w, http.StatusOK, "", map[string]string{"authUrl": s.deps.Drive.AuthURL(state), "state": state})
}

type exchangeRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleDriveExchange(w http.ResponseWriter, r *http.Request) {
	if s.deps.Drive == nil {
		writeError(w, http.StatusBadRequest, "Google Drive is not configured")
		return
	}
	var req exchangeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "authorization code is required")
		return
	}
	if err := s.deps.Drive.Exchange(r.Context(), req.Code); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Google Drive authorized"})
}
