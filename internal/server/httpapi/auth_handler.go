package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	password := []byte(req.Password)
	defer common.WipeByteArray(password)

	token, user, err := s.deps.Auth.Login(r.Context(), req.Username, password)
	if err != nil {
		if statusFor(err) == http.StatusBadRequest {
			writeError(w, http.StatusBadRequest, "Username and password are required")
			return
		}
		s.logger.Warn(r.Context(), "login failed", "username", req.Username)
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token, User: user})
}

// handleLogout acknowledges; tokens are stateless and expire on their own.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Logged out successfully"})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": currentUser(r.Context())})
}
