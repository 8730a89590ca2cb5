package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/printfleet/internal/server/models"
)

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)

	// Auth
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	s.mux.HandleFunc("GET /api/auth/verify", s.authenticated(s.handleVerify))

	// Printers
	s.mux.HandleFunc("GET /api/printers", s.authenticated(s.handleListPrinters))
	s.mux.HandleFunc("GET /api/printers/stats/overview", s.authenticated(s.handlePrinterStats))
	s.mux.HandleFunc("GET /api/printers/{id}", s.authenticated(s.handleGetPrinter))
	s.mux.HandleFunc("POST /api/printers", s.adminOnly(s.handleCreatePrinter))
	s.mux.HandleFunc("PUT /api/printers/{id}", s.adminOnly(s.handleUpdatePrinter))
	s.mux.HandleFunc("DELETE /api/printers/{id}", s.adminOnly(s.handleDeletePrinter))

	// Firmware
	s.mux.HandleFunc("GET /api/firmware", s.adminOnly(s.handleListFirmware))
	s.mux.HandleFunc("GET /api/firmware/{id}", s.adminOnly(s.handleGetFirmware))
	s.mux.HandleFunc("POST /api/firmware/upload", s.adminOnly(s.handleUploadFirmware))
	s.mux.HandleFunc("POST /api/firmware/{id}/deploy", s.adminOnly(s.handleDeployFirmware))
	s.mux.HandleFunc("POST /api/firmware/{id}/cancel", s.adminOnly(s.handleCancelFirmware))
	s.mux.HandleFunc("DELETE /api/firmware/{id}", s.adminOnly(s.handleDeleteFirmware))

	// Storage
	s.mux.HandleFunc("GET /api/storage/status", s.adminOnly(s.handleStorageStatus))
	s.mux.HandleFunc("GET /api/storage/drive/auth-url", s.adminOnly(s.handleDriveAuthURL))
	s.mux.HandleFunc("POST /api/storage/drive/exchange", s.adminOnly(s.handleDriveExchange))

	// History
	s.mux.HandleFunc("GET /api/history", s.authenticated(s.handleListHistory))
	s.mux.HandleFunc("GET /api/history/stats/overview", s.authenticated(s.handleHistoryStats))
	s.mux.HandleFunc("GET /api/history/{id}", s.authenticated(s.handleGetHistory))
	s.mux.HandleFunc("POST /api/history", s.adminOnly(s.handleAppendHistory))
	s.mux.HandleFunc("PUT /api/history/{id}", s.adminOnly(s.handleUpdateHistory))
	s.mux.HandleFunc("DELETE /api/history/{id}", s.adminOnly(s.handleDeleteHistory))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type serverStatus struct {
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	PrintersCount  int    `json:"printersCount"`
	OnlinePrinters int    `json:"onlinePrinters"`
	Deployments    int    `json:"activeDeployments"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Printers.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	st := serverStatus{
		Status:        "Server is running",
		Timestamp:     s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		PrintersCount: len(list),
		Deployments:   s.deps.Engine.Running(),
	}
	for _, p := range list {
		if p.Status == models.PrinterOnline {
			st.OnlinePrinters++
		}
	}
	writeJSON(w, http.StatusOK, st)
}
