package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"github.com/dmitrijs2005/printfleet/internal/server/services"
)

func queryInt(r *http.Request, key string) (int, bool) {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	return v, err == nil
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.HistoryFilter{
		PrinterID: q.Get("printerId"),
		Status:    models.UpdateOutcome(q.Get("status")),
	}
	if v, ok := queryInt(r, "limit"); ok {
		f.Limit = min(v, services.MaxHistoryLimit)
	}
	if v, ok := queryInt(r, "offset"); ok {
		f.Offset = v
	}

	page, err := s.deps.History.List(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    page.Items,
		Pagination: pagination{
			Total:   page.Total,
			Limit:   page.Limit,
			Offset:  page.Offset,
			HasMore: page.HasMore,
		},
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.deps.History.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", h)
}

func (s *Server) handleAppendHistory(w http.ResponseWriter, r *http.Request) {
	var in models.HistoryEntry
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	h, err := s.deps.History.Append(r.Context(), in, username(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "History entry created successfully", h)
}

func (s *Server) handleUpdateHistory(w http.ResponseWriter, r *http.Request) {
	var patch models.HistoryPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}
	h, err := s.deps.History.Update(r.Context(), r.PathValue("id"), patch, username(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "History entry updated successfully", h)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.deps.History.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "History entry deleted successfully", h)
}

func (s *Server) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.History.Stats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", st)
}
