package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/printfleet/internal/server/models"
)

func (s *Server) handleListPrinters(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Printers.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, list)
}

func (s *Server) handleGetPrinter(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Printers.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", p)
}

func (s *Server) handleCreatePrinter(w http.ResponseWriter, r *http.Request) {
	var in models.NewPrinter
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.deps.Printers.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Printer created successfully", p)
}

func (s *Server) handleUpdatePrinter(w http.ResponseWriter, r *http.Request) {
	var patch models.PrinterPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.deps.Printers.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Printer updated successfully", p)
}

func (s *Server) handleDeletePrinter(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Printers.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Printer deleted successfully", p)
}

func (s *Server) handlePrinterStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Printers.Stats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", st)
}
