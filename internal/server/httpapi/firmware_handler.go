package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/server/services"
)

const (
	uploadFileField   = "firmware"
	multipartMemLimit = 32 << 20
)

func (s *Server) handleListFirmware(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Firmware.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeList(w, list)
}

func (s *Server) handleGetFirmware(w http.ResponseWriter, r *http.Request) {
	f, err := s.deps.Firmware.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", f)
}

// parseTargets accepts a JSON array of ids; numeric ids are kept in their
// decimal form.
func parseTargets(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("targetPrinters must be a JSON array: %w", common.ErrValidation)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			out = append(out, v)
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			return nil, fmt.Errorf("targetPrinters contains %v: %w", it, common.ErrValidation)
		}
	}
	return out, nil
}

func (s *Server) handleUploadFirmware(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "expected multipart/form-data")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadFileField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No firmware file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	targets, err := parseTargets(r.FormValue("targetPrinters"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	f, err := s.deps.Firmware.Upload(r.Context(), services.UploadRequest{
		Filename:       header.Filename,
		ContentType:    header.Header.Get("Content-Type"),
		Data:           data,
		Version:        r.FormValue("version"),
		Description:    r.FormValue("description"),
		TargetPrinters: targets,
		Provider:       r.FormValue("provider"),
		UploadedBy:     username(r.Context()),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Firmware uploaded successfully", f)
}

func (s *Server) handleDeployFirmware(w http.ResponseWriter, r *http.Request) {
	f, err := s.deps.Engine.Deploy(r.Context(), r.PathValue("id"), username(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Firmware deployment started", f)
}

func (s *Server) handleCancelFirmware(w http.ResponseWriter, r *http.Request) {
	f, err := s.deps.Engine.Cancel(r.Context(), r.PathValue("id"), username(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Firmware deployment cancelled", f)
}

func (s *Server) handleDeleteFirmware(w http.ResponseWriter, r *http.Request) {
	f, err := s.deps.Firmware.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Firmware deleted successfully", f)
}
