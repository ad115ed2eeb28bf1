package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/scb10x/orgchart-ocr/internal/raster"
)

// handleProcessOrgChart runs the per-page OCR pipeline on an uploaded
// PDF or image and returns the aggregated document structures.
func (s *Server) handleProcessOrgChart(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	if !raster.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("file must be PDF, PNG, or JPG (got %q)", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	result, err := s.processor.ProcessDocument(r.Context(), data, filename)
	if err != nil {
		s.writeProcessingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleProcessPDF classifies an uploaded PDF into a document category
// and runs the category's field extractor.
func (s *Server) handleProcessPDF(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		jsonError(w, fmt.Sprintf("file must be PDF (got %q)", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	// The document passes through local storage on its way to the
	// collaborators, mirroring how an indexing sink would see it.
	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("temp_%s.pdf", uuid.New()))
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	defer os.Remove(tmpPath)

	text, err := s.processor.DocumentText(r.Context(), data, filename)
	if err != nil {
		s.writeProcessingError(w, err)
		return
	}

	record, err := s.processor.ClassifyDocument(r.Context(), text, tmpPath, filename)
	if err != nil {
		s.writeProcessingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// readUpload pulls the multipart "file" field under the configured
// size limit. On failure it writes the error response and returns
// ok=false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (data []byte, filename string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	data, err = io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return nil, "", false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, "", false
	}

	return data, sanitizeFilename(header.Filename), true
}

// writeProcessingError maps pipeline failures onto the error taxonomy:
// bad input is the caller's fault, a failing collaborator is a gateway
// error carrying the originating message.
func (s *Server) writeProcessingError(w http.ResponseWriter, err error) {
	var unsupported *raster.ErrUnsupportedType
	var invalid *raster.ErrInvalidFile
	switch {
	case errors.As(err, &unsupported), errors.As(err, &invalid):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("processing failed", "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
