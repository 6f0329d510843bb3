package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Lllllllleong/catalogflow/internal/extract"
	"github.com/Lllllllleong/catalogflow/internal/models"
)

// multipartOverhead leaves room for the form framing around the file part.
const multipartOverhead = 1 << 20

func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, extract.MaxUploadSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.metrics.observeUpload(outcomeRejected, 0)
			writeError(w, http.StatusBadRequest, msgTooLarge)
			return
		}
		slog.Warn("Upload without a readable file part.", "error", err)
		writeError(w, http.StatusBadRequest, "Se requiere un archivo PDF en el campo 'file'")
		return
	}
	defer file.Close()

	result, err := s.services.PDFImport.Extract(r.Context(), extract.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		status, _ := errorStatus(err)
		if status < http.StatusInternalServerError {
			s.metrics.observeUpload(outcomeRejected, 0)
		} else {
			s.metrics.observeUpload(outcomeError, 0)
		}
		s.fail(w, r, err)
		return
	}

	s.metrics.observeUpload(outcomeExtracted, len(result.Products))
	writeJSON(w, http.StatusOK, models.PDFUploadResponse{
		Success:         true,
		Message:         fmt.Sprintf("Se extrajeron %d productos del PDF", len(result.Products)),
		Products:        result.Products,
		TotalTextLength: result.TotalTextLength,
		Filename:        result.Filename,
	})
}

func (s *Server) handleSavePDFProducts(w http.ResponseWriter, r *http.Request) {
	var inputs []models.ProductInput
	if !decodeJSON(w, r, &inputs) {
		return
	}
	resp := s.services.PDFImport.SaveProducts(r.Context(), inputs)
	s.metrics.observeSave(resp.SavedCount, len(resp.Failed))
	writeJSON(w, http.StatusOK, resp)
}
