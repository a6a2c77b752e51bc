package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/mealcam/internal/domain"
	"github.com/vbonduro/mealcam/internal/photostore"
)

const maxPhotoSize = 20 * 1024 * 1024 // 20 MB

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1024*1024)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "image exceeds 20 MB"}, s.logger)
			return
		}
		s.writeError(w, "analyze", &domain.ValidationError{Field: "form", Msg: "failed to parse multipart form"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, "analyze", &domain.ValidationError{Field: "image", Msg: "image file required"})
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	if header.Size > maxPhotoSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "image exceeds 20 MB"}, s.logger)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, "read upload", err)
		return
	}

	mimeType, ok := photostore.DetectImageMIME(imageData)
	if !ok {
		s.writeError(w, "analyze", &domain.ValidationError{Field: "image", Msg: "unsupported image format"})
		return
	}

	entry, err := s.service.Analyze(r.Context(), imageData, mimeType)
	if err != nil {
		s.writeError(w, "analyze", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry, s.logger)
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	reader, mimeType, err := s.photoStore.Get(r.Context(), key)
	if err != nil {
		s.writeError(w, "get photo", err)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "storage_key", key, "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
