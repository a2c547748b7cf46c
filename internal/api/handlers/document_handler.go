package handlers

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/emdili/docrag/internal/api/middlewares"
	"github.com/emdili/docrag/internal/models"
)

const maxUploadMemory = 32 << 20

// DocumentService is the slice of the upload service the handler
// needs.
type DocumentService interface {
	Upload(ctx context.Context, ownerID, filename, contentType string, data []byte, mode string) (*models.Document, error)
	List(ctx context.Context, ownerID string, limit int, token string) ([]models.Document, string, error)
	Delete(ctx context.Context, ownerID, filename string) (bool, error)
}

type DocumentHandler struct {
	service DocumentService
}

func NewDocumentHandler(service DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

type listDocumentsResponse struct {
	Documents []models.Document `json:"documents"`
	NextToken string            `json:"next_token,omitempty"`
}

// Upload accepts a multipart form with a "file" part, a "mode" field,
// and an optional "name" field overriding the stored document id.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middlewares.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user_id not found in context")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read file")
		return
	}

	filename := r.FormValue("name")
	if filename == "" {
		filename = header.Filename
	}
	filename = filepath.Base(filename)

	doc, err := h.service.Upload(r.Context(), ownerID, filename,
		header.Header.Get("Content-Type"), data, r.FormValue("mode"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middlewares.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user_id not found in context")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	docs, next, err := h.service.List(r.Context(), ownerID, limit, r.URL.Query().Get("next_token"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	writeJSON(w, http.StatusOK, listDocumentsResponse{Documents: docs, NextToken: next})
}

// Delete removes a document by its URL-encoded id.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middlewares.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user_id not found in context")
		return
	}

	filename, err := url.PathUnescape(chi.URLParam(r, "document_id"))
	if err != nil || filename == "" {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	found, err := h.service.Delete(r.Context(), ownerID, filename)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
