package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/emdili/docrag/internal/api/middlewares"
)

// AnswerService is the slice of the answer composer the handler
// needs.
type AnswerService interface {
	Answer(ctx context.Context, ownerID, question string) (string, []string, error)
}

type RAGHandler struct {
	composer AnswerService
}

func NewRAGHandler(composer AnswerService) *RAGHandler {
	return &RAGHandler{composer: composer}
}

type queryRequest struct {
	Question string `json:"question"`
}

type queryResponse struct {
	Answer            string   `json:"answer"`
	SourceDocumentIDs []string `json:"source_document_ids"`
}

func (h *RAGHandler) Query(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middlewares.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user_id not found in context")
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	answer, sources, err := h.composer.Answer(r.Context(), ownerID, req.Question)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, queryResponse{Answer: answer, SourceDocumentIDs: sources})
}
