package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/treerag/internal/search"
	"github.com/dgallion1/treerag/internal/store"
)

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		s.log.Error("list documents failed", "error", err)
		jsonError(w, "failed to list documents", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	rec, err := s.store.Load(r.Context(), docID)
	if errors.Is(err, store.ErrCorruptRecord) {
		jsonError(w, "document record is corrupt", http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		s.log.Error("load document failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to load document", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	text, found, err := s.engine.Overview(r.Context(), docID)
	if err != nil {
		s.log.Error("overview failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to render overview", http.StatusInternalServerError)
		return
	}
	if !found {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	nodeID := chi.URLParam(r, "nodeID")
	sec, err := s.engine.Section(r.Context(), docID, nodeID)
	switch {
	case errors.Is(err, search.ErrDocumentNotFound):
		jsonError(w, "document not found", http.StatusNotFound)
		return
	case errors.Is(err, search.ErrNodeNotFound):
		jsonError(w, "node not found", http.StatusNotFound)
		return
	case err != nil:
		s.log.Error("section failed", "doc_id", docID, "node_id", nodeID, "error", err)
		jsonError(w, "failed to load section", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	deleted, err := s.store.Delete(r.Context(), docID)
	if err != nil {
		s.log.Error("delete document failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to delete document", http.StatusInternalServerError)
		return
	}
	if deleted {
		s.log.Info("document deleted", "doc_id", docID)
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": deleted})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := s.cfg.SearchMaxResults
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	hits, err := s.engine.Search(r.Context(), q.Get("q"), q.Get("doc_id"), limit)
	if err != nil {
		s.log.Error("search failed", "error", err)
		jsonError(w, "search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q.Get("q"),
		"results": hits,
	})
}
