package handlers

import (
	"log"
	"net/http"

	"github.com/lfca/church-admin-be/internal/cache"
	"github.com/lfca/church-admin-be/internal/http/respond"
)

// UndoHandler exposes the single-slot undo buffer.
type UndoHandler struct {
	cache *cache.Cache
}

// NewUndoHandler constructs the handler.
func NewUndoHandler(c *cache.Cache) *UndoHandler {
	return &UndoHandler{cache: c}
}

// Register attaches undo routes; protect wraps each route in token auth.
func (h *UndoHandler) Register(mux *http.ServeMux, protect func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /undo", protect(h.handlePeek))
	mux.HandleFunc("POST /undo", protect(h.handleUndo))
}

func (h *UndoHandler) handlePeek(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "last deletion", h.cache.LastDeleted())
}

func (h *UndoHandler) handleUndo(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Undo(r.Context()); err != nil {
		log.Printf("undo: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to undo deletion")
		return
	}
	respond.JSON(w, http.StatusOK, "undo applied", nil)
}
