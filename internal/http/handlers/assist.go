package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/lfca/church-admin-be/internal/assist"
	"github.com/lfca/church-admin-be/internal/cache"
	"github.com/lfca/church-admin-be/internal/http/respond"
	"github.com/lfca/church-admin-be/internal/models/dto"
)

// fallbackMessage stands in for any text-generation failure; the underlying
// error is logged, never surfaced.
const fallbackMessage = "Sorry, the assistant is unavailable right now. Please try again later."

// AssistHandler owns the AI text-generation endpoints.
type AssistHandler struct {
	client *assist.Client // nil when no API key is configured
	cache  *cache.Cache
}

// NewAssistHandler constructs the handler.
func NewAssistHandler(client *assist.Client, c *cache.Cache) *AssistHandler {
	return &AssistHandler{client: client, cache: c}
}

// Register attaches assist routes; protect wraps each route in token auth.
func (h *AssistHandler) Register(mux *http.ServeMux, protect func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /assist/sermon", protect(h.handleSermon))
	mux.HandleFunc("POST /assist/announcement", protect(h.handleAnnouncement))
	mux.HandleFunc("POST /assist/finances", protect(h.handleFinances))
	mux.HandleFunc("POST /assist/chat", protect(h.handleChat))
}

func (h *AssistHandler) decode(w http.ResponseWriter, r *http.Request, req *dto.AssistRequest) bool {
	if h.client == nil {
		respond.Error(w, http.StatusServiceUnavailable, "assistant is not configured")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

func (h *AssistHandler) reply(w http.ResponseWriter, text string, err error) {
	if err != nil {
		log.Printf("assist: %v", err)
		text = fallbackMessage
	}
	respond.JSON(w, http.StatusOK, "generated", dto.AssistResponse{Text: text})
}

func (h *AssistHandler) handleSermon(w http.ResponseWriter, r *http.Request) {
	var req dto.AssistRequest
	if !h.decode(w, r, &req) {
		return
	}
	text, err := h.client.SermonOutline(r.Context(), req.Theme)
	h.reply(w, text, err)
}

func (h *AssistHandler) handleAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req dto.AssistRequest
	if !h.decode(w, r, &req) {
		return
	}
	text, err := h.client.Announcement(r.Context(), req.Details)
	h.reply(w, text, err)
}

func (h *AssistHandler) handleFinances(w http.ResponseWriter, r *http.Request) {
	var req dto.AssistRequest
	if !h.decode(w, r, &req) {
		return
	}
	text, err := h.client.SummarizeFinances(r.Context(), h.cache.SummarizeFinances())
	h.reply(w, text, err)
}

func (h *AssistHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req dto.AssistRequest
	if !h.decode(w, r, &req) {
		return
	}
	text, err := h.client.Chat(r.Context(), req.Query, req.Context)
	h.reply(w, text, err)
}
