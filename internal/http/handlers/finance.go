package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/lfca/church-admin-be/internal/cache"
	"github.com/lfca/church-admin-be/internal/http/respond"
	"github.com/lfca/church-admin-be/internal/middleware"
	"github.com/lfca/church-admin-be/internal/models"
	"github.com/lfca/church-admin-be/internal/models/dto"
)

// FinanceHandler owns the income ledger endpoints. Every route is gated to
// roles that may handle money.
type FinanceHandler struct {
	cache *cache.Cache
}

// NewFinanceHandler constructs the handler.
func NewFinanceHandler(c *cache.Cache) *FinanceHandler {
	return &FinanceHandler{cache: c}
}

// Register attaches finance routes; protect wraps each route in token auth.
func (h *FinanceHandler) Register(mux *http.ServeMux, protect func(http.HandlerFunc) http.HandlerFunc) {
	manage := models.Role.CanManageFinances
	mux.HandleFunc("GET /finance", protect(middleware.RequireRole(manage, h.handleList)))
	mux.HandleFunc("GET /finance/summary", protect(middleware.RequireRole(manage, h.handleSummary)))
	mux.HandleFunc("POST /finance", protect(middleware.RequireRole(manage, h.handleCreate)))
	mux.HandleFunc("DELETE /finance/{id}", protect(middleware.RequireRole(manage, h.handleDelete)))
}

func (h *FinanceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "finance records", h.cache.Finances())
}

func (h *FinanceHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	if memberID := r.URL.Query().Get("member_id"); memberID != "" {
		respond.JSON(w, http.StatusOK, "member totals", h.cache.MemberFinanceTotals(memberID))
		return
	}
	respond.JSON(w, http.StatusOK, "finance summary", h.cache.SummarizeFinances())
}

func (h *FinanceHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.NewFinanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	amount, err := models.ParseAmount(req.Amount)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	currency, err := models.ParseCurrency(req.Currency)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Category == "" {
		respond.Error(w, http.StatusBadRequest, "category is required")
		return
	}

	in := cache.NewFinance{
		Category:    req.Category,
		Amount:      amount,
		Currency:    currency,
		DonorName:   strings.TrimSpace(req.DonorName),
		Description: req.Description,
	}
	if memberID := strings.TrimSpace(req.MemberID); memberID != "" {
		in.MemberID = &memberID
	}
	if err := h.cache.AddFinance(r.Context(), in); err != nil {
		log.Printf("record income: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to record income")
		return
	}
	respond.JSON(w, http.StatusCreated, "income recorded", nil)
}

func (h *FinanceHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.DeleteFinance(r.Context(), r.PathValue("id")); err != nil {
		log.Printf("delete finance record: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to delete record")
		return
	}
	respond.JSON(w, http.StatusOK, "record deleted", nil)
}
