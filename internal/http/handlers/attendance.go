package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lfca/church-admin-be/internal/cache"
	"github.com/lfca/church-admin-be/internal/http/respond"
	"github.com/lfca/church-admin-be/internal/middleware"
	"github.com/lfca/church-admin-be/internal/models"
	"github.com/lfca/church-admin-be/internal/models/dto"
)

// AttendanceHandler owns the check-in endpoints.
type AttendanceHandler struct {
	cache *cache.Cache
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(c *cache.Cache) *AttendanceHandler {
	return &AttendanceHandler{cache: c}
}

// Register attaches attendance routes; protect wraps each route in token auth.
func (h *AttendanceHandler) Register(mux *http.ServeMux, protect func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /attendance", protect(h.handleList))
	mux.HandleFunc("GET /attendance/summary", protect(h.handleSummary))
	mux.HandleFunc("POST /attendance", protect(h.handleCheckIn))
	mux.HandleFunc("DELETE /attendance/{id}", protect(middleware.RequireRole(models.Role.CanManageMembers, h.handleDelete)))
}

func (h *AttendanceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if service := r.URL.Query().Get("service"); service != "" {
		respond.JSON(w, http.StatusOK, "attendance", h.cache.AttendanceByService(models.ServiceType(service)))
		return
	}
	respond.JSON(w, http.StatusOK, "attendance", h.cache.Attendance())
}

func (h *AttendanceHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	service := models.ServiceType(r.URL.Query().Get("service"))
	respond.JSON(w, http.StatusOK, "attendance summary", h.cache.SummarizeAttendance(service))
}

func (h *AttendanceHandler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.ServiceName == "" {
		respond.Error(w, http.StatusBadRequest, "service_name is required")
		return
	}
	// A non-visitor check-in must identify the attendee somehow.
	memberID := strings.TrimSpace(req.MemberID)
	if !req.IsVisitor && memberID == "" && strings.TrimSpace(req.VisitorName) == "" {
		respond.Error(w, http.StatusBadRequest, "member check-in requires member_id or a name")
		return
	}

	serviceDate := time.Now().UTC()
	if req.ServiceDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.ServiceDate)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "service_date must be RFC 3339")
			return
		}
		serviceDate = parsed
	}

	in := cache.CheckIn{
		ServiceDate:  serviceDate,
		ServiceName:  req.ServiceName,
		IsVisitor:    req.IsVisitor,
		VisitorName:  strings.TrimSpace(req.VisitorName),
		VisitorPhone: strings.TrimSpace(req.VisitorPhone),
		Notes:        req.Notes,
	}
	if memberID != "" {
		in.MemberID = &memberID
	}
	if err := h.cache.AddAttendance(r.Context(), in); err != nil {
		log.Printf("check in: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to record check-in")
		return
	}
	respond.JSON(w, http.StatusCreated, "check-in recorded", nil)
}

func (h *AttendanceHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.DeleteAttendance(r.Context(), r.PathValue("id")); err != nil {
		log.Printf("delete attendance: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to delete check-in")
		return
	}
	respond.JSON(w, http.StatusOK, "check-in deleted", nil)
}
