package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/lfca/church-admin-be/internal/blob"
	"github.com/lfca/church-admin-be/internal/cache"
	"github.com/lfca/church-admin-be/internal/http/respond"
	"github.com/lfca/church-admin-be/internal/middleware"
	"github.com/lfca/church-admin-be/internal/models"
	"github.com/lfca/church-admin-be/internal/models/dto"
	"github.com/lfca/church-admin-be/internal/storage"
)

const maxPhotoBytes = 10 << 20

// MembersHandler owns the member directory endpoints.
type MembersHandler struct {
	cache  *cache.Cache
	photos *blob.PhotoStore // nil when photo storage is not configured
}

// NewMembersHandler constructs the handler.
func NewMembersHandler(c *cache.Cache, photos *blob.PhotoStore) *MembersHandler {
	return &MembersHandler{cache: c, photos: photos}
}

// Register attaches member routes; protect wraps each route in token auth.
func (h *MembersHandler) Register(mux *http.ServeMux, protect func(http.HandlerFunc) http.HandlerFunc) {
	manage := models.Role.CanManageMembers
	mux.HandleFunc("GET /members", protect(h.handleList))
	mux.HandleFunc("POST /members", protect(middleware.RequireRole(manage, h.handleCreate)))
	mux.HandleFunc("PUT /members/{id}", protect(middleware.RequireRole(manage, h.handleUpdate)))
	mux.HandleFunc("DELETE /members/{id}", protect(middleware.RequireRole(manage, h.handleDelete)))
	mux.HandleFunc("POST /members/photo", protect(middleware.RequireRole(manage, h.handlePhotoUpload)))
}

func (h *MembersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "members", h.cache.Members())
}

func (h *MembersHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.NewMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.FullName) == "" || strings.TrimSpace(req.PhoneNumber) == "" {
		respond.Error(w, http.StatusBadRequest, "full_name and phone_number are required")
		return
	}
	err := h.cache.AddMember(r.Context(), cache.NewMember{
		FullName:    strings.TrimSpace(req.FullName),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Email:       strings.TrimSpace(req.Email),
		PhotoURL:    req.PhotoURL,
		Department:  req.Department,
		Role:        models.ParseRole(string(req.Role)),
	})
	if err != nil {
		log.Printf("create member: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create member")
		return
	}
	respond.JSON(w, http.StatusCreated, "member created", nil)
}

func (h *MembersHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var updates models.MemberUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if updates.Role != nil {
		parsed := models.ParseRole(string(*updates.Role))
		updates.Role = &parsed
	}
	if err := h.cache.UpdateMember(r.Context(), r.PathValue("id"), updates); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "member not found")
			return
		}
		log.Printf("update member: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to update member")
		return
	}
	respond.JSON(w, http.StatusOK, "member updated", nil)
}

func (h *MembersHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.DeleteMember(r.Context(), r.PathValue("id")); err != nil {
		log.Printf("delete member: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to delete member")
		return
	}
	respond.JSON(w, http.StatusOK, "member deleted", nil)
}

func (h *MembersHandler) handlePhotoUpload(w http.ResponseWriter, r *http.Request) {
	if h.photos == nil {
		respond.Error(w, http.StatusServiceUnavailable, "photo storage is not configured")
		return
	}
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	url, err := h.photos.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		log.Printf("upload photo: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to upload photo")
		return
	}
	respond.JSON(w, http.StatusOK, "photo uploaded", map[string]string{"photo_url": url})
}
