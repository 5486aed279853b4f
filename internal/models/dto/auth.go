package dto

import "github.com/lfca/church-admin-be/internal/models"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string             `json:"token"`
	Session models.UserSession `json:"session"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}
