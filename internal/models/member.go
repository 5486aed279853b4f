package models

import "time"

// Member is one person in the church directory.
type Member struct {
	ID          string     `json:"id"`
	FullName    string     `json:"full_name"`
	PhoneNumber string     `json:"phone_number"`
	Email       string     `json:"email,omitempty"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	Department  string     `json:"department,omitempty"`
	Role        Role       `json:"role"`
	JoinDate    time.Time  `json:"join_date"`
	IsActive    bool       `json:"is_active"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// MemberUpdate carries a partial profile edit; nil fields are left unchanged.
type MemberUpdate struct {
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhotoURL    *string `json:"photo_url,omitempty"`
	Department  *string `json:"department,omitempty"`
	Role        *Role   `json:"role,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
