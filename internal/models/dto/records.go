package dto

import "github.com/lfca/church-admin-be/internal/models"

type NewMemberRequest struct {
	FullName    string      `json:"full_name"`
	PhoneNumber string      `json:"phone_number"`
	Email       string      `json:"email"`
	PhotoURL    string      `json:"photo_url"`
	Department  string      `json:"department"`
	Role        models.Role `json:"role"`
}

type CheckInRequest struct {
	ServiceDate  string             `json:"service_date"`
	ServiceName  models.ServiceType `json:"service_name"`
	MemberID     string             `json:"member_id"`
	IsVisitor    bool               `json:"is_visitor"`
	VisitorName  string             `json:"visitor_name"`
	VisitorPhone string             `json:"visitor_phone"`
	Notes        string             `json:"notes"`
}

// NewFinanceRequest carries the income form. Amount arrives as the raw form
// string and is parsed server-side before anything is persisted.
type NewFinanceRequest struct {
	Category    models.FinanceCategory `json:"category"`
	Amount      string                 `json:"amount"`
	Currency    string                 `json:"currency"`
	MemberID    string                 `json:"member_id"`
	DonorName   string                 `json:"donor_name"`
	Description string                 `json:"description"`
}

type AssistRequest struct {
	Theme   string `json:"theme,omitempty"`
	Details string `json:"details,omitempty"`
	Query   string `json:"query,omitempty"`
	Context string `json:"context,omitempty"`
}

type AssistResponse struct {
	Text string `json:"text"`
}
