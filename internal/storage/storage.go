package storage

import (
	"context"
	"errors"
	"time"

	"github.com/lfca/church-admin-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// MemberStore persists the member directory. Reads exclude soft-deleted rows
// and return members ordered by full name ascending.
type MemberStore interface {
	ListMembers(ctx context.Context) ([]models.Member, error)
	CreateMember(ctx context.Context, m models.Member) error
	UpdateMember(ctx context.Context, id string, updates models.MemberUpdate) error
	SetMemberDeleted(ctx context.Context, id string, deletedAt *time.Time) error
}

// AttendanceStore persists check-in events. Reads exclude soft-deleted rows
// and return records newest first.
type AttendanceStore interface {
	ListAttendance(ctx context.Context) ([]models.AttendanceRecord, error)
	CreateAttendance(ctx context.Context, a models.AttendanceRecord) error
	SetAttendanceDeleted(ctx context.Context, id string, deletedAt *time.Time) error
}

// FinanceStore persists income transactions. Reads exclude soft-deleted rows
// and return records newest first.
type FinanceStore interface {
	ListFinances(ctx context.Context) ([]models.FinanceRecord, error)
	CreateFinance(ctx context.Context, f models.FinanceRecord) error
	SetFinanceDeleted(ctx context.Context, id string, deletedAt *time.Time) error
}

// Store is the full persistence surface the entity cache writes through.
type Store interface {
	MemberStore
	AttendanceStore
	FinanceStore
}

// UserStore persists identity-provider credential rows.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	CreateResetToken(ctx context.Context, email, token string, expiresAt time.Time) error
}
