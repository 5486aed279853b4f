package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lfca/church-admin-be/internal/models"
)

// NewMember carries the fields of a directory creation; id, join date, and
// active flag are stamped here.
type NewMember struct {
	FullName    string
	PhoneNumber string
	Email       string
	PhotoURL    string
	Department  string
	Role        models.Role
}

// CheckIn carries one attendance event; id and creation time are stamped here.
type CheckIn struct {
	ServiceDate  time.Time
	ServiceName  models.ServiceType
	MemberID     *string
	IsVisitor    bool
	VisitorName  string
	VisitorPhone string
	Notes        string
}

// NewFinance carries one income transaction; id and recorded time are
// stamped here. Amount must already be parsed and validated.
type NewFinance struct {
	Category    models.FinanceCategory
	Amount      float64
	Currency    models.Currency
	MemberID    *string
	DonorName   string
	Description string
}

// AddMember writes a new member through to the store and resyncs on success.
// On failure the snapshot is unchanged and the error is returned as-is; no
// optimistic insert ever happens.
func (c *Cache) AddMember(ctx context.Context, in NewMember) error {
	m := models.Member{
		ID:          uuid.NewString(),
		FullName:    in.FullName,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		PhotoURL:    in.PhotoURL,
		Department:  in.Department,
		Role:        in.Role,
		JoinDate:    time.Now().UTC(),
		IsActive:    true,
	}
	if err := c.store.CreateMember(ctx, m); err != nil {
		return err
	}
	return c.RefreshMembers(ctx)
}

// UpdateMember writes a partial profile edit through and resyncs on success.
func (c *Cache) UpdateMember(ctx context.Context, id string, updates models.MemberUpdate) error {
	if err := c.store.UpdateMember(ctx, id, updates); err != nil {
		return err
	}
	return c.RefreshMembers(ctx)
}

// DeleteMember soft-deletes a member. If the id is absent from the current
// snapshot the call is a no-op. The undo buffer captures the row exactly as
// the snapshot held it, not a re-read from the store.
func (c *Cache) DeleteMember(ctx context.Context, id string) error {
	c.mu.Lock()
	var found *models.Member
	for i := range c.members {
		if c.members[i].ID == id {
			snapshot := c.members[i]
			found = &snapshot
			break
		}
	}
	if found == nil {
		c.mu.Unlock()
		return nil
	}
	c.undo.capture(DeletionRecord{Kind: KindMember, Member: found})
	c.mu.Unlock()

	now := time.Now().UTC()
	if err := c.store.SetMemberDeleted(ctx, id, &now); err != nil {
		return err
	}
	return c.RefreshMembers(ctx)
}

// AddAttendance writes a new check-in through and resyncs on success.
func (c *Cache) AddAttendance(ctx context.Context, in CheckIn) error {
	a := models.AttendanceRecord{
		ID:           uuid.NewString(),
		ServiceDate:  in.ServiceDate,
		ServiceName:  in.ServiceName,
		MemberID:     in.MemberID,
		IsVisitor:    in.IsVisitor,
		VisitorName:  in.VisitorName,
		VisitorPhone: in.VisitorPhone,
		Notes:        in.Notes,
		CreatedAt:    time.Now().UTC(),
	}
	if err := c.store.CreateAttendance(ctx, a); err != nil {
		return err
	}
	return c.RefreshAttendance(ctx)
}

// DeleteAttendance soft-deletes a check-in; absent ids are a no-op.
func (c *Cache) DeleteAttendance(ctx context.Context, id string) error {
	c.mu.Lock()
	var found *models.AttendanceRecord
	for i := range c.attendance {
		if c.attendance[i].ID == id {
			snapshot := c.attendance[i]
			found = &snapshot
			break
		}
	}
	if found == nil {
		c.mu.Unlock()
		return nil
	}
	c.undo.capture(DeletionRecord{Kind: KindAttendance, Attendance: found})
	c.mu.Unlock()

	now := time.Now().UTC()
	if err := c.store.SetAttendanceDeleted(ctx, id, &now); err != nil {
		return err
	}
	return c.RefreshAttendance(ctx)
}

// AddFinance writes a new transaction through and resyncs on success.
func (c *Cache) AddFinance(ctx context.Context, in NewFinance) error {
	f := models.FinanceRecord{
		ID:          uuid.NewString(),
		Category:    in.Category,
		Amount:      in.Amount,
		Currency:    in.Currency,
		MemberID:    in.MemberID,
		DonorName:   in.DonorName,
		Description: in.Description,
		RecordedAt:  time.Now().UTC(),
	}
	if err := c.store.CreateFinance(ctx, f); err != nil {
		return err
	}
	return c.RefreshFinances(ctx)
}

// DeleteFinance soft-deletes a transaction; absent ids are a no-op.
func (c *Cache) DeleteFinance(ctx context.Context, id string) error {
	c.mu.Lock()
	var found *models.FinanceRecord
	for i := range c.finances {
		if c.finances[i].ID == id {
			snapshot := c.finances[i]
			found = &snapshot
			break
		}
	}
	if found == nil {
		c.mu.Unlock()
		return nil
	}
	c.undo.capture(DeletionRecord{Kind: KindFinance, Finance: found})
	c.mu.Unlock()

	now := time.Now().UTC()
	if err := c.store.SetFinanceDeleted(ctx, id, &now); err != nil {
		return err
	}
	return c.RefreshFinances(ctx)
}
