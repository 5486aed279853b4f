package cache

import (
	"context"

	"github.com/lfca/church-admin-be/internal/models"
)

// Kind tags which collection a deletion record belongs to.
type Kind string

const (
	KindMember     Kind = "member"
	KindAttendance Kind = "attendance"
	KindFinance    Kind = "finance"
)

// DeletionRecord is the undo buffer's content: the kind plus a full snapshot
// of the row as it stood when deleted. Exactly one of the pointers is set.
type DeletionRecord struct {
	Kind       Kind                     `json:"kind"`
	Member     *models.Member           `json:"member,omitempty"`
	Attendance *models.AttendanceRecord `json:"attendance,omitempty"`
	Finance    *models.FinanceRecord    `json:"finance,omitempty"`
}

// undoBuffer holds at most one pending deletion across all entity kinds.
// A new capture overwrites whatever was pending; only the most recent
// deletion is undoable.
type undoBuffer struct {
	rec *DeletionRecord
}

func (b *undoBuffer) capture(rec DeletionRecord) {
	b.rec = &rec
}

func (b *undoBuffer) peek() *DeletionRecord {
	return b.rec
}

func (b *undoBuffer) clear() {
	b.rec = nil
}

// LastDeleted returns the pending deletion record, or nil if nothing is
// undoable.
func (c *Cache) LastDeleted() *DeletionRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.undo.rec == nil {
		return nil
	}
	rec := *c.undo.rec
	return &rec
}

// Undo restores the most recently deleted row by clearing its soft-delete
// timestamp, then empties the buffer and resyncs that collection. With no
// pending deletion it is a no-op. On store failure the buffer is left intact
// so the undo can be retried.
func (c *Cache) Undo(ctx context.Context) error {
	c.mu.RLock()
	rec := c.undo.rec
	c.mu.RUnlock()
	if rec == nil {
		return nil
	}

	var err error
	switch rec.Kind {
	case KindMember:
		err = c.store.SetMemberDeleted(ctx, rec.Member.ID, nil)
	case KindAttendance:
		err = c.store.SetAttendanceDeleted(ctx, rec.Attendance.ID, nil)
	case KindFinance:
		err = c.store.SetFinanceDeleted(ctx, rec.Finance.ID, nil)
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.undo.clear()
	c.mu.Unlock()

	switch rec.Kind {
	case KindMember:
		return c.RefreshMembers(ctx)
	case KindAttendance:
		return c.RefreshAttendance(ctx)
	default:
		return c.RefreshFinances(ctx)
	}
}
