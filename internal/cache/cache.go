// Package cache maintains in-memory snapshots of the three entity
// collections (members, attendance records, finance records), mirroring the
// non-soft-deleted rows of the backing store. Every mutation writes through
// to the store first and, on success, reloads the whole affected collection;
// the database change feed triggers the same reload for writes made by other
// processes. A single-slot undo buffer remembers the most recent soft
// deletion across all three kinds; only the last deletion is ever undoable.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/lfca/church-admin-be/internal/models"
	"github.com/lfca/church-admin-be/internal/storage"
)

// Listener is invoked after any collection snapshot is replaced.
type Listener func()

// Cache is the sole writer of the in-memory collections. Handlers and the
// change-feed goroutine call it concurrently.
type Cache struct {
	store storage.Store

	mu         sync.RWMutex
	members    []models.Member
	attendance []models.AttendanceRecord
	finances   []models.FinanceRecord
	undo       undoBuffer
	subs       map[int]Listener
	nextSub    int
}

// New constructs a cache around the given store. Call Init before serving.
func New(store storage.Store) *Cache {
	return &Cache{
		store: store,
		subs:  make(map[int]Listener),
	}
}

// Init performs the initial load of all three collections.
func (c *Cache) Init(ctx context.Context) error {
	if err := c.RefreshMembers(ctx); err != nil {
		return err
	}
	if err := c.RefreshAttendance(ctx); err != nil {
		return err
	}
	return c.RefreshFinances(ctx)
}

// Subscribe registers a listener and returns its detach function. Detaching
// while a notification is in flight is safe; the detached listener may still
// observe that one notification.
func (c *Cache) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Cache) notify() {
	c.mu.RLock()
	listeners := make([]Listener, 0, len(c.subs))
	for _, fn := range c.subs {
		listeners = append(listeners, fn)
	}
	c.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

// Members returns the current directory snapshot, ordered by full name.
func (c *Cache) Members() []models.Member {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Member, len(c.members))
	copy(out, c.members)
	return out
}

// Attendance returns the current check-in snapshot, newest first.
func (c *Cache) Attendance() []models.AttendanceRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.AttendanceRecord, len(c.attendance))
	copy(out, c.attendance)
	return out
}

// Finances returns the current transaction snapshot, newest first.
func (c *Cache) Finances() []models.FinanceRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.FinanceRecord, len(c.finances))
	copy(out, c.finances)
	return out
}

// RefreshMembers reloads the whole member collection from the store.
func (c *Cache) RefreshMembers(ctx context.Context) error {
	members, err := c.store.ListMembers(ctx)
	if err != nil {
		return fmt.Errorf("refresh members: %w", err)
	}
	c.mu.Lock()
	c.members = members
	c.mu.Unlock()
	c.notify()
	return nil
}

// RefreshAttendance reloads the whole check-in collection from the store.
func (c *Cache) RefreshAttendance(ctx context.Context) error {
	records, err := c.store.ListAttendance(ctx)
	if err != nil {
		return fmt.Errorf("refresh attendance: %w", err)
	}
	c.mu.Lock()
	c.attendance = records
	c.mu.Unlock()
	c.notify()
	return nil
}

// RefreshFinances reloads the whole transaction collection from the store.
func (c *Cache) RefreshFinances(ctx context.Context) error {
	finances, err := c.store.ListFinances(ctx)
	if err != nil {
		return fmt.Errorf("refresh finances: %w", err)
	}
	c.mu.Lock()
	c.finances = finances
	c.mu.Unlock()
	c.notify()
	return nil
}

// HandleTableChange reloads the collection backed by the named table. Change
// feed events for a local write duplicate the write-through's own reload;
// both are full idempotent resyncs, so the echo is harmless. Unknown table
// names are ignored.
func (c *Cache) HandleTableChange(ctx context.Context, table string) error {
	switch table {
	case "members":
		return c.RefreshMembers(ctx)
	case "attendance_records":
		return c.RefreshAttendance(ctx)
	case "finance_records":
		return c.RefreshFinances(ctx)
	}
	return nil
}
