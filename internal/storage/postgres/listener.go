package postgres

import (
	"context"
	"fmt"
)

// changeChannel is the NOTIFY channel the statement triggers publish to. The
// payload is the name of the table that changed.
const changeChannel = "row_changes"

// ListenChanges blocks on the database change feed and invokes handler with
// the table name of every reported insert, update, or delete, regardless of
// which client performed it. It returns when the context is cancelled or the
// listening connection fails; callers that want resilience should re-invoke.
func (s *Store) ListenChanges(ctx context.Context, handler func(table string)) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+changeChannel); err != nil {
		return fmt.Errorf("listen %s: %w", changeChannel, err)
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		handler(notification.Payload)
	}
}
