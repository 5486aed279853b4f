package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lfca/church-admin-be/internal/models"
	"github.com/lfca/church-admin-be/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.Store     = (*Store)(nil)
	_ storage.UserStore = (*Store)(nil)
)

// Store provides Postgres-backed persistence for the directory, attendance,
// finance, and identity tables.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS members (
			id UUID PRIMARY KEY,
			full_name TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			photo_url TEXT NOT NULL DEFAULT '',
			department TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'member',
			join_date TIMESTAMPTZ NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			deleted_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS attendance_records (
			id UUID PRIMARY KEY,
			service_date TIMESTAMPTZ NOT NULL,
			service_name TEXT NOT NULL,
			member_id UUID,
			is_visitor BOOLEAN NOT NULL DEFAULT FALSE,
			visitor_name TEXT NOT NULL DEFAULT '',
			visitor_phone TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			deleted_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS finance_records (
			id UUID PRIMARY KEY,
			category TEXT NOT NULL,
			amount NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
			currency TEXT NOT NULL,
			member_id UUID,
			donor_name TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			recorded_at TIMESTAMPTZ NOT NULL,
			deleted_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'member',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS password_reset_tokens (
			token TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS members_full_name_idx ON members (full_name) WHERE deleted_at IS NULL;`,
		`CREATE INDEX IF NOT EXISTS attendance_created_idx ON attendance_records (created_at DESC) WHERE deleted_at IS NULL;`,
		`CREATE INDEX IF NOT EXISTS finance_recorded_idx ON finance_records (recorded_at DESC) WHERE deleted_at IS NULL;`,
		`CREATE OR REPLACE FUNCTION notify_row_change() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('row_changes', TG_TABLE_NAME);
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql;`,
		`DROP TRIGGER IF EXISTS members_notify ON members;`,
		`CREATE TRIGGER members_notify AFTER INSERT OR UPDATE OR DELETE ON members
			FOR EACH STATEMENT EXECUTE FUNCTION notify_row_change();`,
		`DROP TRIGGER IF EXISTS attendance_records_notify ON attendance_records;`,
		`CREATE TRIGGER attendance_records_notify AFTER INSERT OR UPDATE OR DELETE ON attendance_records
			FOR EACH STATEMENT EXECUTE FUNCTION notify_row_change();`,
		`DROP TRIGGER IF EXISTS finance_records_notify ON finance_records;`,
		`CREATE TRIGGER finance_records_notify AFTER INSERT OR UPDATE OR DELETE ON finance_records
			FOR EACH STATEMENT EXECUTE FUNCTION notify_row_change();`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// ListMembers returns all non-deleted members ordered by full name.
func (s *Store) ListMembers(ctx context.Context) ([]models.Member, error) {
	const query = `
	SELECT id, full_name, phone_number, email, photo_url, department, role, join_date, is_active
	FROM members
	WHERE deleted_at IS NULL
	ORDER BY full_name;`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.FullName, &m.PhoneNumber, &m.Email, &m.PhotoURL,
			&m.Department, &m.Role, &m.JoinDate, &m.IsActive); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateMember inserts a new member row.
func (s *Store) CreateMember(ctx context.Context, m models.Member) error {
	const query = `
	INSERT INTO members (id, full_name, phone_number, email, photo_url, department, role, join_date, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`
	_, err := s.pool.Exec(ctx, query, m.ID, m.FullName, m.PhoneNumber, m.Email,
		m.PhotoURL, m.Department, m.Role, m.JoinDate, m.IsActive)
	if err != nil {
		return mapPgError("create member", err)
	}
	return nil
}

// UpdateMember applies a partial profile edit to a live row.
func (s *Store) UpdateMember(ctx context.Context, id string, updates models.MemberUpdate) error {
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if updates.FullName != nil {
		add("full_name", *updates.FullName)
	}
	if updates.PhoneNumber != nil {
		add("phone_number", *updates.PhoneNumber)
	}
	if updates.Email != nil {
		add("email", *updates.Email)
	}
	if updates.PhotoURL != nil {
		add("photo_url", *updates.PhotoURL)
	}
	if updates.Department != nil {
		add("department", *updates.Department)
	}
	if updates.Role != nil {
		add("role", *updates.Role)
	}
	if updates.IsActive != nil {
		add("is_active", *updates.IsActive)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE members SET %s WHERE id = $%d AND deleted_at IS NULL;`,
		strings.Join(sets, ", "), len(args))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError("update member", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetMemberDeleted stamps or clears the soft-delete timestamp on a member row.
func (s *Store) SetMemberDeleted(ctx context.Context, id string, deletedAt *time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE members SET deleted_at = $1 WHERE id = $2;`, deletedAt, id)
	if err != nil {
		return fmt.Errorf("set member deleted: %w", err)
	}
	return nil
}

// ListAttendance returns all non-deleted check-ins, newest first.
func (s *Store) ListAttendance(ctx context.Context) ([]models.AttendanceRecord, error) {
	const query = `
	SELECT id, service_date, service_name, member_id, is_visitor, visitor_name, visitor_phone, notes, created_at
	FROM attendance_records
	WHERE deleted_at IS NULL
	ORDER BY created_at DESC;`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var out []models.AttendanceRecord
	for rows.Next() {
		var a models.AttendanceRecord
		if err := rows.Scan(&a.ID, &a.ServiceDate, &a.ServiceName, &a.MemberID, &a.IsVisitor,
			&a.VisitorName, &a.VisitorPhone, &a.Notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAttendance inserts a new check-in row.
func (s *Store) CreateAttendance(ctx context.Context, a models.AttendanceRecord) error {
	const query = `
	INSERT INTO attendance_records (id, service_date, service_name, member_id, is_visitor, visitor_name, visitor_phone, notes, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`
	_, err := s.pool.Exec(ctx, query, a.ID, a.ServiceDate, a.ServiceName, a.MemberID,
		a.IsVisitor, a.VisitorName, a.VisitorPhone, a.Notes, a.CreatedAt)
	if err != nil {
		return mapPgError("create attendance record", err)
	}
	return nil
}

// SetAttendanceDeleted stamps or clears the soft-delete timestamp on a check-in.
func (s *Store) SetAttendanceDeleted(ctx context.Context, id string, deletedAt *time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE attendance_records SET deleted_at = $1 WHERE id = $2;`, deletedAt, id)
	if err != nil {
		return fmt.Errorf("set attendance deleted: %w", err)
	}
	return nil
}

// ListFinances returns all non-deleted transactions, newest first.
func (s *Store) ListFinances(ctx context.Context) ([]models.FinanceRecord, error) {
	const query = `
	SELECT id, category, amount, currency, member_id, donor_name, description, recorded_at
	FROM finance_records
	WHERE deleted_at IS NULL
	ORDER BY recorded_at DESC;`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list finances: %w", err)
	}
	defer rows.Close()

	var out []models.FinanceRecord
	for rows.Next() {
		var f models.FinanceRecord
		if err := rows.Scan(&f.ID, &f.Category, &f.Amount, &f.Currency, &f.MemberID,
			&f.DonorName, &f.Description, &f.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan finance record: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CreateFinance inserts a new income transaction row.
func (s *Store) CreateFinance(ctx context.Context, f models.FinanceRecord) error {
	const query = `
	INSERT INTO finance_records (id, category, amount, currency, member_id, donor_name, description, recorded_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := s.pool.Exec(ctx, query, f.ID, f.Category, f.Amount, f.Currency, f.MemberID,
		f.DonorName, f.Description, f.RecordedAt)
	if err != nil {
		return mapPgError("create finance record", err)
	}
	return nil
}

// SetFinanceDeleted stamps or clears the soft-delete timestamp on a transaction.
func (s *Store) SetFinanceDeleted(ctx context.Context, id string, deletedAt *time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE finance_records SET deleted_at = $1 WHERE id = $2;`, deletedAt, id)
	if err != nil {
		return fmt.Errorf("set finance deleted: %w", err)
	}
	return nil
}

// CreateUser inserts a new identity row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	INSERT INTO users (id, email, full_name, role, password_hash)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, email, full_name, role, password_hash, created_at;`
	row := s.pool.QueryRow(ctx, query, user.ID, user.Email, user.FullName, user.Role, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindUserByEmail fetches an identity row by email address.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `
	SELECT id, email, full_name, role, password_hash, created_at
	FROM users
	WHERE email = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

// CreateResetToken records an out-of-band password reset token for an email.
func (s *Store) CreateResetToken(ctx context.Context, email, token string, expiresAt time.Time) error {
	const query = `
	INSERT INTO password_reset_tokens (token, email, expires_at)
	VALUES ($1, $2, $3);`
	if _, err := s.pool.Exec(ctx, query, token, email, expiresAt); err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.FullName, &user.Role, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func mapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return storage.ErrAlreadyExists
	}
	return fmt.Errorf("%s: %w", op, err)
}
