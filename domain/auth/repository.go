package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository persists administrator accounts
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	FindByID(ctx context.Context, id string) (*Admin, error)
	Insert(ctx context.Context, a *Admin) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, hash string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool, at time.Time) (*Admin, error)
	Count(ctx context.Context, search string) (int, error)
	List(ctx context.Context, search string, limit, offset int) ([]Admin, error)
}

const adminColumns = `id, name, email, password, role, is_active, last_login, created_at, updated_at`

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a Repository backed by the admins table
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) get(ctx context.Context, query string, args ...interface{}) (*Admin, error) {
	var a Admin
	if err := r.db.GetContext(ctx, &a, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &a, nil
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*Admin, error) {
	return r.get(ctx, `SELECT `+adminColumns+` FROM admins WHERE email = $1`, email)
}

func (r *postgresRepository) FindByID(ctx context.Context, id string) (*Admin, error) {
	return r.get(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
}

func (r *postgresRepository) Insert(ctx context.Context, a *Admin) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO admins (id, name, email, password, role, is_active, created_at, updated_at)
		VALUES (:id, :name, :email, :password, :role, :is_active, :created_at, :updated_at)`, a)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *postgresRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE admins SET last_login = $2 WHERE id = $1`, id, at)
}

func (r *postgresRepository) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	return r.exec(ctx, `UPDATE admins SET password = $2, updated_at = $3 WHERE id = $1`, id, hash, at)
}

func (r *postgresRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) (*Admin, error) {
	return r.get(ctx, `
		UPDATE admins SET is_active = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+adminColumns, id, active, at)
}

func searchClause(search string) (string, []interface{}) {
	search = strings.TrimSpace(search)
	if search == "" {
		return "", nil
	}
	pattern := "%" + strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(search) + "%"
	return " WHERE name ILIKE $1 OR email ILIKE $1", []interface{}{pattern}
}

func (r *postgresRepository) Count(ctx context.Context, search string) (int, error) {
	where, args := searchClause(search)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM admins`+where, args...); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return total, nil
}

func (r *postgresRepository) List(ctx context.Context, search string, limit, offset int) ([]Admin, error) {
	where, args := searchClause(search)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM admins%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		adminColumns, where, len(args)-1, len(args))

	admins := []Admin{}
	if err := r.db.SelectContext(ctx, &admins, query, args...); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}
