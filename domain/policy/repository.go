package policy

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

// Repository persists policy documents. Every read ignores soft-deleted rows.
type Repository interface {
	Insert(ctx context.Context, p *Policy) error
	FindByID(ctx context.Context, id string) (*Policy, error)
	// FindPublishedBySlug returns a published document and counts the read.
	FindPublishedBySlug(ctx context.Context, slug string) (*Policy, error)
	// Update locks the document, applies mutate and writes it back in one transaction.
	Update(ctx context.Context, id string, mutate func(p *Policy) error) (*Policy, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Count(ctx context.Context, f Filter) (int, error)
	List(ctx context.Context, q Query) ([]Policy, error)
	BulkUpdateStatus(ctx context.Context, ids []string, status Status, by string, at time.Time) (BulkResult, error)
	CountByTypeAndStatus(ctx context.Context) ([]StatusCount, error)
}

const uniqueViolation = "23505"

const selectColumns = `
	p.id, p.title, p.slug, p.content, p.type, p.status, p.language,
	p.meta_title, p.meta_description, p.keywords, p.last_updated_by,
	p.published_at, p.is_active, p.views, p.created_at, p.updated_at,
	a.name AS updater_name, a.email AS updater_email`

var sortColumns = map[string]string{
	"createdAt":   "p.created_at",
	"updatedAt":   "p.updated_at",
	"publishedAt": "p.published_at",
	"title":       "p.title",
	"views":       "p.views",
	"type":        "p.type",
	"status":      "p.status",
}

// policyRow is the scan target for a policy joined with its last editor
type policyRow struct {
	ID              string         `db:"id"`
	Title           string         `db:"title"`
	Slug            string         `db:"slug"`
	Content         string         `db:"content"`
	Type            string         `db:"type"`
	Status          string         `db:"status"`
	Language        string         `db:"language"`
	MetaTitle       string         `db:"meta_title"`
	MetaDescription string         `db:"meta_description"`
	Keywords        pq.StringArray `db:"keywords"`
	LastUpdatedBy   sql.NullString `db:"last_updated_by"`
	PublishedAt     sql.NullTime   `db:"published_at"`
	IsActive        bool           `db:"is_active"`
	Views           int64          `db:"views"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	UpdaterName     sql.NullString `db:"updater_name"`
	UpdaterEmail    sql.NullString `db:"updater_email"`
}

func (r policyRow) toPolicy() *Policy {
	p := &Policy{
		ID:              r.ID,
		Title:           r.Title,
		Slug:            r.Slug,
		Content:         r.Content,
		Type:            Type(r.Type),
		Status:          Status(r.Status),
		Language:        r.Language,
		MetaTitle:       r.MetaTitle,
		MetaDescription: r.MetaDescription,
		Keywords:        []string(r.Keywords),
		IsActive:        r.IsActive,
		Views:           r.Views,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	if r.LastUpdatedBy.Valid {
		p.LastUpdatedBy = &AdminRef{
			ID:    r.LastUpdatedBy.String,
			Name:  r.UpdaterName.String,
			Email: r.UpdaterEmail.String,
		}
	}
	if r.PublishedAt.Valid {
		t := r.PublishedAt.Time
		p.PublishedAt = &t
	}
	return p
}

func fromPolicy(p *Policy) policyRow {
	r := policyRow{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		Type:            string(p.Type),
		Status:          string(p.Status),
		Language:        p.Language,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		Keywords:        pq.StringArray(p.Keywords),
		IsActive:        p.IsActive,
		Views:           p.Views,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if r.Keywords == nil {
		r.Keywords = pq.StringArray{}
	}
	if p.LastUpdatedBy != nil {
		r.LastUpdatedBy = sql.NullString{String: p.LastUpdatedBy.ID, Valid: true}
	}
	if p.PublishedAt != nil {
		r.PublishedAt = sql.NullTime{Time: *p.PublishedAt, Valid: true}
	}
	return r
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a Repository backed by the policies table
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (r *postgresRepository) Insert(ctx context.Context, p *Policy) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO policies (
			id, title, slug, content, type, status, language, meta_title,
			meta_description, keywords, last_updated_by, published_at,
			is_active, views, created_at, updated_at)
		VALUES (
			:id, :title, :slug, :content, :type, :status, :language, :meta_title,
			:meta_description, :keywords, :last_updated_by, :published_at,
			:is_active, :views, :created_at, :updated_at)`, fromPolicy(p))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id string) (*Policy, error) {
	var row policyRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+selectColumns+`
		FROM policies p
		LEFT JOIN admins a ON a.id = p.last_updated_by
		WHERE p.id = $1 AND p.is_active`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find policy: %w", err)
	}
	return row.toPolicy(), nil
}

func (r *postgresRepository) FindPublishedBySlug(ctx context.Context, slug string) (*Policy, error) {
	var row policyRow
	err := r.db.GetContext(ctx, &row, `
		WITH p AS (
			UPDATE policies
			SET views = views + 1
			WHERE slug = $1 AND is_active AND status = 'published'
			RETURNING *
		)
		SELECT `+selectColumns+`
		FROM p
		LEFT JOIN admins a ON a.id = p.last_updated_by`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find published policy: %w", err)
	}
	return row.toPolicy(), nil
}

func (r *postgresRepository) Update(ctx context.Context, id string, mutate func(p *Policy) error) (*Policy, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var row policyRow
	err = tx.GetContext(ctx, &row, `
		SELECT `+selectColumns+`
		FROM policies p
		LEFT JOIN admins a ON a.id = p.last_updated_by
		WHERE p.id = $1 AND p.is_active
		FOR UPDATE OF p`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock policy: %w", err)
	}

	p := row.toPolicy()
	if err := mutate(p); err != nil {
		return nil, err
	}

	_, err = tx.NamedExecContext(ctx, `
		UPDATE policies SET
			title = :title,
			slug = :slug,
			content = :content,
			type = :type,
			status = :status,
			language = :language,
			meta_title = :meta_title,
			meta_description = :meta_description,
			keywords = :keywords,
			last_updated_by = :last_updated_by,
			published_at = :published_at,
			updated_at = :updated_at
		WHERE id = :id`, fromPolicy(p))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("update policy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit policy update: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *postgresRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE policies SET is_active = FALSE, updated_at = $2
		WHERE id = $1 AND is_active`, id, at)
	if err != nil {
		return fmt.Errorf("soft delete policy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete policy: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// escapeLike makes LIKE wildcards in user input match literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func whereClause(f Filter) (string, []interface{}) {
	conds := []string{"p.is_active"}
	var args []interface{}

	if f.Type != "" {
		args = append(args, string(f.Type))
		conds = append(conds, fmt.Sprintf("p.type = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		conds = append(conds, fmt.Sprintf(
			"(p.title ILIKE $%[1]d OR p.content ILIKE $%[1]d OR EXISTS (SELECT 1 FROM unnest(p.keywords) k WHERE k ILIKE $%[1]d))",
			len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func (r *postgresRepository) Count(ctx context.Context, f Filter) (int, error) {
	where, args := whereClause(f)
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM policies p WHERE "+where, args...); err != nil {
		return 0, fmt.Errorf("count policies: %w", err)
	}
	return total, nil
}

func (r *postgresRepository) List(ctx context.Context, q Query) ([]Policy, error) {
	where, args := whereClause(q.Filter)

	column, ok := sortColumns[q.Sort.Field]
	if !ok {
		column = sortColumns[DefaultSort.Field]
	}
	dir := "ASC"
	if q.Sort.Desc {
		dir = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM policies p
		LEFT JOIN admins a ON a.id = p.last_updated_by
		WHERE %s
		ORDER BY %s %s NULLS LAST, p.id`, selectColumns, where, column, dir)
	if q.Limit > 0 {
		args = append(args, q.Limit, q.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	var rows []policyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}

	policies := make([]Policy, 0, len(rows))
	for _, row := range rows {
		policies = append(policies, *row.toPolicy())
	}
	return policies, nil
}

func (r *postgresRepository) BulkUpdateStatus(ctx context.Context, ids []string, status Status, by string, at time.Time) (BulkResult, error) {
	var res struct {
		Matched  int64 `db:"matched"`
		Modified int64 `db:"modified"`
	}
	err := r.db.GetContext(ctx, &res, `
		WITH matched AS (
			SELECT id FROM policies WHERE id = ANY($1::uuid[]) AND is_active
		), updated AS (
			UPDATE policies p SET
				status = $2::varchar,
				last_updated_by = $3::uuid,
				updated_at = $4::timestamptz,
				published_at = CASE
					WHEN $2::varchar = 'published' THEN COALESCE(p.published_at, $4::timestamptz)
					ELSE p.published_at
				END
			FROM matched m
			WHERE p.id = m.id AND p.status <> $2::varchar
			RETURNING p.id
		)
		SELECT (SELECT COUNT(*) FROM matched) AS matched,
		       (SELECT COUNT(*) FROM updated) AS modified`,
		pq.Array(ids), string(status), by, at)
	if err != nil {
		return BulkResult{}, fmt.Errorf("bulk update status: %w", err)
	}
	return BulkResult{MatchedCount: res.Matched, ModifiedCount: res.Modified}, nil
}

func (r *postgresRepository) CountByTypeAndStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.SelectContext(ctx, &counts, `
		SELECT type, status, COUNT(*) AS count, COALESCE(SUM(views), 0) AS views
		FROM policies
		WHERE is_active
		GROUP BY type, status
		ORDER BY type, status`)
	if err != nil {
		return nil, fmt.Errorf("count policies by type: %w", err)
	}
	return counts, nil
}
