package policy

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/policydesk/admin-api/pkg/apperrors"
	"github.com/policydesk/admin-api/pkg/logger"
	"github.com/policydesk/admin-api/pkg/metrics"
	"github.com/policydesk/admin-api/pkg/validation"
	"github.com/policydesk/admin-api/utils"
)

const (
	defaultPageSize  = 10
	maxPageSize      = 100
	quickSearchLimit = 10
	recentLimit      = 5
	minSearchLength  = 2
	maxTitleLength   = 200
	copySuffix       = " (Copy)"
)

// Service implements the policy document lifecycle on top of a Repository
type Service struct {
	repo    Repository
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo Repository, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		log:     log.WithComponent("policy"),
		metrics: m,
		now:     time.Now,
	}
}

// WithClock replaces the time source used for timestamps and copy slugs
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) reqLog(ctx context.Context) logger.Logger {
	return s.log.WithContext(ctx)
}

// mapError turns repository sentinels into AppErrors
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperrors.NotFound("Policy not found")
	case errors.Is(err, ErrDuplicateSlug):
		return apperrors.NewBadRequest(apperrors.ErrCodeDuplicateSlug, "A policy with this slug already exists")
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	return apperrors.Unexpected(err)
}

func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", apperrors.Validation("Invalid policy ID format")
	}
	return parsed.String(), nil
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Create validates in, derives the slug and stores a new document
func (s *Service) Create(ctx context.Context, in CreateInput, actingAdminID string) (p *Policy, err error) {
	defer func() { s.metrics.RecordPolicyOp("create", err) }()

	in.Title = strings.TrimSpace(in.Title)
	in.Content = SanitizeContent(in.Content)

	msgs, err := validation.Collect(in)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}

	source := in.Title
	if strings.TrimSpace(in.Slug) != "" {
		source = in.Slug
	}
	slug := Slugify(source)
	if slug == "" && source != "" {
		msgs = append(msgs, "Slug must contain at least one letter or number")
	}
	if err := validation.Join(msgs...); err != nil {
		return nil, err
	}

	now := s.now()
	p = &Policy{
		ID:              uuid.NewString(),
		Title:           in.Title,
		Slug:            slug,
		Content:         in.Content,
		Type:            in.Type,
		Status:          in.Status,
		Language:        strings.TrimSpace(in.Language),
		MetaTitle:       strings.TrimSpace(in.MetaTitle),
		MetaDescription: strings.TrimSpace(in.MetaDescription),
		Keywords:        cleanKeywords(in.Keywords),
		LastUpdatedBy:   &AdminRef{ID: actingAdminID},
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.Language == "" {
		p.Language = DefaultLanguage
	}
	if p.Status == StatusPublished {
		p.PublishedAt = &now
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, mapError(err)
	}

	s.reqLog(ctx).Info("Policy created",
		logger.PolicyID(p.ID),
		logger.Slug(p.Slug),
		logger.AdminID(actingAdminID),
	)
	return s.reload(ctx, p)
}

// reload re-reads p so the response carries the editor's name and email
func (s *Service) reload(ctx context.Context, p *Policy) (*Policy, error) {
	stored, err := s.repo.FindByID(ctx, p.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return stored, nil
}

// Update applies the non-nil fields of in. publishedAt is only ever set once.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, actingAdminID string) (p *Policy, err error) {
	defer func() { s.metrics.RecordPolicyOp("update", err) }()

	id, err = parseID(id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if in.Content != nil {
		content := SanitizeContent(*in.Content)
		in.Content = &content
	}

	msgs, err := validation.Collect(in)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	var slug string
	if in.Title != nil && *in.Title != "" {
		if slug = Slugify(*in.Title); slug == "" {
			msgs = append(msgs, "Slug must contain at least one letter or number")
		}
	}
	if err := validation.Join(msgs...); err != nil {
		return nil, err
	}

	now := s.now()
	p, err = s.repo.Update(ctx, id, func(p *Policy) error {
		if in.Title != nil && *in.Title != p.Title {
			p.Title = *in.Title
			p.Slug = slug
		}
		if in.Content != nil {
			p.Content = *in.Content
		}
		if in.Type != nil {
			p.Type = *in.Type
		}
		if in.Status != nil {
			p.Status = *in.Status
			if p.Status == StatusPublished && p.PublishedAt == nil {
				p.PublishedAt = &now
			}
		}
		if in.Language != nil {
			p.Language = strings.TrimSpace(*in.Language)
		}
		if in.MetaTitle != nil {
			p.MetaTitle = strings.TrimSpace(*in.MetaTitle)
		}
		if in.MetaDescription != nil {
			p.MetaDescription = strings.TrimSpace(*in.MetaDescription)
		}
		if in.Keywords != nil {
			p.Keywords = cleanKeywords(*in.Keywords)
		}
		p.LastUpdatedBy = &AdminRef{ID: actingAdminID}
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.reqLog(ctx).Info("Policy updated", logger.PolicyID(id), logger.AdminID(actingAdminID))
	return p, nil
}

// SoftDelete hides a document from every read and frees its slug
func (s *Service) SoftDelete(ctx context.Context, id string, actingAdminID string) (err error) {
	defer func() { s.metrics.RecordPolicyOp("delete", err) }()

	id, err = parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id, s.now()); err != nil {
		return mapError(err)
	}

	s.reqLog(ctx).Info("Policy deleted", logger.PolicyID(id), logger.AdminID(actingAdminID))
	return nil
}

// Duplicate stores a draft copy of an active document under a fresh slug
func (s *Service) Duplicate(ctx context.Context, id string, actingAdminID string) (p *Policy, err error) {
	defer func() { s.metrics.RecordPolicyOp("duplicate", err) }()

	id, err = parseID(id)
	if err != nil {
		return nil, err
	}
	src, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	now := s.now()
	p = &Policy{
		ID:              uuid.NewString(),
		Title:           truncateRunes(src.Title, maxTitleLength-utf8.RuneCountInString(copySuffix)) + copySuffix,
		Slug:            copySlug(src.Slug, now),
		Content:         src.Content,
		Type:            src.Type,
		Status:          StatusDraft,
		Language:        src.Language,
		MetaTitle:       src.MetaTitle,
		MetaDescription: src.MetaDescription,
		Keywords:        append([]string{}, src.Keywords...),
		LastUpdatedBy:   &AdminRef{ID: actingAdminID},
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, mapError(err)
	}

	s.reqLog(ctx).Info("Policy duplicated",
		logger.PolicyID(p.ID),
		logger.String("source_id", src.ID),
		logger.AdminID(actingAdminID),
	)
	return s.reload(ctx, p)
}

// Get returns an active document by id
func (s *Service) Get(ctx context.Context, id string) (*Policy, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// GetPublicBySlug returns a published document and increments its view counter
func (s *Service) GetPublicBySlug(ctx context.Context, slug string) (*Policy, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, apperrors.NotFound("Policy not found")
	}
	p, err := s.repo.FindPublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("Policy not found")
		}
		return nil, mapError(err)
	}
	s.metrics.RecordPublicView()
	return p, nil
}

func validateFilter(t Type, st Status) error {
	var msgs []string
	if t != "" && !t.Valid() {
		msgs = append(msgs, "Invalid policy type")
	}
	if st != "" && !st.Valid() {
		msgs = append(msgs, "Invalid status")
	}
	return validation.Join(msgs...)
}

// List returns one page of active documents matching params
func (s *Service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if err := validateFilter(params.Type, params.Status); err != nil {
		return nil, err
	}
	page, limit := utils.ClampPage(params.Page, params.Limit, defaultPageSize, maxPageSize)
	filter := Filter{
		Type:   params.Type,
		Status: params.Status,
		Search: strings.TrimSpace(params.Search),
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	policies, err := s.repo.List(ctx, Query{
		Filter: filter,
		Sort:   ParseSort(params.Sort),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &ListResult{
		Policies:   policies,
		Pagination: utils.NewPagination(page, limit, total),
	}, nil
}

// BulkUpdateStatus sets status on every active document in ids. Unknown and
// malformed ids are ignored. publishedAt is kept when already set.
func (s *Service) BulkUpdateStatus(ctx context.Context, ids []string, status Status, actingAdminID string) (res BulkResult, err error) {
	defer func() { s.metrics.RecordPolicyOp("bulk_status", err) }()

	var msgs []string
	if len(ids) == 0 {
		msgs = append(msgs, "Policy IDs array is required")
	}
	if !status.Valid() {
		msgs = append(msgs, "Valid status is required (draft, published, or archived)")
	}
	if err := validation.Join(msgs...); err != nil {
		return BulkResult{}, err
	}

	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if parsed, err := uuid.Parse(strings.TrimSpace(id)); err == nil {
			valid = append(valid, parsed.String())
		}
	}
	if len(valid) == 0 {
		return BulkResult{}, nil
	}

	res, err = s.repo.BulkUpdateStatus(ctx, valid, status, actingAdminID, s.now())
	if err != nil {
		return BulkResult{}, mapError(err)
	}

	s.reqLog(ctx).Info("Policy statuses updated",
		logger.String("new_status", string(status)),
		logger.Int64("matched", res.MatchedCount),
		logger.Int64("modified", res.ModifiedCount),
		logger.AdminID(actingAdminID),
	)
	return res, nil
}

func aggregate(counts []StatusCount) ([]TypeStats, Summary) {
	byType := make(map[Type]*TypeStats)
	var sum Summary
	for _, c := range counts {
		ts, ok := byType[c.Type]
		if !ok {
			ts = &TypeStats{Type: c.Type, TypeDisplay: c.Type.Label()}
			byType[c.Type] = ts
		}
		ts.Total += c.Count
		sum.TotalPolicies += c.Count
		sum.TotalViews += c.Views
		switch c.Status {
		case StatusPublished:
			ts.Published += c.Count
			sum.TotalPublished += c.Count
		case StatusDraft:
			ts.Draft += c.Count
			sum.TotalDraft += c.Count
		case StatusArchived:
			ts.Archived += c.Count
			sum.TotalArchived += c.Count
		}
	}

	stats := make([]TypeStats, 0, len(byType))
	for _, t := range Types {
		if ts, ok := byType[t]; ok {
			stats = append(stats, *ts)
		}
	}
	return stats, sum
}

// Stats summarises active documents per type and overall
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.repo.CountByTypeAndStatus(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	stats, sum := aggregate(counts)
	return &Stats{Stats: stats, Total: sum}, nil
}

// QuickSearch returns the newest documents whose title, content or keywords contain q
func (s *Service) QuickSearch(ctx context.Context, q string) ([]Policy, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minSearchLength {
		return nil, apperrors.Validation("Search query must be at least 2 characters")
	}
	policies, err := s.repo.List(ctx, Query{
		Filter: Filter{Search: q},
		Sort:   DefaultSort,
		Limit:  quickSearchLimit,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return policies, nil
}

// Recent returns the most recently updated documents
func (s *Service) Recent(ctx context.Context) ([]Policy, error) {
	policies, err := s.repo.List(ctx, Query{
		Sort:  Sort{Field: "updatedAt", Desc: true},
		Limit: recentLimit,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return policies, nil
}

// ListByType returns every active document of type t, optionally narrowed to one status
func (s *Service) ListByType(ctx context.Context, t Type, status Status) ([]Policy, error) {
	if !t.Valid() {
		return nil, apperrors.Validation("Invalid policy type")
	}
	if err := validateFilter(t, status); err != nil {
		return nil, err
	}
	policies, err := s.repo.List(ctx, Query{
		Filter: Filter{Type: t, Status: status},
		Sort:   DefaultSort,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return policies, nil
}

// Dashboard combines the summary counts, per-type counts and the newest documents
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	counts, err := s.repo.CountByTypeAndStatus(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	recent, err := s.repo.List(ctx, Query{Sort: DefaultSort, Limit: recentLimit})
	if err != nil {
		return nil, mapError(err)
	}

	stats, sum := aggregate(counts)
	byType := make([]TypeCount, 0, len(stats))
	for _, ts := range stats {
		byType = append(byType, TypeCount{Type: ts.Type, Count: ts.Total})
	}
	return &Dashboard{Summary: sum, RecentPolicies: recent, PoliciesByType: byType}, nil
}
