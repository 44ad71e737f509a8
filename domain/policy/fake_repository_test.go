package policy

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryRepository is an in-memory Repository with the same uniqueness and
// soft-delete rules as the Postgres schema.
type memoryRepository struct {
	mu       sync.Mutex
	policies map[string]*Policy
	order    []string
	admins   map[string]AdminRef
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		policies: make(map[string]*Policy),
		admins:   make(map[string]AdminRef),
	}
}

func clonePolicy(p *Policy) *Policy {
	c := *p
	c.Keywords = append([]string{}, p.Keywords...)
	if p.LastUpdatedBy != nil {
		ref := *p.LastUpdatedBy
		c.LastUpdatedBy = &ref
	}
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

func (r *memoryRepository) view(p *Policy) *Policy {
	c := clonePolicy(p)
	if c.LastUpdatedBy != nil {
		if ref, ok := r.admins[c.LastUpdatedBy.ID]; ok {
			c.LastUpdatedBy = &ref
		}
	}
	return c
}

func (r *memoryRepository) slugTaken(slug, exceptID string) bool {
	for id, p := range r.policies {
		if id != exceptID && p.IsActive && p.Slug == slug {
			return true
		}
	}
	return false
}

func (r *memoryRepository) Insert(_ context.Context, p *Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken(p.Slug, p.ID) {
		return ErrDuplicateSlug
	}
	r.policies[p.ID] = clonePolicy(p)
	r.order = append(r.order, p.ID)
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.policies[id]
	if !ok || !p.IsActive {
		return nil, ErrNotFound
	}
	return r.view(p), nil
}

func (r *memoryRepository) FindPublishedBySlug(_ context.Context, slug string) (*Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.policies {
		if p.IsActive && p.Status == StatusPublished && p.Slug == slug {
			p.Views++
			return r.view(p), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) Update(_ context.Context, id string, mutate func(p *Policy) error) (*Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.policies[id]
	if !ok || !stored.IsActive {
		return nil, ErrNotFound
	}
	p := clonePolicy(stored)
	if err := mutate(p); err != nil {
		return nil, err
	}
	if r.slugTaken(p.Slug, id) {
		return nil, ErrDuplicateSlug
	}
	r.policies[id] = p
	return r.view(p), nil
}

func (r *memoryRepository) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.policies[id]
	if !ok || !p.IsActive {
		return ErrNotFound
	}
	p.IsActive = false
	p.UpdatedAt = at
	return nil
}

func (r *memoryRepository) matching(f Filter) []*Policy {
	search := strings.ToLower(f.Search)
	var out []*Policy
	for _, id := range r.order {
		p := r.policies[id]
		if !p.IsActive || (f.Type != "" && p.Type != f.Type) || (f.Status != "" && p.Status != f.Status) {
			continue
		}
		if search != "" && !containsFold(p, search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsFold(p *Policy, search string) bool {
	if strings.Contains(strings.ToLower(p.Title), search) || strings.Contains(strings.ToLower(p.Content), search) {
		return true
	}
	for _, k := range p.Keywords {
		if strings.Contains(strings.ToLower(k), search) {
			return true
		}
	}
	return false
}

func (r *memoryRepository) Count(_ context.Context, f Filter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matching(f)), nil
}

func (r *memoryRepository) List(_ context.Context, q Query) ([]Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := r.matching(q.Filter)

	key := func(p *Policy) time.Time { return p.CreatedAt }
	if q.Sort.Field == "updatedAt" {
		key = func(p *Policy) time.Time { return p.UpdatedAt }
	}
	sort.SliceStable(found, func(i, j int) bool {
		if q.Sort.Desc {
			return key(found[i]).After(key(found[j]))
		}
		return key(found[i]).Before(key(found[j]))
	})

	if q.Offset > len(found) {
		found = nil
	} else {
		found = found[q.Offset:]
	}
	if q.Limit > 0 && len(found) > q.Limit {
		found = found[:q.Limit]
	}

	out := make([]Policy, 0, len(found))
	for _, p := range found {
		out = append(out, *r.view(p))
	}
	return out, nil
}

func (r *memoryRepository) BulkUpdateStatus(_ context.Context, ids []string, status Status, by string, at time.Time) (BulkResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res BulkResult
	for _, id := range ids {
		p, ok := r.policies[id]
		if !ok || !p.IsActive {
			continue
		}
		res.MatchedCount++
		if p.Status == status {
			continue
		}
		res.ModifiedCount++
		p.Status = status
		p.LastUpdatedBy = &AdminRef{ID: by}
		p.UpdatedAt = at
		if status == StatusPublished && p.PublishedAt == nil {
			t := at
			p.PublishedAt = &t
		}
	}
	return res, nil
}

func (r *memoryRepository) CountByTypeAndStatus(_ context.Context) ([]StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buckets := make(map[[2]string]*StatusCount)
	for _, p := range r.matching(Filter{}) {
		k := [2]string{string(p.Type), string(p.Status)}
		if buckets[k] == nil {
			buckets[k] = &StatusCount{Type: p.Type, Status: p.Status}
		}
		buckets[k].Count++
		buckets[k].Views += p.Views
	}
	out := make([]StatusCount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	return out, nil
}
