package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.Mutex
	admins map[string]*Admin
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{admins: make(map[string]*Admin)}
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (*Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Email == email {
			c := *a
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *memoryRepository) Insert(_ context.Context, a *Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.admins {
		if existing.Email == a.Email {
			return ErrDuplicateEmail
		}
	}
	c := *a
	r.admins[a.ID] = &c
	return nil
}

func (r *memoryRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return ErrNotFound
	}
	a.LastLogin = &at
	return nil
}

func (r *memoryRepository) UpdatePassword(_ context.Context, id, hash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return ErrNotFound
	}
	a.Password = hash
	a.UpdatedAt = at
	return nil
}

func (r *memoryRepository) SetActive(_ context.Context, id string, active bool, at time.Time) (*Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.IsActive = active
	a.UpdatedAt = at
	c := *a
	return &c, nil
}

func (r *memoryRepository) filter(search string) []Admin {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []Admin
	for _, a := range r.admins {
		if search == "" || strings.Contains(strings.ToLower(a.Name), search) || strings.Contains(a.Email, search) {
			out = append(out, *a)
		}
	}
	return out
}

func (r *memoryRepository) Count(_ context.Context, search string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.filter(search)), nil
}

func (r *memoryRepository) List(_ context.Context, search string, limit, offset int) ([]Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := r.filter(search)
	if offset >= len(found) {
		return []Admin{}, nil
	}
	found = found[offset:]
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}
