// Package testutil holds in-memory collaborators shared by package tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/clientdesk/backend/internal/models"
	"github.com/clientdesk/backend/internal/repository"
	"github.com/google/uuid"
)

// UserRepository is a map-backed repository.UserRepository. Setting Err makes
// every call fail with it.
type UserRepository struct {
	mu     sync.Mutex
	users  map[uuid.UUID]models.User
	order  []uuid.UUID
	Err    error
	Writes int
}

func NewUserRepository(seed ...models.User) *UserRepository {
	r := &UserRepository{users: make(map[uuid.UUID]models.User)}
	for _, u := range seed {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		if u.Status == "" {
			u.Status = models.StatusActive
		}
		r.users[u.ID] = u
		r.order = append(r.order, u.ID)
	}
	return r
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, id := range r.order {
		if u := r.users[id]; u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Status == "" {
		user.Status = models.StatusActive
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	r.order = append(r.order, user.ID)
	r.Writes++
	return nil
}

func (r *UserRepository) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLoginAt = &at
	r.users[id] = u
	r.Writes++
	return nil
}

func (r *UserRepository) ListClients(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	clients := []models.User{}
	for _, id := range r.order {
		if u, ok := r.users[id]; ok && !u.IsAdmin {
			clients = append(clients, u)
		}
	}
	return clients, nil
}

func (r *UserRepository) UpdateClient(_ context.Context, id uuid.UUID, fields repository.ClientFields) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.users[id]
	if !ok || u.IsAdmin {
		return nil, repository.ErrNotFound
	}
	if fields.Email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *fields.Email {
				return nil, repository.ErrDuplicateEmail
			}
		}
		u.Email = *fields.Email
	}
	if fields.Name != nil {
		u.Name = *fields.Name
	}
	if fields.BusinessType != nil {
		bt := *fields.BusinessType
		u.BusinessType = &bt
	}
	if !fields.Empty() {
		u.UpdatedAt = time.Now()
		r.Writes++
	}
	r.users[id] = u
	return &u, nil
}

func (r *UserRepository) DeleteClient(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	u, ok := r.users[id]
	if !ok || u.IsAdmin {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.Writes++
	return nil
}

// Get returns a copy of the stored user, bypassing Err.
func (r *UserRepository) Get(id uuid.UUID) (models.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	return u, ok
}

func (r *UserRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// HasherStub "hashes" by prefixing, so tests stay fast and deterministic.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(hash, plain string) error
}

func (h HasherStub) Hash(plain string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(plain)
	}
	return "hash:" + plain, nil
}

func (h HasherStub) Compare(hash, plain string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, plain)
	}
	if hash != "hash:"+plain {
		return errMismatch
	}
	return nil
}
