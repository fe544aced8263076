package kv

import (
	"context"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/kvstore"
	"storefront/internal/repository"
)

const UsersKey = "users"

// userRecord carries the password hash, which the public JSON form omits.
type userRecord struct {
	domain.User
	PasswordHash string `json:"passwordHash"`
}

type userRepo struct {
	store kvstore.Store
	mu    sync.Mutex
}

func NewUserRepository(store kvstore.Store) repository.UserRepository {
	return &userRepo{store: store}
}

func (r *userRepo) load(ctx context.Context) ([]domain.User, error) {
	var recs []userRecord
	if _, err := kvstore.LoadJSON(ctx, r.store, UsersKey, &recs); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(recs))
	for _, rec := range recs {
		u := rec.User
		u.PasswordHash = rec.PasswordHash
		users = append(users, u)
	}
	return users, nil
}

func (r *userRepo) save(ctx context.Context, users []domain.User) error {
	recs := make([]userRecord, 0, len(users))
	for _, u := range users {
		recs = append(recs, userRecord{User: u, PasswordHash: u.PasswordHash})
	}
	return kvstore.SetJSON(ctx, r.store, UsersKey, recs)
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	return r.save(ctx, append(users, *user))
}

func (r *userRepo) find(ctx context.Context, match func(domain.User) bool) (*domain.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if match(users[i]) {
			return &users[i], nil
		}
	}
	return nil, nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.ID == id })
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.Email == email })
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = *user
			return r.save(ctx, users)
		}
	}
	return nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	users, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(users)), nil
}
