package memory

import (
	"context"

	"rescuesim/internal/app/ports"
)

type UserRepo struct {
	store *Store
}

func NewUserRepo(store *Store) UserRepo {
	return UserRepo{store: store}
}

func (r UserRepo) Create(ctx context.Context, user ports.UserRecord) error {
	defer r.store.lock(ctx)()
	if _, ok := r.store.emails[user.Email]; ok {
		return ports.ErrConflict
	}
	if _, ok := r.store.users[user.UserID]; ok {
		return ports.ErrConflict
	}
	user.PasswordHash = append([]byte(nil), user.PasswordHash...)
	r.store.users[user.UserID] = user
	r.store.emails[user.Email] = user.UserID
	return nil
}

func (r UserRepo) GetByEmail(ctx context.Context, email string) (ports.UserRecord, error) {
	defer r.store.lock(ctx)()
	id, ok := r.store.emails[email]
	if !ok {
		return ports.UserRecord{}, ports.ErrNotFound
	}
	return r.store.users[id], nil
}

func (r UserRepo) GetByID(ctx context.Context, userID string) (ports.UserRecord, error) {
	defer r.store.lock(ctx)()
	user, ok := r.store.users[userID]
	if !ok {
		return ports.UserRecord{}, ports.ErrNotFound
	}
	return user, nil
}
