package memory

import (
	"context"

	"github.com/finanzcord/finanzcord/internal/domain/access"
	"github.com/finanzcord/finanzcord/internal/domain/user"
)

type UsersRepo struct {
	s *state
}

func (r *UsersRepo) emailTaken(email string, exceptID int64) bool {
	for id, u := range r.s.users {
		if id != exceptID && !u.IsDeleted && u.Email == email {
			return true
		}
	}
	return false
}

func (r *UsersRepo) Create(_ context.Context, name, email, passwordHash string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(email, 0) {
		return 0, user.ErrEmailTaken
	}

	r.s.nextUser++
	id := r.s.nextUser
	r.s.users[id] = user.User{ID: id, Name: name, Email: email, PasswordHash: passwordHash}
	return id, nil
}

func (r *UsersRepo) GetActiveByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, id := range sortedKeys(r.s.users) {
		u := r.s.users[id]
		if !u.IsDeleted && u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok || u.IsDeleted {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) List(context.Context) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]user.User, 0, len(r.s.users))
	for _, id := range sortedKeys(r.s.users) {
		if u := r.s.users[id]; !u.IsDeleted {
			out = append(out, user.User{ID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	return out, nil
}

func (r *UsersRepo) self(id int64, callerEmail string) (user.User, error) {
	u, ok := r.s.users[id]
	if !ok || u.IsDeleted {
		return user.User{}, user.ErrNotFound
	}
	if u.Email != callerEmail {
		return user.User{}, access.ErrForbidden
	}
	return u, nil
}

func (r *UsersRepo) Update(_ context.Context, id int64, callerEmail string, ch user.Changes) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, err := r.self(id, callerEmail)
	if err != nil {
		return "", err
	}
	previous := u.Email

	if ch.Email != nil && *ch.Email != previous && r.emailTaken(*ch.Email, id) {
		return "", user.ErrEmailTaken
	}
	if ch.Name != nil {
		u.Name = *ch.Name
	}
	if ch.Email != nil {
		u.Email = *ch.Email
	}
	if ch.PasswordHash != nil {
		u.PasswordHash = *ch.PasswordHash
	}
	r.s.users[id] = u
	return previous, nil
}

func (r *UsersRepo) Delete(_ context.Context, id int64, callerEmail string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, err := r.self(id, callerEmail)
	if err != nil {
		return err
	}
	if id == user.AdminID {
		return user.ErrAdminProtected
	}
	u.IsDeleted = true
	r.s.users[id] = u
	return nil
}

func (r *UsersRepo) SetPasswordHash(_ context.Context, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = hash
	r.s.users[id] = u
	return nil
}
