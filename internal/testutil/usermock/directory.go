package usermock

import (
	"context"

	domain "loanledger/internal/domain/user"
)

var _ domain.Directory = (*Directory)(nil)

// Directory resolves only the users it was seeded with.
type Directory struct {
	FindUserFn func(ctx context.Context, userID string) (*domain.User, error)
	Users      map[string]*domain.User
}

func (m *Directory) FindUser(ctx context.Context, userID string) (*domain.User, error) {
	if m.FindUserFn != nil {
		return m.FindUserFn(ctx, userID)
	}
	if u, ok := m.Users[userID]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

// With returns a directory that knows the given user ids.
func With(userIDs ...string) *Directory {
	d := &Directory{Users: map[string]*domain.User{}}
	for _, id := range userIDs {
		d.Users[id] = &domain.User{UserID: id, Name: "user " + id}
	}
	return d
}
