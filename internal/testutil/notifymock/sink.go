package notifymock

import (
	"context"
	"sync"

	domain "loanledger/internal/domain/notification"
)

var _ domain.Sink = (*Sink)(nil)

type Sent struct {
	UserID   string
	Message  string
	Category domain.Category
}

// Sink records every notification it is handed.
type Sink struct {
	mu   sync.Mutex
	sent []Sent
}

func (s *Sink) Notify(_ context.Context, userID, message string, category domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Sent{UserID: userID, Message: message, Category: category})
}

func (s *Sink) Sent() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Sent(nil), s.sent...)
}

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn       func(ctx context.Context, n *domain.Notification) error
	GetByIDFn      func(ctx context.Context, id uint64) (*domain.Notification, error)
	ListByUserIDFn func(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkReadFn     func(ctx context.Context, id uint64) error
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) Create(ctx context.Context, n *domain.Notification) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, n)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Notification, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByUserID(ctx context.Context, userID string) ([]domain.Notification, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) MarkRead(ctx context.Context, id uint64) error {
	if m.MarkReadFn != nil {
		return m.MarkReadFn(ctx, id)
	}
	return nil
}
