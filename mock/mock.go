// Package mock provides testify mocks for the courier service interfaces.
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/storinews/courier"
)

// NewsletterStore is a mock courier.NewsletterStore.
type NewsletterStore struct {
	mock.Mock
}

func (m *NewsletterStore) Create(ctx context.Context, n *courier.Newsletter) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *NewsletterStore) FindByName(ctx context.Context, name string) (*courier.Newsletter, error) {
	args := m.Called(ctx, name)
	if n := args.Get(0); n != nil {
		return n.(*courier.Newsletter), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NewsletterStore) Summaries(ctx context.Context) ([]courier.Summary, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.([]courier.Summary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NewsletterStore) AddEmail(ctx context.Context, name, email string) error {
	args := m.Called(ctx, name, email)
	return args.Error(0)
}

func (m *NewsletterStore) RemoveEmail(ctx context.Context, name, email string) error {
	args := m.Called(ctx, name, email)
	return args.Error(0)
}

func (m *NewsletterStore) IncrementSentCount(ctx context.Context, name string, by int) error {
	args := m.Called(ctx, name, by)
	return args.Error(0)
}

// Mailer is a mock courier.Mailer.
type Mailer struct {
	mock.Mock
}

func (m *Mailer) Send(ctx context.Context, msg *courier.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// Stager is a mock courier.Stager.
type Stager struct {
	mock.Mock
}

func (m *Stager) Stage(ctx context.Context, key string) (string, func() error, error) {
	args := m.Called(ctx, key)
	var cleanup func() error
	if fn := args.Get(1); fn != nil {
		cleanup = fn.(func() error)
	}
	return args.String(0), cleanup, args.Error(2)
}
