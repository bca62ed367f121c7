package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// MockRepository is a mock implementation of rule.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Load(ctx context.Context) ([]*rule.Rule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rule.Rule), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, rules []*rule.Rule) error {
	args := m.Called(ctx, rules)
	return args.Error(0)
}

// Update runs fn between the mocked Load and Save calls.
func (m *MockRepository) Update(ctx context.Context, fn rule.UpdateFunc) error {
	current, err := m.Load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return m.Save(ctx, next)
}
