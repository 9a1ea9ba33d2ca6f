package database

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMessageRepository) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Message), args.Error(1)
}

func (m *MockMessageRepository) MessagesByRoom(ctx context.Context, room string, limit int) ([]Message, error) {
	args := m.Called(ctx, room, limit)
	if msgs, ok := args.Get(0).([]Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}
