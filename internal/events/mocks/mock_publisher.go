package mocks

import (
	"context"

	"invoiceapi/internal/events"

	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, ev events.InvoiceProcessed) {
	m.Called(ctx, ev)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
