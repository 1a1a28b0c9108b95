package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/shared"
	"github.com/clynova/cantabria-cart/internal/domain/shared/valueobject"
)

// MockCartRepository is a mock implementation of cart.Repository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockSnapshotProvider is a mock implementation of cart.SnapshotProvider
type MockSnapshotProvider struct {
	mock.Mock
}

func (m *MockSnapshotProvider) VariantSnapshot(ctx context.Context, productID, variantID uuid.UUID) (*cart.VariantSnapshot, error) {
	args := m.Called(ctx, productID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.VariantSnapshot), args.Error(1)
}

// MockRemoteCartGateway is a mock implementation of cart.RemoteCartGateway
type MockRemoteCartGateway struct {
	mock.Mock
}

func (m *MockRemoteCartGateway) FetchCart(ctx context.Context, userID uuid.UUID) ([]cart.RemoteLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.RemoteLine), args.Error(1)
}

func (m *MockRemoteCartGateway) AddLine(ctx context.Context, userID uuid.UUID, line cart.RemoteLine) error {
	args := m.Called(ctx, userID, line)
	return args.Error(0)
}

func (m *MockRemoteCartGateway) UpdateQuantity(ctx context.Context, userID uuid.UUID, key cart.LineKey, quantity int, mode cart.QuantityMode) error {
	args := m.Called(ctx, userID, key, quantity, mode)
	return args.Error(0)
}

func (m *MockRemoteCartGateway) RemoveLine(ctx context.Context, userID uuid.UUID, key cart.LineKey) error {
	args := m.Called(ctx, userID, key)
	return args.Error(0)
}

func (m *MockRemoteCartGateway) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockReconcileGuard is a mock implementation of ReconcileGuard
type MockReconcileGuard struct {
	mock.Mock
}

func (m *MockReconcileGuard) Begin(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReconcileGuard) End(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

func clpPtr(amount int64) *valueobject.Money {
	m := valueobject.NewMoneyCLPFromInt(amount)
	return &m
}

func testSnapshot(priceCLP int64, stock int) *cart.VariantSnapshot {
	weight, _ := valueobject.NewWeightFromFloat(500, valueobject.WeightGrams)
	return &cart.VariantSnapshot{
		Price:      clpPtr(priceCLP),
		Stock:      stock,
		UnitWeight: weight,
	}
}

func cartWithLine(userID uuid.UUID, productID, variantID uuid.UUID, quantity, stock int) *cart.Cart {
	c := cart.NewCart(userID, cart.OriginLocal)
	line, _ := cart.NewLine(c.ID, productID, variantID, quantity, *testSnapshot(1000, stock))
	c.UpsertLine(*line)
	return c
}
