package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/lodging"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-lodging-reservation/internal/infrastructure/redis"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockReservationRepository implements reservation.Repository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, tx transaction.Tx, r *reservation.Reservation) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*reservation.Reservation, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetByGuestID(ctx context.Context, guestID string, limit, offset int) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, guestID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindByLodging(ctx context.Context, lodgingID string) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, lodgingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindBlockingByLodging(ctx context.Context, tx transaction.Tx, lodgingID string) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, tx, lodgingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Update(ctx context.Context, tx transaction.Tx, r *reservation.Reservation) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) FindCompletable(ctx context.Context, today time.Time, limit int) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, today, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

// MockLodgingRepository implements lodging.Repository
type MockLodgingRepository struct {
	mock.Mock
}

func (m *MockLodgingRepository) GetByID(ctx context.Context, id string) (*lodging.Lodging, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lodging.Lodging), args.Error(1)
}

func (m *MockLodgingRepository) Create(ctx context.Context, l *lodging.Lodging) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLodgingRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*lodging.Lodging, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lodging.Lodging), args.Error(1)
}

func (m *MockLodgingRepository) Update(ctx context.Context, tx transaction.Tx, l *lodging.Lodging) error {
	args := m.Called(ctx, tx, l)
	return args.Error(0)
}

func (m *MockLodgingRepository) ListByHost(ctx context.Context, hostID string, limit, offset int) ([]*lodging.Lodging, error) {
	args := m.Called(ctx, hostID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lodging.Lodging), args.Error(1)
}

// MockLockManager implements redisinfra.LockManagerInterface
type MockLockManager struct {
	mock.Mock
}

func (m *MockLockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

func (m *MockLockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryInterval time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl, maxRetries, retryInterval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

// MockLock implements redisinfra.Lock
type MockLock struct {
	mock.Mock
}

func (m *MockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLock) Extend(ctx context.Context, ttl time.Duration) error {
	args := m.Called(ctx, ttl)
	return args.Error(0)
}

// MockCatalogInvalidator implements CatalogInvalidator
type MockCatalogInvalidator struct {
	mock.Mock
}

func (m *MockCatalogInvalidator) Invalidate(ctx context.Context, lodgingID string) error {
	args := m.Called(ctx, lodgingID)
	return args.Error(0)
}

// recordingNotifier は送信されたイベントをチャネルに流す Notifier
type recordingNotifier struct {
	events chan reservation.Event
	err    error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(chan reservation.Event, 256)}
}

func (n *recordingNotifier) Notify(_ context.Context, event reservation.Event) error {
	n.events <- event
	return n.err
}
