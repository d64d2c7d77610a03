package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/lodging"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-lodging-reservation/internal/pkg/apperror"
	"github.com/sanosuguru/go-lodging-reservation/internal/pkg/metrics"
)

type lodgingTestDeps struct {
	txManager   *MockTxManager
	tx          *MockTx
	lodgingRepo *MockLodgingRepository
	resRepo     *MockReservationRepository
	cache       *MockCatalogInvalidator
	metrics     *metrics.Metrics
	service     *LodgingService
}

func newLodgingTestDeps() *lodgingTestDeps {
	d := &lodgingTestDeps{
		txManager:   new(MockTxManager),
		tx:          new(MockTx),
		lodgingRepo: new(MockLodgingRepository),
		resRepo:     new(MockReservationRepository),
		cache:       new(MockCatalogInvalidator),
		metrics:     metrics.NewWithRegistry(prometheus.NewRegistry()),
	}
	d.service = NewLodgingService(d.txManager, d.lodgingRepo, d.resRepo, d.cache,
		WithClock(func() time.Time { return testNow }),
		WithMetrics(d.metrics),
	)
	d.txManager.On("Begin", mock.Anything).Return(d.tx, nil)
	d.tx.On("Commit").Return(nil)
	d.tx.On("Rollback").Return(nil)
	return d
}

func reservationOn(t *testing.T, status reservation.Status, in, out string) *reservation.Reservation {
	t.Helper()
	stay, err := reservation.ParseStay(in, out)
	require.NoError(t, err)
	r := reservation.NewReservation("guest-1", "lodging-1", stay, 2, decimal.NewFromInt(30000), testNow.AddDate(0, -1, 0))
	r.Status = status
	return r
}

func TestLodgingService_CreateLodging(t *testing.T) {
	t.Run("正常系", func(t *testing.T) {
		deps := newLodgingTestDeps()
		ctx := context.Background()
		deps.lodgingRepo.On("Create", ctx, mock.AnythingOfType("*lodging.Lodging")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*lodging.Lodging).ID = "lodging-1"
			}).
			Return(nil)

		l, err := deps.service.CreateLodging(ctx, CreateLodgingInput{
			HostID:        " host-1 ",
			Name:          "海辺のコテージ",
			MaxCapacity:   6,
			PricePerNight: decimal.NewFromInt(20000),
		})

		require.NoError(t, err)
		assert.Equal(t, "lodging-1", l.ID)
		assert.Equal(t, "host-1", l.HostID)
		assert.Equal(t, lodging.StateActive, l.State)
	})

	t.Run("定員0は登録しない", func(t *testing.T) {
		deps := newLodgingTestDeps()

		_, err := deps.service.CreateLodging(context.Background(), CreateLodgingInput{
			HostID:        "host-1",
			Name:          "海辺のコテージ",
			PricePerNight: decimal.NewFromInt(20000),
		})

		assert.ErrorIs(t, err, lodging.ErrInvalidMaxCapacity)
		deps.lodgingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestLodgingService_BlockingReservationCount(t *testing.T) {
	deps := newLodgingTestDeps()
	ctx := context.Background()

	deps.lodgingRepo.On("GetByID", ctx, "lodging-1").Return(testLodging(), nil)
	deps.resRepo.On("FindByLodging", ctx, "lodging-1").Return([]*reservation.Reservation{
		reservationOn(t, reservation.StatusConfirmed, "2025-12-01", "2025-12-03"), // 今後
		reservationOn(t, reservation.StatusPending, "2025-11-18", "2025-11-20"),   // 本日チェックアウト
		reservationOn(t, reservation.StatusConfirmed, "2025-11-10", "2025-11-19"), // 終了済み
		reservationOn(t, reservation.StatusCancelled, "2025-12-10", "2025-12-12"),
		reservationOn(t, reservation.StatusCompleted, "2025-11-01", "2025-11-03"),
	}, nil)

	n, err := deps.service.BlockingReservationCount(ctx, "lodging-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ok, err := deps.service.CanDeactivateLodging(ctx, "lodging-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLodgingService_CanDeactivateLodging_NotFound(t *testing.T) {
	deps := newLodgingTestDeps()
	ctx := context.Background()
	deps.lodgingRepo.On("GetByID", ctx, "missing").Return(nil, lodging.ErrLodgingNotFound)

	_, err := deps.service.CanDeactivateLodging(ctx, "missing")

	assert.ErrorIs(t, err, lodging.ErrLodgingNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestLodgingService_RetireLodging(t *testing.T) {
	t.Run("正常系: キャッシュを無効化する", func(t *testing.T) {
		deps := newLodgingTestDeps()
		ctx := context.Background()
		l := testLodging()

		deps.lodgingRepo.On("GetForUpdate", ctx, deps.tx, "lodging-1").Return(l, nil)
		deps.resRepo.On("FindBlockingByLodging", ctx, deps.tx, "lodging-1").Return([]*reservation.Reservation{
			reservationOn(t, reservation.StatusConfirmed, "2025-11-10", "2025-11-19"),
		}, nil)
		deps.lodgingRepo.On("Update", ctx, deps.tx, l).Return(nil)
		deps.cache.On("Invalidate", ctx, "lodging-1").Return(nil)

		retired, err := deps.service.RetireLodging(ctx, "lodging-1", "host-1")

		require.NoError(t, err)
		assert.Equal(t, lodging.StateRetired, retired.State)
		require.NotNil(t, retired.RetiredAt)
		deps.tx.AssertCalled(t, "Commit")
		deps.cache.AssertCalled(t, "Invalidate", ctx, "lodging-1")
		assert.Equal(t, 1.0, testutil.ToFloat64(deps.metrics.LodgingRetirementsTotal.WithLabelValues("retired")))
	})

	t.Run("有効な予約があると件数付きで拒否", func(t *testing.T) {
		deps := newLodgingTestDeps()
		ctx := context.Background()

		deps.lodgingRepo.On("GetForUpdate", ctx, deps.tx, "lodging-1").Return(testLodging(), nil)
		deps.resRepo.On("FindBlockingByLodging", ctx, deps.tx, "lodging-1").Return([]*reservation.Reservation{
			reservationOn(t, reservation.StatusConfirmed, "2025-12-01", "2025-12-03"),
			reservationOn(t, reservation.StatusPending, "2025-12-05", "2025-12-07"),
		}, nil)

		_, err := deps.service.RetireLodging(ctx, "lodging-1", "host-1")

		assert.ErrorIs(t, err, lodging.ErrLodgingHasActiveReservations)
		assert.Contains(t, err.Error(), "(2 blocking reservations)")
		deps.lodgingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		deps.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
		assert.Equal(t, 1.0, testutil.ToFloat64(deps.metrics.LodgingRetirementsTotal.WithLabelValues("blocked")))
	})

	t.Run("ホスト以外は退役できない", func(t *testing.T) {
		deps := newLodgingTestDeps()
		ctx := context.Background()
		deps.lodgingRepo.On("GetForUpdate", ctx, deps.tx, "lodging-1").Return(testLodging(), nil)

		_, err := deps.service.RetireLodging(ctx, "lodging-1", "someone-else")

		assert.ErrorIs(t, err, lodging.ErrNotLodgingHost)
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
		deps.resRepo.AssertNotCalled(t, "FindBlockingByLodging", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("退役済み", func(t *testing.T) {
		deps := newLodgingTestDeps()
		ctx := context.Background()
		l := testLodging()
		require.NoError(t, l.Retire(testNow))
		deps.lodgingRepo.On("GetForUpdate", ctx, deps.tx, "lodging-1").Return(l, nil)

		_, err := deps.service.RetireLodging(ctx, "lodging-1", "host-1")

		assert.ErrorIs(t, err, lodging.ErrLodgingAlreadyRetired)
		assert.Equal(t, 1.0, testutil.ToFloat64(deps.metrics.LodgingRetirementsTotal.WithLabelValues("error")))
	})

	t.Run("キャッシュ無効化の失敗は退役を妨げない", func(t *testing.T) {
		deps := newLodgingTestDeps()
		ctx := context.Background()
		l := testLodging()

		deps.lodgingRepo.On("GetForUpdate", ctx, deps.tx, "lodging-1").Return(l, nil)
		deps.resRepo.On("FindBlockingByLodging", ctx, deps.tx, "lodging-1").Return([]*reservation.Reservation{}, nil)
		deps.lodgingRepo.On("Update", ctx, deps.tx, l).Return(nil)
		deps.cache.On("Invalidate", ctx, "lodging-1").Return(errors.New("redis down"))

		retired, err := deps.service.RetireLodging(ctx, "lodging-1", "host-1")

		require.NoError(t, err)
		assert.Equal(t, lodging.StateRetired, retired.State)
	})

	t.Run("Update失敗", func(t *testing.T) {
		deps := newLodgingTestDeps()
		ctx := context.Background()
		l := testLodging()

		deps.lodgingRepo.On("GetForUpdate", ctx, deps.tx, "lodging-1").Return(l, nil)
		deps.resRepo.On("FindBlockingByLodging", ctx, deps.tx, "lodging-1").Return([]*reservation.Reservation{}, nil)
		deps.lodgingRepo.On("Update", ctx, deps.tx, l).Return(errors.New("db error"))

		_, err := deps.service.RetireLodging(ctx, "lodging-1", "host-1")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "宿泊施設の更新に失敗")
		deps.tx.AssertNotCalled(t, "Commit")
	})
}

func TestLodgingService_Quote(t *testing.T) {
	deps := newLodgingTestDeps()
	ctx := context.Background()
	deps.lodgingRepo.On("GetByID", ctx, "lodging-1").Return(testLodging(), nil)

	q, err := deps.service.Quote(ctx, "lodging-1", "2025-12-01", "2025-12-04")

	require.NoError(t, err)
	assert.Equal(t, 3, q.Nights)
	assert.True(t, decimal.NewFromInt(45000).Equal(q.Total))

	_, err = deps.service.Quote(ctx, "lodging-1", "2025-12-04", "2025-12-01")
	assert.ErrorIs(t, err, reservation.ErrInvalidStayRange)
}

func TestLodgingService_ListHostLodgings(t *testing.T) {
	deps := newLodgingTestDeps()
	ctx := context.Background()
	deps.lodgingRepo.On("ListByHost", ctx, "host-1", 100, 0).Return([]*lodging.Lodging{testLodging()}, nil)

	list, err := deps.service.ListHostLodgings(ctx, "host-1", 1000, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = deps.service.ListHostLodgings(ctx, "", 10, 0)
	assert.ErrorIs(t, err, lodging.ErrHostIDRequired)
}
