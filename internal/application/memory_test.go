package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/lodging"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/review"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/transaction"
)

// memoryStore はテスト用のインメモリストア
// トランザクションは txMu で直列化し、PostgreSQL の行ロックの代わりとする
type memoryStore struct {
	txMu sync.Mutex

	mu           sync.RWMutex
	seq          int
	lodgings     map[string]lodging.Lodging
	reservations map[string]reservation.Reservation
	reviews      map[string]review.Review
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		lodgings:     map[string]lodging.Lodging{},
		reservations: map[string]reservation.Reservation{},
		reviews:      map[string]review.Review{},
	}
}

func (s *memoryStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// --- transaction.Manager ---

type memTx struct {
	store *memoryStore
	once  sync.Once
}

func (t *memTx) Commit() error {
	t.once.Do(t.store.txMu.Unlock)
	return nil
}

func (t *memTx) Rollback() error {
	t.once.Do(t.store.txMu.Unlock)
	return nil
}

type memTxManager struct{ store *memoryStore }

func (m memTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	m.store.txMu.Lock()
	return &memTx{store: m.store}, nil
}

// --- lodging.Repository ---

type memLodgings struct{ store *memoryStore }

func (r memLodgings) GetByID(_ context.Context, id string) (*lodging.Lodging, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	l, ok := r.store.lodgings[id]
	if !ok {
		return nil, lodging.ErrLodgingNotFound
	}
	return &l, nil
}

func (r memLodgings) Create(_ context.Context, l *lodging.Lodging) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	l.ID = r.store.nextID("lodging")
	r.store.lodgings[l.ID] = *l
	return nil
}

func (r memLodgings) GetForUpdate(ctx context.Context, _ transaction.Tx, id string) (*lodging.Lodging, error) {
	return r.GetByID(ctx, id)
}

func (r memLodgings) Update(_ context.Context, _ transaction.Tx, l *lodging.Lodging) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.lodgings[l.ID]; !ok {
		return lodging.ErrLodgingNotFound
	}
	r.store.lodgings[l.ID] = *l
	return nil
}

func (r memLodgings) ListByHost(_ context.Context, hostID string, limit, offset int) ([]*lodging.Lodging, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []*lodging.Lodging
	for _, l := range r.store.lodgings {
		if l.HostID == hostID {
			l := l
			result = append(result, &l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return page(result, limit, offset), nil
}

// --- reservation.Repository ---

type memReservations struct{ store *memoryStore }

func (r memReservations) Create(_ context.Context, _ transaction.Tx, res *reservation.Reservation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	res.ID = r.store.nextID("res")
	r.store.reservations[res.ID] = *res
	return nil
}

func (r memReservations) GetByID(_ context.Context, id string) (*reservation.Reservation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	res, ok := r.store.reservations[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	return &res, nil
}

func (r memReservations) GetForUpdate(ctx context.Context, _ transaction.Tx, id string) (*reservation.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r memReservations) GetByGuestID(_ context.Context, guestID string, limit, offset int) ([]*reservation.Reservation, error) {
	return r.filter(func(res reservation.Reservation) bool { return res.GuestID == guestID }, limit, offset), nil
}

func (r memReservations) FindByLodging(_ context.Context, lodgingID string) ([]*reservation.Reservation, error) {
	return r.filter(func(res reservation.Reservation) bool { return res.LodgingID == lodgingID }, 0, 0), nil
}

func (r memReservations) FindBlockingByLodging(_ context.Context, _ transaction.Tx, lodgingID string) ([]*reservation.Reservation, error) {
	return r.filter(func(res reservation.Reservation) bool {
		return res.LodgingID == lodgingID && res.Status.IsBlocking()
	}, 0, 0), nil
}

func (r memReservations) Update(_ context.Context, _ transaction.Tx, res *reservation.Reservation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.reservations[res.ID]; !ok {
		return reservation.ErrReservationNotFound
	}
	r.store.reservations[res.ID] = *res
	return nil
}

func (r memReservations) FindCompletable(_ context.Context, today time.Time, limit int) ([]*reservation.Reservation, error) {
	day := reservation.DateOf(today)
	return r.filter(func(res reservation.Reservation) bool {
		return res.Status == reservation.StatusConfirmed && !res.CheckOut.After(day)
	}, limit, 0), nil
}

func (r memReservations) filter(keep func(reservation.Reservation) bool, limit, offset int) []*reservation.Reservation {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []*reservation.Reservation
	for _, res := range r.store.reservations {
		if keep(res) {
			res := res
			result = append(result, &res)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CheckIn.Before(result[j].CheckIn) })
	return page(result, limit, offset)
}

// --- review.Repository ---

type memReviews struct{ store *memoryStore }

func (r memReviews) Create(_ context.Context, rv *review.Review) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.reviews {
		if existing.ReservationID == rv.ReservationID {
			return review.ErrReviewAlreadyExists
		}
	}
	rv.ID = r.store.nextID("review")
	r.store.reviews[rv.ID] = *rv
	return nil
}

func (r memReviews) ExistsByReservation(_ context.Context, reservationID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, rv := range r.store.reviews {
		if rv.ReservationID == reservationID {
			return true, nil
		}
	}
	return false, nil
}

func (r memReviews) ListByLodging(_ context.Context, lodgingID string, limit, offset int) ([]*review.Review, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []*review.Review
	for _, rv := range r.store.reviews {
		if rv.LodgingID == lodgingID {
			rv := rv
			result = append(result, &rv)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return page(result, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// fakeClock はテストから進められる時計
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// testEnv はインメモリストアで組み立てたサービス一式
type testEnv struct {
	store        *memoryStore
	clock        *fakeClock
	notifier     *recordingNotifier
	reservations *ReservationService
	lodgings     *LodgingService
	reviews      *ReviewService
}

func newTestEnv(now time.Time, policy BookingPolicy) *testEnv {
	store := newMemoryStore()
	clock := newFakeClock(now)
	notifier := newRecordingNotifier()
	txm := memTxManager{store: store}
	lr := memLodgings{store: store}
	rr := memReservations{store: store}

	opts := []Option{WithClock(clock.Now), WithNotifier(notifier), WithBookingPolicy(policy)}
	return &testEnv{
		store:        store,
		clock:        clock,
		notifier:     notifier,
		reservations: NewReservationService(txm, rr, lr, nil, nil, opts...),
		lodgings:     NewLodgingService(txm, lr, rr, nil, opts...),
		reviews:      NewReviewService(rr, memReviews{store: store}, opts...),
	}
}
