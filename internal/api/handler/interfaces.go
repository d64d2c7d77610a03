package handler

import (
	"context"

	"github.com/sanosuguru/go-lodging-reservation/internal/application"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/lodging"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/review"
)

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (*reservation.Reservation, error)
	GetReservation(ctx context.Context, id string) (*reservation.Reservation, error)
	GetGuestReservations(ctx context.Context, guestID string, limit, offset int) ([]*reservation.Reservation, error)
	ConfirmReservation(ctx context.Context, id, hostID string) (*reservation.Reservation, error)
	CancelReservation(ctx context.Context, id, reason string) (*reservation.Reservation, error)
	CompleteReservation(ctx context.Context, id string) (*reservation.Reservation, error)
}

// LodgingServiceInterface は宿泊施設サービスのインターフェース
type LodgingServiceInterface interface {
	CreateLodging(ctx context.Context, input application.CreateLodgingInput) (*lodging.Lodging, error)
	GetLodging(ctx context.Context, id string) (*lodging.Lodging, error)
	ListHostLodgings(ctx context.Context, hostID string, limit, offset int) ([]*lodging.Lodging, error)
	Quote(ctx context.Context, id, checkIn, checkOut string) (*application.Quote, error)
	BlockingReservationCount(ctx context.Context, id string) (int, error)
	RetireLodging(ctx context.Context, id, hostID string) (*lodging.Lodging, error)
}

// AvailabilityCheckerInterface は空き状況照会のインターフェース
type AvailabilityCheckerInterface interface {
	CheckAvailability(ctx context.Context, lodgingID, checkIn, checkOut string) (*application.Availability, error)
}

// ReviewServiceInterface はレビューサービスのインターフェース
type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, input application.CreateReviewInput) (*review.Review, error)
	ListLodgingReviews(ctx context.Context, lodgingID string, limit, offset int) ([]*review.Review, error)
}
