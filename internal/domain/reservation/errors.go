package reservation

import "github.com/sanosuguru/go-lodging-reservation/internal/pkg/apperror"

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound = apperror.New(apperror.KindNotFound, "reservation not found")

	ErrGuestIDRequired      = apperror.New(apperror.KindValidation, "guest id is required")
	ErrLodgingIDRequired    = apperror.New(apperror.KindValidation, "lodging id is required")
	ErrInvalidDate          = apperror.New(apperror.KindValidation, "invalid date, expected YYYY-MM-DD")
	ErrCheckInInPast        = apperror.New(apperror.KindValidation, "check-in date cannot be in the past")
	ErrInvalidStayRange     = apperror.New(apperror.KindValidation, "check-out date must be after check-in date")
	ErrInvalidGuestCount    = apperror.New(apperror.KindValidation, "guest count must be at least 1")
	ErrExceedsCapacity      = apperror.New(apperror.KindValidation, "guest count exceeds capacity")
	ErrInvalidTotalPrice    = apperror.New(apperror.KindValidation, "total price must be greater than zero")
	ErrCancelReasonRequired = apperror.New(apperror.KindValidation, "cancellation reason is required")
	ErrCancellationTooLate  = apperror.New(apperror.KindValidation, "cancellation must be made at least 48 hours before check-in")
	ErrStayNotElapsed       = apperror.New(apperror.KindValidation, "stay has not ended yet")

	ErrDateConflict     = apperror.New(apperror.KindConflict, "requested dates overlap an existing reservation")
	ErrLodgingBusy      = apperror.New(apperror.KindConflict, "lodging is being booked by another request, retry later")
	ErrConcurrentUpdate = apperror.New(apperror.KindConflict, "reservation was modified concurrently, retry later")

	ErrReservationNotPending       = apperror.New(apperror.KindState, "reservation is not pending approval")
	ErrReservationNotConfirmed     = apperror.New(apperror.KindState, "reservation is not confirmed")
	ErrReservationAlreadyCancelled = apperror.New(apperror.KindState, "reservation is already cancelled")
	ErrReservationAlreadyCompleted = apperror.New(apperror.KindState, "reservation is already completed")
)
