package lodging

import "github.com/sanosuguru/go-lodging-reservation/internal/pkg/apperror"

// Lodging ドメインのエラー定義
var (
	ErrLodgingNotFound      = apperror.New(apperror.KindNotFound, "lodging not found")
	ErrLodgingUnavailable   = apperror.New(apperror.KindValidation, "lodging is not available for booking")
	ErrHostIDRequired       = apperror.New(apperror.KindValidation, "host id is required")
	ErrLodgingNameRequired  = apperror.New(apperror.KindValidation, "lodging name is required")
	ErrInvalidMaxCapacity   = apperror.New(apperror.KindValidation, "max capacity must be at least 1")
	ErrInvalidPricePerNight = apperror.New(apperror.KindValidation, "price per night must be greater than zero")

	ErrLodgingAlreadyRetired        = apperror.New(apperror.KindState, "lodging is already retired")
	ErrLodgingHasActiveReservations = apperror.New(apperror.KindConflict, "lodging has active or upcoming reservations")
	ErrNotLodgingHost               = apperror.New(apperror.KindForbidden, "only the lodging host can perform this action")
)
