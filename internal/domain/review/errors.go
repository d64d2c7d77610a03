package review

import "github.com/sanosuguru/go-lodging-reservation/internal/pkg/apperror"

// Review ドメインのエラー定義
var (
	ErrReservationNotCompleted = apperror.New(apperror.KindValidation, "only completed reservations can be reviewed")
	ErrStayNotOver             = apperror.New(apperror.KindValidation, "reviews can be written from the day after check-out")
	ErrInvalidRating           = apperror.New(apperror.KindValidation, "rating must be between 1 and 5")
	ErrTextRequired            = apperror.New(apperror.KindValidation, "review text is required")
	ErrTextTooLong             = apperror.New(apperror.KindValidation, "review text must be at most 500 characters")
	ErrNotReservationGuest     = apperror.New(apperror.KindValidation, "only the guest who stayed can review this reservation")

	ErrReviewAlreadyExists = apperror.New(apperror.KindConflict, "a review already exists for this reservation")
)
