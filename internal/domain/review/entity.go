package review

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinRating     = 1
	MaxRating     = 5
	MaxTextLength = 500
)

// Review は予約1件に対するレビュー
type Review struct {
	ID            string
	ReservationID string
	LodgingID     string
	AuthorID      string
	Rating        int
	Text          string
	CreatedAt     time.Time
}

// NewReview は新しいレビューを作成する
func NewReview(reservationID, lodgingID, authorID string, rating int, text string, now time.Time) *Review {
	return &Review{
		ReservationID: reservationID,
		LodgingID:     lodgingID,
		AuthorID:      authorID,
		Rating:        rating,
		Text:          strings.TrimSpace(text),
		CreatedAt:     now,
	}
}

// ValidateContent は評価と本文を検証する
func (r *Review) ValidateContent() error {
	if r.Rating < MinRating || r.Rating > MaxRating {
		return ErrInvalidRating
	}
	if r.Text == "" {
		return ErrTextRequired
	}
	if utf8.RuneCountInString(r.Text) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}
