package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-lodging-reservation/internal/application"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/review"
)

type ReviewHandler struct {
	service ReviewServiceInterface
}

func NewReviewHandler(s ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{service: s}
}

type CreateReviewRequest struct {
	Rating int    `json:"rating" example:"5"`
	Text   string `json:"text" example:"静かで快適でした"`
}

type ReviewResponse struct {
	ID            string    `json:"id"`
	ReservationID string    `json:"reservation_id"`
	LodgingID     string    `json:"lodging_id"`
	AuthorID      string    `json:"author_id"`
	Rating        int       `json:"rating" example:"5"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
}

func toReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID: r.ID, ReservationID: r.ReservationID, LodgingID: r.LodgingID,
		AuthorID: r.AuthorID, Rating: r.Rating, Text: r.Text, CreatedAt: r.CreatedAt,
	}
}

// Create godoc
// @Summary レビューを投稿
// @Description 完了済みの予約に、チェックアウト翌日以降1件だけ投稿できます
// @Tags reviews
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ゲストID"
// @Param id path string true "予約ID"
// @Param request body CreateReviewRequest true "レビュー"
// @Success 201 {object} ReviewResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "投稿済み"
// @Router /reservations/{id}/reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	authorID, err := callerID(c)
	if err != nil {
		return err
	}
	var req CreateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.service.CreateReview(c.Request().Context(), application.CreateReviewInput{
		ReservationID: c.Param("id"), AuthorID: authorID, Rating: req.Rating, Text: req.Text,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toReviewResponse(r))
}

// ListByLodging godoc
// @Summary 宿泊施設のレビュー一覧
// @Tags reviews
// @Produce json
// @Param id path string true "宿泊施設ID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ReviewResponse
// @Router /lodgings/{id}/reviews [get]
func (h *ReviewHandler) ListByLodging(c echo.Context) error {
	limit, offset := pagination(c)
	reviews, err := h.service.ListLodgingReviews(c.Request().Context(), c.Param("id"), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		resp[i] = toReviewResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}
