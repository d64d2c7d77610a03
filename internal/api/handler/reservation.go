package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-lodging-reservation/internal/application"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/reservation"
)

type ReservationHandler struct {
	service ReservationServiceInterface
}

func NewReservationHandler(s ReservationServiceInterface) *ReservationHandler {
	return &ReservationHandler{service: s}
}

type CreateReservationRequest struct {
	LodgingID  string          `json:"lodging_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	CheckIn    string          `json:"check_in" validate:"required" example:"2025-12-01"`
	CheckOut   string          `json:"check_out" validate:"required" example:"2025-12-05"`
	GuestCount int             `json:"guest_count" example:"2"`
	TotalPrice decimal.Decimal `json:"total_price" swaggertype:"string" example:"60000.00"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason" example:"予定変更のため"`
}

type ReservationResponse struct {
	ID           string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	GuestID      string     `json:"guest_id" example:"guest-123"`
	LodgingID    string     `json:"lodging_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	CheckIn      string     `json:"check_in" example:"2025-12-01"`
	CheckOut     string     `json:"check_out" example:"2025-12-05"`
	Nights       int        `json:"nights" example:"4"`
	GuestCount   int        `json:"guest_count" example:"2"`
	TotalPrice   string     `json:"total_price" example:"60000.00"`
	Status       string     `json:"status" example:"confirmed"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID: r.ID, GuestID: r.GuestID, LodgingID: r.LodgingID,
		CheckIn: reservation.FormatDate(r.CheckIn), CheckOut: reservation.FormatDate(r.CheckOut),
		Nights: r.Nights(), GuestCount: r.GuestCount, TotalPrice: r.TotalPrice.StringFixed(2),
		Status: string(r.Status), ConfirmedAt: r.ConfirmedAt, CancelledAt: r.CancelledAt,
		CancelReason: r.CancelReason, CompletedAt: r.CompletedAt, CreatedAt: r.CreatedAt,
	}
}

// Create godoc
// @Summary 予約を作成
// @Description 宿泊期間・人数・金額を検証して予約します
// @Tags reservations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ゲストID"
// @Param request body CreateReservationRequest true "予約情報"
// @Success 201 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "日程が重複"
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	guestID, err := callerID(c)
	if err != nil {
		return err
	}
	var req CreateReservationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.service.CreateReservation(c.Request().Context(), application.CreateReservationInput{
		GuestID: guestID, LodgingID: req.LodgingID, CheckIn: req.CheckIn, CheckOut: req.CheckOut,
		GuestCount: req.GuestCount, TotalPrice: req.TotalPrice,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toReservationResponse(r))
}

// GetByID godoc
// @Summary 予約を取得
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c echo.Context) error {
	r, err := h.service.GetReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// GetGuestReservations godoc
// @Summary ゲストの予約一覧を取得
// @Tags reservations
// @Produce json
// @Param X-User-ID header string true "ゲストID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ReservationResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /reservations [get]
func (h *ReservationHandler) GetGuestReservations(c echo.Context) error {
	guestID, err := callerID(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	reservations, err := h.service.GetGuestReservations(c.Request().Context(), guestID, limit, offset)
	if err != nil {
		return err
	}
	resp := make([]ReservationResponse, len(reservations))
	for i, r := range reservations {
		resp[i] = toReservationResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

// Confirm godoc
// @Summary 予約を承認
// @Description ホストが承認待ちの予約を確定します
// @Tags reservations
// @Produce json
// @Param X-User-ID header string true "ホストID"
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /reservations/{id}/confirm [post]
func (h *ReservationHandler) Confirm(c echo.Context) error {
	hostID, err := callerID(c)
	if err != nil {
		return err
	}
	r, err := h.service.ConfirmReservation(c.Request().Context(), c.Param("id"), hostID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description チェックイン48時間前までキャンセルできます。理由は必須です
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "予約ID"
// @Param request body CancelReservationRequest true "キャンセル理由"
// @Success 200 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	var req CancelReservationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.service.CancelReservation(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Complete godoc
// @Summary 予約を完了
// @Description チェックアウト日を迎えた確定済み予約を完了にします
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /reservations/{id}/complete [post]
func (h *ReservationHandler) Complete(c echo.Context) error {
	r, err := h.service.CompleteReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}
