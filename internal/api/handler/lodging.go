package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-lodging-reservation/internal/application"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/lodging"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/reservation"
)

type LodgingHandler struct {
	service      LodgingServiceInterface
	availability AvailabilityCheckerInterface
}

func NewLodgingHandler(s LodgingServiceInterface, a AvailabilityCheckerInterface) *LodgingHandler {
	return &LodgingHandler{service: s, availability: a}
}

type CreateLodgingRequest struct {
	Name          string          `json:"name" validate:"required,max=200" example:"湖畔のログハウス"`
	MaxCapacity   int             `json:"max_capacity" validate:"required,min=1" example:"4"`
	PricePerNight decimal.Decimal `json:"price_per_night" swaggertype:"string" example:"15000.00"`
}

type LodgingResponse struct {
	ID            string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	HostID        string     `json:"host_id" example:"host-123"`
	Name          string     `json:"name" example:"湖畔のログハウス"`
	MaxCapacity   int        `json:"max_capacity" example:"4"`
	PricePerNight string     `json:"price_per_night" example:"15000.00"`
	State         string     `json:"state" example:"active"`
	RetiredAt     *time.Time `json:"retired_at,omitempty"`
	CreatedAt     string     `json:"created_at" example:"2025-11-20T10:00:00Z"`
}

type AvailabilityResponse struct {
	LodgingID string `json:"lodging_id"`
	CheckIn   string `json:"check_in" example:"2025-12-01"`
	CheckOut  string `json:"check_out" example:"2025-12-05"`
	Available bool   `json:"available"`
}

type QuoteResponse struct {
	LodgingID     string `json:"lodging_id"`
	CheckIn       string `json:"check_in" example:"2025-12-01"`
	CheckOut      string `json:"check_out" example:"2025-12-05"`
	Nights        int    `json:"nights" example:"4"`
	PricePerNight string `json:"price_per_night" example:"15000.00"`
	Total         string `json:"total" example:"60000.00"`
}

type RetirementResponse struct {
	LodgingID            string `json:"lodging_id"`
	CanDeactivate        bool   `json:"can_deactivate"`
	BlockingReservations int    `json:"blocking_reservations"`
}

func toLodgingResponse(l *lodging.Lodging) LodgingResponse {
	return LodgingResponse{
		ID: l.ID, HostID: l.HostID, Name: l.Name, MaxCapacity: l.MaxCapacity,
		PricePerNight: l.PricePerNight.StringFixed(2), State: string(l.State),
		RetiredAt: l.RetiredAt, CreatedAt: l.CreatedAt.Format(time.RFC3339),
	}
}

// Create godoc
// @Summary 宿泊施設を登録
// @Tags lodgings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ホストID"
// @Param request body CreateLodgingRequest true "宿泊施設情報"
// @Success 201 {object} LodgingResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /lodgings [post]
func (h *LodgingHandler) Create(c echo.Context) error {
	hostID, err := callerID(c)
	if err != nil {
		return err
	}
	var req CreateLodgingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	l, err := h.service.CreateLodging(c.Request().Context(), application.CreateLodgingInput{
		HostID: hostID, Name: req.Name, MaxCapacity: req.MaxCapacity, PricePerNight: req.PricePerNight,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toLodgingResponse(l))
}

// GetByID godoc
// @Summary 宿泊施設を取得
// @Tags lodgings
// @Produce json
// @Param id path string true "宿泊施設ID"
// @Success 200 {object} LodgingResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /lodgings/{id} [get]
func (h *LodgingHandler) GetByID(c echo.Context) error {
	l, err := h.service.GetLodging(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLodgingResponse(l))
}

// ListMine godoc
// @Summary ホストの宿泊施設一覧
// @Tags lodgings
// @Produce json
// @Param X-User-ID header string true "ホストID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} LodgingResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /lodgings [get]
func (h *LodgingHandler) ListMine(c echo.Context) error {
	hostID, err := callerID(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	lodgings, err := h.service.ListHostLodgings(c.Request().Context(), hostID, limit, offset)
	if err != nil {
		return err
	}
	resp := make([]LodgingResponse, len(lodgings))
	for i, l := range lodgings {
		resp[i] = toLodgingResponse(l)
	}
	return c.JSON(http.StatusOK, resp)
}

// Availability godoc
// @Summary 空き状況を照会
// @Tags lodgings
// @Produce json
// @Param id path string true "宿泊施設ID"
// @Param check_in query string true "チェックイン日 (YYYY-MM-DD)"
// @Param check_out query string true "チェックアウト日 (YYYY-MM-DD)"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /lodgings/{id}/availability [get]
func (h *LodgingHandler) Availability(c echo.Context) error {
	a, err := h.availability.CheckAvailability(c.Request().Context(), c.Param("id"),
		c.QueryParam("check_in"), c.QueryParam("check_out"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{
		LodgingID: a.LodgingID,
		CheckIn:   reservation.FormatDate(a.Stay.CheckIn),
		CheckOut:  reservation.FormatDate(a.Stay.CheckOut),
		Available: a.Available,
	})
}

// Quote godoc
// @Summary 宿泊料金を見積もる
// @Tags lodgings
// @Produce json
// @Param id path string true "宿泊施設ID"
// @Param check_in query string true "チェックイン日 (YYYY-MM-DD)"
// @Param check_out query string true "チェックアウト日 (YYYY-MM-DD)"
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /lodgings/{id}/quote [get]
func (h *LodgingHandler) Quote(c echo.Context) error {
	q, err := h.service.Quote(c.Request().Context(), c.Param("id"),
		c.QueryParam("check_in"), c.QueryParam("check_out"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, QuoteResponse{
		LodgingID:     q.LodgingID,
		CheckIn:       reservation.FormatDate(q.Stay.CheckIn),
		CheckOut:      reservation.FormatDate(q.Stay.CheckOut),
		Nights:        q.Nights,
		PricePerNight: q.PricePerNight.StringFixed(2),
		Total:         q.Total.StringFixed(2),
	})
}

// Retirement godoc
// @Summary 退役できるかを確認
// @Description 承認待ち・確定済みでチェックアウトが今日以降の予約があると退役できません
// @Tags lodgings
// @Produce json
// @Param id path string true "宿泊施設ID"
// @Success 200 {object} RetirementResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /lodgings/{id}/retirement [get]
func (h *LodgingHandler) Retirement(c echo.Context) error {
	id := c.Param("id")
	n, err := h.service.BlockingReservationCount(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, RetirementResponse{
		LodgingID:            id,
		CanDeactivate:        n == 0,
		BlockingReservations: n,
	})
}

// Retire godoc
// @Summary 宿泊施設を退役させる
// @Tags lodgings
// @Produce json
// @Param X-User-ID header string true "ホストID"
// @Param id path string true "宿泊施設ID"
// @Success 200 {object} LodgingResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "有効な予約あり"
// @Router /lodgings/{id} [delete]
func (h *LodgingHandler) Retire(c echo.Context) error {
	hostID, err := callerID(c)
	if err != nil {
		return err
	}
	l, err := h.service.RetireLodging(c.Request().Context(), c.Param("id"), hostID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLodgingResponse(l))
}
