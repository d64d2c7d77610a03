package handler

import "github.com/labstack/echo/v4"

// Handlers はルーティング対象のハンドラー一式
type Handlers struct {
	Health      *HealthHandler
	Lodging     *LodgingHandler
	Reservation *ReservationHandler
	Review      *ReviewHandler
}

// RegisterRoutes は /health と /api/v1 のルートを登録する
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", h.Health.Check)

	v1 := e.Group("/api/v1")

	v1.POST("/lodgings", h.Lodging.Create)
	v1.GET("/lodgings", h.Lodging.ListMine)
	v1.GET("/lodgings/:id", h.Lodging.GetByID)
	v1.DELETE("/lodgings/:id", h.Lodging.Retire)
	v1.GET("/lodgings/:id/availability", h.Lodging.Availability)
	v1.GET("/lodgings/:id/quote", h.Lodging.Quote)
	v1.GET("/lodgings/:id/retirement", h.Lodging.Retirement)
	v1.GET("/lodgings/:id/reviews", h.Review.ListByLodging)

	v1.POST("/reservations", h.Reservation.Create)
	v1.GET("/reservations", h.Reservation.GetGuestReservations)
	v1.GET("/reservations/:id", h.Reservation.GetByID)
	v1.POST("/reservations/:id/confirm", h.Reservation.Confirm)
	v1.POST("/reservations/:id/cancel", h.Reservation.Cancel)
	v1.POST("/reservations/:id/complete", h.Reservation.Complete)
	v1.POST("/reservations/:id/reviews", h.Review.Create)
}
