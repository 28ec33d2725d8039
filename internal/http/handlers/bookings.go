package handlers

import (
	"net/http"

	"backend/internal/http/middleware"
	"backend/internal/services"
	"backend/internal/utils"

	"github.com/gin-gonic/gin"
)

func bookingService(c *gin.Context) services.BookingService {
	e := currentEnv()
	return services.BookingService{
		Ledger: services.LedgerService{
			DefaultBalance: e.DefaultWalletBalance,
			RequestID:      middleware.GetRequestID(c),
		},
		Policy:    farePolicy(),
		RequestID: middleware.GetRequestID(c),
	}
}

type createBookingRequest struct {
	RouteID       int64  `json:"routeId"`
	FromStopID    int64  `json:"fromStopId"`
	ToStopID      int64  `json:"toStopId"`
	DepartureTime string `json:"departureTime"` // "YYYY-MM-DD HH:MM:SS" local
	IsPeakHour    *bool  `json:"isPeakHour"`    // optional; derived from departure time when absent
}

// POST /api/bookings
func CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	departure, err := utils.ParseDateTime(req.DepartureTime)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "departureTime tidak valid", err)
		return
	}

	policy := farePolicy()
	isPeak := policy.IsPeakHour(departure)
	if req.IsPeakHour != nil {
		isPeak = *req.IsPeakHour
	}

	booking, err := bookingService(c).Create(middleware.Actor(c), services.CreateBookingInput{
		RouteID:       req.RouteID,
		FromStopID:    req.FromStopID,
		ToStopID:      req.ToStopID,
		DepartureTime: departure,
		IsPeakHour:    isPeak,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// GET /api/bookings?limit=&offset=
func ListMyBookings(c *gin.Context) {
	actor := middleware.Actor(c)
	out, err := bookingService(c).ListForUser(actor.UserID, queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

// GET /api/bookings/:id
func GetBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	booking, err := bookingService(c).GetByID(id, middleware.Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// POST /api/bookings/:id/cancel
func CancelBooking(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	booking, err := bookingService(c).Cancel(id, middleware.Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "booking dibatalkan",
		"booking": booking,
	})
}

type updateBookingStatusRequest struct {
	Status string `json:"status"`
}

// PUT /api/admin/bookings/:id/status
func UpdateBookingStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req updateBookingStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	booking, err := bookingService(c).UpdateStatus(id, req.Status, middleware.Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// GET /api/admin/bookings?limit=&offset=
func ListAllBookings(c *gin.Context) {
	out, err := bookingService(c).ListAll(queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

// GET /api/bookings/:id/e-ticket
func GetBookingETicketPDF(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	svc := services.DocsService{RequestID: middleware.GetRequestID(c)}
	data, filename, err := svc.BuildETicket(id, middleware.Actor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// POST /api/bookings/quote prices a trip without booking it. Uses the same
// fare policy as Create so the numbers always agree.
type quoteRequest struct {
	RouteID       int64  `json:"routeId"`
	DepartureTime string `json:"departureTime"`
}

func GetBookingQuote(c *gin.Context) {
	var req quoteRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	departure, err := utils.ParseDateTime(req.DepartureTime)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "departureTime tidak valid", err)
		return
	}

	svc := services.RouteService{RequestID: middleware.GetRequestID(c)}
	route, _, err := svc.GetRoute(req.RouteID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	policy := farePolicy()
	isPeak := policy.IsPeakHour(departure)
	base := route.Fare
	if isPeak && route.PeakHourFare > 0 {
		base = route.PeakHourFare
	}

	c.JSON(http.StatusOK, gin.H{
		"routeId":       route.ID,
		"departureTime": utils.FormatDateTime(departure),
		"isPeakHour":    isPeak,
		"fare":          policy.Price(base, isPeak),
	})
}
