package models

import "time"

// Booking statuses. "pending" exists only in-memory while validating and is
// never persisted; only confirmed bookings reach storage.
const (
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Booking is a reservation of a shuttle ride between two stops. Fare is the
// amount actually charged, captured at creation and never repriced.
type Booking struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"userId"`
	RouteID       int64      `json:"routeId"`
	FromStopID    int64      `json:"fromStopId"`
	ToStopID      int64      `json:"toStopId"`
	DepartureTime time.Time  `json:"departureTime"`
	Fare          int64      `json:"fare"`
	IsPeakHour    bool       `json:"isPeakHour"`
	Status        string     `json:"status"`
	ShuttleID     *int64     `json:"shuttleId,omitempty"`
	DebitTxID     int64      `json:"debitTxId"`
	RefundTxID    *int64     `json:"refundTxId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty"`
}

// Refundable reports whether cancelling this booking must issue a refund.
func (b Booking) Refundable() bool {
	return b.Status == BookingConfirmed
}
