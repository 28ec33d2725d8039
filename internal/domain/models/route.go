package models

import "time"

// Route is a shuttle line with a base fare and a peak-hour base fare.
// The fare policy multiplier is applied on top of whichever base applies.
type Route struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Fare         int64     `json:"fare"`
	PeakHourFare int64     `json:"peakHourFare"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Stop is a named point on a route, ordered by Sequence.
type Stop struct {
	ID        int64   `json:"id"`
	RouteID   int64   `json:"routeId"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Sequence  int     `json:"sequence"`
}

// Shuttle is a vehicle, optionally assigned to a route.
type Shuttle struct {
	ID          int64  `json:"id"`
	PlateNumber string `json:"plateNumber"`
	Capacity    int    `json:"capacity"`
	RouteID     *int64 `json:"routeId,omitempty"`
	Active      bool   `json:"active"`
}

// NearbyStop pairs a stop with its distance from a query point.
type NearbyStop struct {
	Stop       Stop    `json:"stop"`
	DistanceKm float64 `json:"distanceKm"`
}
