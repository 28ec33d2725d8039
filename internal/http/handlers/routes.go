package handlers

import (
	"net/http"
	"strconv"

	"backend/internal/domain/models"
	"backend/internal/http/middleware"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
)

func routeService(c *gin.Context) services.RouteService {
	return services.RouteService{RequestID: middleware.GetRequestID(c)}
}

// GET /api/routes?all=1
func ListRoutes(c *gin.Context) {
	includeInactive := c.Query("all") == "1"
	routes, err := routeService(c).ListRoutes(includeInactive)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// GET /api/routes/:id
func GetRoute(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	route, stops, err := routeService(c).GetRoute(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route, "stops": stops})
}

type routeRequest struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Fare         int64  `json:"fare"`
	PeakHourFare int64  `json:"peakHourFare"`
	Active       *bool  `json:"active"`
}

// POST /api/admin/routes
func CreateRoute(c *gin.Context) {
	var req routeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	route, err := routeService(c).CreateRoute(models.Route{
		Code:         req.Code,
		Name:         req.Name,
		Fare:         req.Fare,
		PeakHourFare: req.PeakHourFare,
		Active:       active,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"route": route})
}

// PUT /api/admin/routes/:id
func UpdateRoute(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req routeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	route, err := routeService(c).UpdateRoute(models.Route{
		ID:           id,
		Code:         req.Code,
		Name:         req.Name,
		Fare:         req.Fare,
		PeakHourFare: req.PeakHourFare,
		Active:       active,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// DELETE /api/admin/routes/:id (soft delete; bookings keep the reference)
func DeleteRoute(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := routeService(c).DeactivateRoute(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "route dinonaktifkan"})
}

type stopRequest struct {
	RouteID   int64   `json:"routeId"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Sequence  int     `json:"sequence"`
}

// POST /api/admin/stops
func CreateStop(c *gin.Context) {
	var req stopRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	stop, err := routeService(c).CreateStop(models.Stop{
		RouteID:   req.RouteID,
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Sequence:  req.Sequence,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stop": stop})
}

// PUT /api/admin/stops/:id
func UpdateStop(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req stopRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	stop, err := routeService(c).UpdateStop(models.Stop{
		ID:        id,
		RouteID:   req.RouteID,
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Sequence:  req.Sequence,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stop": stop})
}

// DELETE /api/admin/stops/:id
func DeleteStop(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := routeService(c).DeleteStop(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stop dihapus"})
}

// GET /api/stops/nearby?lat=&lng=&limit=
func GetNearbyStops(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		RespondError(c, http.StatusBadRequest, "lat dan lng wajib diisi", nil)
		return
	}
	stops, err := routeService(c).NearbyStops(lat, lng, queryInt(c, "limit", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}
