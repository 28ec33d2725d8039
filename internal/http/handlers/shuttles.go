package handlers

import (
	"net/http"

	"backend/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// GET /api/shuttles
func ListShuttles(c *gin.Context) {
	shuttles, err := routeService(c).ListShuttles()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shuttles": shuttles})
}

type shuttleRequest struct {
	PlateNumber string `json:"plateNumber"`
	Capacity    int    `json:"capacity"`
	RouteID     *int64 `json:"routeId"`
	Active      *bool  `json:"active"`
}

func (r shuttleRequest) model(id int64) models.Shuttle {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return models.Shuttle{
		ID:          id,
		PlateNumber: r.PlateNumber,
		Capacity:    r.Capacity,
		RouteID:     r.RouteID,
		Active:      active,
	}
}

// POST /api/admin/shuttles
func CreateShuttle(c *gin.Context) {
	var req shuttleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	shuttle, err := routeService(c).CreateShuttle(req.model(0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"shuttle": shuttle})
}

// PUT /api/admin/shuttles/:id
func UpdateShuttle(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req shuttleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	shuttle, err := routeService(c).UpdateShuttle(req.model(id))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shuttle": shuttle})
}

// DELETE /api/admin/shuttles/:id
func DeleteShuttle(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := routeService(c).DeleteShuttle(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "shuttle dihapus"})
}
