package handlers

import (
	"net/http"

	"backend/internal/http/middleware"
	"backend/internal/repositories"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
)

type allocationRequest struct {
	OwnerIDs  []int64 `json:"ownerIds"`
	Amount    int64   `json:"amount"`
	Kind      string  `json:"kind"` // credit | penalty
	Note      string  `json:"note"`
	Reference string  `json:"reference"`
}

// POST /api/admin/allocations
// Bulk credit/penalty with per-item isolation: the response itemizes which
// owners succeeded; failures never roll back the rest.
func BulkAllocate(c *gin.Context) {
	var req allocationRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := services.AllocationService{
		Ledger: services.LedgerService{
			DefaultBalance: currentEnv().DefaultWalletBalance,
			RequestID:      middleware.GetRequestID(c),
		},
		RequestID: middleware.GetRequestID(c),
	}

	summary, err := svc.Allocate(req.OwnerIDs, req.Amount, req.Kind, req.Note, req.Reference)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	status := http.StatusOK
	if summary.Failed > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{"result": summary})
}

// GET /api/admin/users?limit=&offset=
func ListUsers(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	users, err := repositories.UserRepository{}.List(limit, offset)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal query users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
