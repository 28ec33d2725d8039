package handlers

import (
	"net/http"

	"backend/internal/domain/models"
	"backend/internal/http/middleware"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
)

func ledgerService(c *gin.Context) services.LedgerService {
	return services.LedgerService{
		DefaultBalance: currentEnv().DefaultWalletBalance,
		RequestID:      middleware.GetRequestID(c),
	}
}

// GET /api/wallet
func GetMyWallet(c *gin.Context) {
	actor := middleware.Actor(c)
	wallet, err := ledgerService(c).GetOrCreate(actor.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

// GET /api/wallet/history?limit=&offset=
func GetWalletHistory(c *gin.Context) {
	actor := middleware.Actor(c)
	svc := ledgerService(c)

	wallet, err := svc.GetOrCreate(actor.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	limit := queryInt(c, "limit", 0)
	offset := queryInt(c, "offset", 0)
	entries, balance, err := svc.HistoryPage(wallet.ID, limit, offset)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":      balance,
		"transactions": entries,
		"offset":       offset,
	})
}

type rechargeRequest struct {
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

// POST /api/wallet/recharge
// Simulated top-up: no payment gateway, the credit is applied directly.
func Recharge(c *gin.Context) {
	var req rechargeRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	actor := middleware.Actor(c)
	svc := ledgerService(c)

	wallet, err := svc.GetOrCreate(actor.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	entry, err := svc.Credit(wallet.ID, req.Amount, models.TxRecharge, "Top-up saldo", req.Reference)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "top-up berhasil",
		"transaction": entry,
		"balance":     entry.BalanceAfter,
	})
}

// GET /api/wallet/statement
func GetWalletStatementPDF(c *gin.Context) {
	actor := middleware.Actor(c)
	svc := services.DocsService{RequestID: middleware.GetRequestID(c)}

	data, filename, err := svc.BuildWalletStatement(actor, queryInt(c, "limit", 50))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
