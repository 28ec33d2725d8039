package services

import (
	"fmt"

	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/utils"

	"github.com/google/uuid"
)

// Allocation kinds.
const (
	AllocationCredit  = "credit"
	AllocationPenalty = "penalty"
)

// Batches are bounded; anything larger should be split by the caller.
const allocationMaxBatch = 500

// AllocationItemResult reports one owner's outcome. Failures carry the
// reason; successes carry the post-adjustment balance.
type AllocationItemResult struct {
	UserID     int64  `json:"userId"`
	OK         bool   `json:"ok"`
	NewBalance int64  `json:"newBalance,omitempty"`
	Error      string `json:"error,omitempty"`
}

// AllocationSummary aggregates a batch run.
type AllocationSummary struct {
	Reference string                 `json:"reference"`
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
	Items     []AllocationItemResult `json:"items"`
}

// AllocationService applies admin credits/penalties to many wallets with
// per-item isolation: each owner is its own unit of work, one bad entry
// never aborts or reverts the rest. Re-running a batch re-applies amounts;
// the reference is audit metadata, not a dedup key.
type AllocationService struct {
	Ledger    LedgerService
	RequestID string
}

// Allocate runs the batch. kind is "credit" (monthly allocation style) or
// "penalty" (deduction, clamped at zero by the ledger).
func (s AllocationService) Allocate(ownerIDs []int64, amount int64, kind, note, reference string) (AllocationSummary, error) {
	if len(ownerIDs) == 0 {
		return AllocationSummary{}, domain.ValidationError{Field: "owner_ids", Msg: "tidak boleh kosong"}
	}
	if len(ownerIDs) > allocationMaxBatch {
		return AllocationSummary{}, domain.ValidationError{Field: "owner_ids", Msg: fmt.Sprintf("maksimal %d per batch", allocationMaxBatch)}
	}
	if amount <= 0 {
		return AllocationSummary{}, domain.ValidationError{Field: "amount", Msg: "harus lebih dari 0"}
	}
	if kind != AllocationCredit && kind != AllocationPenalty {
		return AllocationSummary{}, domain.ValidationError{Field: "kind", Msg: "harus credit atau penalty"}
	}
	if reference == "" {
		reference = uuid.NewString()
	}

	delta := amount
	txType := models.TxMonthlyAllocation
	if kind == AllocationPenalty {
		delta = -amount
		txType = models.TxAdminAdjustment
	}

	summary := AllocationSummary{
		Reference: reference,
		Items:     make([]AllocationItemResult, 0, len(ownerIDs)),
	}

	for _, uid := range ownerIDs {
		item := AllocationItemResult{UserID: uid}

		wallet, err := s.Ledger.GetOrCreate(uid)
		if err == nil {
			var entry models.WalletTransaction
			entry, err = s.Ledger.AdminAdjust(wallet.ID, delta, txType, note, reference)
			if err == nil {
				item.OK = true
				item.NewBalance = entry.BalanceAfter
			}
		}
		if err != nil {
			item.Error = err.Error()
			utils.LogEvent(s.RequestID, "allocation", kind,
				fmt.Sprintf("user_id=%d gagal: %v", uid, err))
		}

		if item.OK {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		summary.Items = append(summary.Items, item)
	}

	utils.LogEvent(s.RequestID, "allocation", kind,
		fmt.Sprintf("ref=%s ok=%d gagal=%d", reference, summary.Succeeded, summary.Failed))
	return summary, nil
}
