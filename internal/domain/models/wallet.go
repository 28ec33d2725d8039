package models

import "time"

// WalletStatus values. Only active wallets accept credit/debit.
const (
	WalletActive    = "active"
	WalletSuspended = "suspended"
	WalletClosed    = "closed"
)

// Transaction types. These are the structured categories analytics buckets
// on; descriptions stay free text and are never parsed.
const (
	TxRecharge          = "RECHARGE"
	TxTicketPurchase    = "TICKET_PURCHASE"
	TxRefund            = "REFUND"
	TxMonthlyAllocation = "MONTHLY_ALLOCATION"
	TxAdminAdjustment   = "ADMIN_ADJUSTMENT"
)

// Wallet is a user's points balance. One wallet per user (UNIQUE user_id);
// balance only ever changes through ledger operations.
type Wallet struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Balance   int64     `json:"balance"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Active reports whether ledger mutations are allowed.
func (w Wallet) Active() bool {
	return w.Status == WalletActive
}

// WalletTransaction is one immutable entry in the append-only log.
// Amount is signed (debits negative); BalanceAfter snapshots the wallet
// balance after this entry so the log replays to the current balance.
type WalletTransaction struct {
	ID           int64     `json:"id"`
	WalletID     int64     `json:"walletId"`
	Amount       int64     `json:"amount"`
	Type         string    `json:"type"`
	Description  string    `json:"description"`
	Reference    string    `json:"reference,omitempty"`
	BalanceAfter int64     `json:"balanceAfter"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ReplayBalance folds signed amounts, oldest first. Used by consistency
// checks: the result must equal the last entry's BalanceAfter.
func ReplayBalance(entries []WalletTransaction) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.Amount
	}
	return sum
}
