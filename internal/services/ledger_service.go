package services

import (
	"database/sql"
	"time"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"

	"github.com/google/uuid"
)

// History paging bounds.
const (
	historyDefaultLimit = 20
	historyMaxLimit     = 100
)

// LedgerService owns wallet balances and their append-only transaction log.
// Every mutation runs as one SQL transaction holding the wallet row lock, so
// the balance and the log can never disagree and two concurrent debits can
// never both pass a stale balance check.
type LedgerService struct {
	WalletRepo repositories.WalletRepository
	UserRepo   repositories.UserRepository
	DB         *sql.DB

	// DefaultBalance seeds wallets created lazily on first access.
	DefaultBalance int64
	RequestID      string
}

func (s LedgerService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s LedgerService) wallets() repositories.WalletRepository {
	if s.WalletRepo.DB != nil {
		return s.WalletRepo
	}
	return repositories.WalletRepository{DB: s.db()}
}

func (s LedgerService) users() repositories.UserRepository {
	if s.UserRepo.DB != nil {
		return s.UserRepo
	}
	return repositories.UserRepository{DB: s.db()}
}

// GetOrCreate returns the user's wallet, creating it on first access.
// Creation is first-write-wins: the UNIQUE key on user_id plus INSERT IGNORE
// make concurrent calls collapse to a single row.
func (s LedgerService) GetOrCreate(userID int64) (models.Wallet, error) {
	if userID <= 0 {
		return models.Wallet{}, domain.ValidationError{Field: "user_id", Msg: "id tidak valid"}
	}

	ok, err := s.users().Exists(userID)
	if err != nil {
		return models.Wallet{}, domain.InternalError{Err: err}
	}
	if !ok {
		return models.Wallet{}, domain.NotFoundError{Resource: "user"}
	}

	if w, err := s.wallets().GetByUserID(userID); err == nil {
		return w, nil
	} else if !domain.IsNotFound(err) {
		return models.Wallet{}, domain.InternalError{Err: err}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return models.Wallet{}, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	created, walletID, err := s.wallets().InsertIfAbsent(tx, userID, s.DefaultBalance)
	if err != nil {
		return models.Wallet{}, domain.InternalError{Err: err}
	}
	if created && s.DefaultBalance > 0 {
		// Opening entry so the log replays to the seeded balance.
		_, err := s.wallets().InsertEntry(tx, models.WalletTransaction{
			WalletID:     walletID,
			Amount:       s.DefaultBalance,
			Type:         models.TxMonthlyAllocation,
			Description:  "saldo awal wallet",
			Reference:    uuid.NewString(),
			BalanceAfter: s.DefaultBalance,
		})
		if err != nil {
			return models.Wallet{}, domain.InternalError{Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Wallet{}, domain.InternalError{Err: err}
	}

	if created {
		utils.LogEvent(s.RequestID, "ledger", "create_wallet", "wallet dibuat untuk user")
	}

	// Re-select covers the lost-race case where another writer created it.
	w, err := s.wallets().GetByUserID(userID)
	if err != nil {
		return models.Wallet{}, domain.InternalError{Err: err}
	}
	return w, nil
}

// Credit increases the balance and appends one entry.
func (s LedgerService) Credit(walletID, amount int64, txType, description, reference string) (models.WalletTransaction, error) {
	if amount <= 0 {
		return models.WalletTransaction{}, domain.ValidationError{Field: "amount", Msg: "harus lebih dari 0"}
	}
	return s.mutate(walletID, amount, txType, description, reference, false)
}

// Debit decreases the balance and appends one entry with a negative amount.
// A debit beyond the balance is rejected outright; nothing is written.
func (s LedgerService) Debit(walletID, amount int64, txType, description, reference string) (models.WalletTransaction, error) {
	if amount <= 0 {
		return models.WalletTransaction{}, domain.ValidationError{Field: "amount", Msg: "harus lebih dari 0"}
	}
	return s.mutate(walletID, -amount, txType, description, reference, false)
}

// AdminAdjust is the administrative variant used by bulk allocation.
// Positive deltas behave like Credit. Negative deltas (penalties) clamp the
// resulting balance at zero instead of failing: admins must always be able
// to zero out a balance, while purchases reject. The entry records the
// amount actually deducted.
func (s LedgerService) AdminAdjust(walletID, delta int64, txType, description, reference string) (models.WalletTransaction, error) {
	if delta == 0 {
		return models.WalletTransaction{}, domain.ValidationError{Field: "delta", Msg: "tidak boleh 0"}
	}
	return s.mutate(walletID, delta, txType, description, reference, delta < 0)
}

// mutate is the single write path: lock the wallet row, recompute the
// balance, append the entry with its resulting-balance snapshot, commit.
func (s LedgerService) mutate(walletID, delta int64, txType, description, reference string, clampZero bool) (models.WalletTransaction, error) {
	if walletID <= 0 {
		return models.WalletTransaction{}, domain.ValidationError{Field: "wallet_id", Msg: "id tidak valid"}
	}
	if reference == "" {
		reference = uuid.NewString()
	}

	tx, err := s.db().Begin()
	if err != nil {
		return models.WalletTransaction{}, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	w, err := s.wallets().LockByID(tx, walletID)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.WalletTransaction{}, err
		}
		return models.WalletTransaction{}, domain.InternalError{Err: err}
	}
	if !w.Active() {
		return models.WalletTransaction{}, domain.WalletInactiveError{Status: w.Status}
	}

	applied := delta
	newBalance := w.Balance + delta
	if newBalance < 0 {
		if !clampZero {
			return models.WalletTransaction{}, domain.InsufficientBalanceError{Balance: w.Balance, Required: -delta}
		}
		applied = -w.Balance
		newBalance = 0
	}

	if err := s.wallets().UpdateBalance(tx, w.ID, newBalance); err != nil {
		return models.WalletTransaction{}, domain.InternalError{Err: err}
	}

	entry := models.WalletTransaction{
		WalletID:     w.ID,
		Amount:       applied,
		Type:         txType,
		Description:  description,
		Reference:    reference,
		BalanceAfter: newBalance,
	}
	entryID, err := s.wallets().InsertEntry(tx, entry)
	if err != nil {
		return models.WalletTransaction{}, domain.InternalError{Err: err}
	}

	if err := tx.Commit(); err != nil {
		return models.WalletTransaction{}, domain.InternalError{Err: err}
	}

	entry.ID = entryID
	entry.CreatedAt = time.Now()
	return entry, nil
}

// History returns the wallet's entries, most recent first.
func (s LedgerService) History(walletID int64, limit, offset int) ([]models.WalletTransaction, error) {
	if walletID <= 0 {
		return nil, domain.ValidationError{Field: "wallet_id", Msg: "id tidak valid"}
	}
	if limit <= 0 {
		limit = historyDefaultLimit
	}
	if limit > historyMaxLimit {
		limit = historyMaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	if _, err := s.wallets().GetByID(walletID); err != nil {
		return nil, err
	}

	entries, err := s.wallets().History(walletID, limit, offset)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return entries, nil
}

// HistoryPage returns the page plus a balance consistent with it: the newest
// returned entry's snapshot. Reading the balance column separately could
// disagree with the page when a write lands between the two reads. An empty
// page falls back to the stored balance.
func (s LedgerService) HistoryPage(walletID int64, limit, offset int) ([]models.WalletTransaction, int64, error) {
	entries, err := s.History(walletID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if len(entries) > 0 {
		return entries, entries[0].BalanceAfter, nil
	}
	w, err := s.wallets().GetByID(walletID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, 0, err
		}
		return nil, 0, domain.InternalError{Err: err}
	}
	return entries, w.Balance, nil
}
