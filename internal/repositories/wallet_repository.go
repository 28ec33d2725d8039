package repositories

import (
	"database/sql"
	"errors"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

type WalletRepository struct {
	DB *sql.DB
}

func (r WalletRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r WalletRepository) GetByID(id int64) (models.Wallet, error) {
	return r.scanOne(r.db().QueryRow(`
		SELECT id, user_id, balance, currency, status, created_at, updated_at
		FROM wallets WHERE id=? LIMIT 1`, id))
}

func (r WalletRepository) GetByUserID(userID int64) (models.Wallet, error) {
	return r.scanOne(r.db().QueryRow(`
		SELECT id, user_id, balance, currency, status, created_at, updated_at
		FROM wallets WHERE user_id=? LIMIT 1`, userID))
}

func (r WalletRepository) scanOne(row *sql.Row) (models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.Currency, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Wallet{}, domain.NotFoundError{Resource: "wallet"}
	}
	if err != nil {
		return models.Wallet{}, err
	}
	return w, nil
}

// InsertIfAbsent creates the wallet row when missing. First write wins:
// the UNIQUE key on user_id makes concurrent creation collapse to one row.
// Returns whether this call created the row.
func (r WalletRepository) InsertIfAbsent(tx *sql.Tx, userID, initialBalance int64) (bool, int64, error) {
	res, err := tx.Exec(`
		INSERT IGNORE INTO wallets (user_id, balance, currency, status)
		VALUES (?, ?, 'POIN', 'active')`, userID, initialBalance)
	if err != nil {
		return false, 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}
	if n == 0 {
		return false, 0, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, 0, err
	}
	return true, id, nil
}

// LockByID reads the wallet under FOR UPDATE. Must run inside the
// transaction that mutates the balance; this is the per-wallet mutual
// exclusion the ledger relies on.
func (r WalletRepository) LockByID(tx *sql.Tx, id int64) (models.Wallet, error) {
	return r.scanLocked(tx.QueryRow(`
		SELECT id, user_id, balance, currency, status
		FROM wallets WHERE id=? FOR UPDATE`, id))
}

// LockByUserID is LockByID keyed by owner.
func (r WalletRepository) LockByUserID(tx *sql.Tx, userID int64) (models.Wallet, error) {
	return r.scanLocked(tx.QueryRow(`
		SELECT id, user_id, balance, currency, status
		FROM wallets WHERE user_id=? FOR UPDATE`, userID))
}

func (r WalletRepository) scanLocked(row *sql.Row) (models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.Currency, &w.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Wallet{}, domain.NotFoundError{Resource: "wallet"}
	}
	if err != nil {
		return models.Wallet{}, err
	}
	return w, nil
}

// UpdateBalance writes the new balance. Caller holds the row lock.
func (r WalletRepository) UpdateBalance(tx *sql.Tx, walletID, newBalance int64) error {
	_, err := tx.Exec(`UPDATE wallets SET balance=? WHERE id=?`, newBalance, walletID)
	return err
}

// InsertEntry appends one immutable ledger entry.
func (r WalletRepository) InsertEntry(tx *sql.Tx, e models.WalletTransaction) (int64, error) {
	res, err := tx.Exec(`
		INSERT INTO wallet_transactions (wallet_id, amount, type, description, reference, balance_after)
		VALUES (?,?,?,?,?,?)`,
		e.WalletID, e.Amount, e.Type, e.Description, e.Reference, e.BalanceAfter)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// History returns entries newest first. Reads are a consistent snapshot:
// each row carries its own balance_after, so the page never mixes states.
func (r WalletRepository) History(walletID int64, limit, offset int) ([]models.WalletTransaction, error) {
	rows, err := r.db().Query(`
		SELECT id, wallet_id, amount, type, description, reference, balance_after, created_at
		FROM wallet_transactions
		WHERE wallet_id=?
		ORDER BY id DESC
		LIMIT ? OFFSET ?`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.WalletTransaction{}
	for rows.Next() {
		var e models.WalletTransaction
		if err := rows.Scan(&e.ID, &e.WalletID, &e.Amount, &e.Type, &e.Description, &e.Reference, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
