package services

import (
	"testing"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestBulkAllocatePartialFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	// Owner 1 exists and gets credited; owner 2 does not exist and fails
	// without touching owner 1's result.
	mock.ExpectQuery("SELECT 1 FROM users").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("FROM wallets WHERE user_id=(.+) LIMIT 1").WithArgs(int64(1)).
		WillReturnRows(walletRows(7, 1, 50, models.WalletActive))
	mock.ExpectBegin()
	mock.ExpectQuery("FROM wallets WHERE id=(.+) FOR UPDATE").WithArgs(int64(7)).
		WillReturnRows(walletLockRows(7, 1, 50, models.WalletActive))
	mock.ExpectExec("UPDATE wallets SET balance=").WithArgs(int64(150), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(int64(7), int64(100), models.TxMonthlyAllocation, "alokasi bulanan", "batch-2025-09", int64(150)).
		WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT 1 FROM users").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	svc := AllocationService{Ledger: LedgerService{DB: db}}
	summary, err := svc.Allocate([]int64{1, 2}, 100, AllocationCredit, "alokasi bulanan", "batch-2025-09")
	if err != nil {
		t.Fatalf("allocate error: %v", err)
	}

	if summary.Reference != "batch-2025-09" {
		t.Fatalf("unexpected reference: %s", summary.Reference)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if !summary.Items[0].OK || summary.Items[0].NewBalance != 150 {
		t.Fatalf("unexpected first item: %+v", summary.Items[0])
	}
	if summary.Items[1].OK || summary.Items[1].Error == "" {
		t.Fatalf("unexpected second item: %+v", summary.Items[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBulkAllocatePenaltyClampsAtZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	mock.ExpectQuery("SELECT 1 FROM users").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("FROM wallets WHERE user_id=(.+) LIMIT 1").WithArgs(int64(1)).
		WillReturnRows(walletRows(7, 1, 30, models.WalletActive))
	mock.ExpectBegin()
	mock.ExpectQuery("FROM wallets WHERE id=(.+) FOR UPDATE").WithArgs(int64(7)).
		WillReturnRows(walletLockRows(7, 1, 30, models.WalletActive))
	mock.ExpectExec("UPDATE wallets SET balance=").WithArgs(int64(0), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(int64(7), int64(-30), models.TxAdminAdjustment, "denda keterlambatan", "batch-denda", int64(0)).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	svc := AllocationService{Ledger: LedgerService{DB: db}}
	summary, err := svc.Allocate([]int64{1}, 50, AllocationPenalty, "denda keterlambatan", "batch-denda")
	if err != nil {
		t.Fatalf("allocate error: %v", err)
	}
	if summary.Succeeded != 1 || summary.Items[0].NewBalance != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBulkAllocateValidation(t *testing.T) {
	svc := AllocationService{}

	if _, err := svc.Allocate(nil, 100, AllocationCredit, "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation for empty owners, got: %v", err)
	}
	if _, err := svc.Allocate([]int64{1}, 0, AllocationCredit, "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation for zero amount, got: %v", err)
	}
	if _, err := svc.Allocate([]int64{1}, 100, "bonus", "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation for unknown kind, got: %v", err)
	}

	big := make([]int64, allocationMaxBatch+1)
	for i := range big {
		big[i] = int64(i + 1)
	}
	if _, err := svc.Allocate(big, 100, AllocationCredit, "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation for oversized batch, got: %v", err)
	}
}
