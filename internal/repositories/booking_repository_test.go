package repositories

import (
	"testing"
	"time"

	"backend/internal/domain"
	"backend/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestScanBookingHandlesNullColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	cols := []string{
		"id", "user_id", "route_id", "from_stop_id", "to_stop_id", "departure_time",
		"fare", "is_peak_hour", "status", "shuttle_id", "debit_tx_id", "refund_tx_id",
		"created_at", "updated_at", "cancelled_at",
	}

	mock.ExpectQuery("FROM bookings WHERE id=(.+) LIMIT 1").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 10, 2, 5, 6, now, 150, true, models.BookingConfirmed,
				nil, 21, nil, now, now, nil))
	mock.ExpectQuery("FROM bookings WHERE id=(.+) LIMIT 1").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, 10, 2, 5, 6, now, 150, false, models.BookingCancelled,
				3, 21, 22, now, now, now))

	repo := BookingRepository{DB: db}

	b1, err := repo.GetByID(1)
	if err != nil {
		t.Fatalf("first get error: %v", err)
	}
	if b1.ShuttleID != nil || b1.RefundTxID != nil || b1.CancelledAt != nil {
		t.Fatalf("null columns should stay nil: %+v", b1)
	}

	b2, err := repo.GetByID(2)
	if err != nil {
		t.Fatalf("second get error: %v", err)
	}
	if b2.ShuttleID == nil || *b2.ShuttleID != 3 {
		t.Fatalf("shuttle_id not scanned: %+v", b2)
	}
	if b2.RefundTxID == nil || *b2.RefundTxID != 22 {
		t.Fatalf("refund_tx_id not scanned: %+v", b2)
	}
	if b2.CancelledAt == nil {
		t.Fatalf("cancelled_at not scanned: %+v", b2)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM bookings WHERE id=(.+) LIMIT 1").WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := BookingRepository{DB: db}
	if _, err := repo.GetByID(404); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got: %v", err)
	}
}

func TestNullableID(t *testing.T) {
	if nullableID(nil) != nil {
		t.Fatalf("nil pointer should map to NULL")
	}
	zero := int64(0)
	if nullableID(&zero) != nil {
		t.Fatalf("zero id should map to NULL")
	}
	id := int64(9)
	if got := nullableID(&id); got != int64(9) {
		t.Fatalf("unexpected value: %v", got)
	}
}
