package services

import (
	"testing"
	"time"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/fare"

	"github.com/DATA-DOG/go-sqlmock"
)

var bookingColsList = []string{
	"id", "user_id", "route_id", "from_stop_id", "to_stop_id", "departure_time",
	"fare", "is_peak_hour", "status", "shuttle_id", "debit_tx_id", "refund_tx_id",
	"created_at", "updated_at", "cancelled_at",
}

func confirmedBookingRows(id, userID int64, fareAmount int64, departure time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingColsList).
		AddRow(id, userID, 2, 5, 6, departure, fareAmount, true, models.BookingConfirmed,
			nil, 21, nil, now, now, nil)
}

func expectBookingPrereqs(mock sqlmock.Sqlmock, userID, walletID, balance int64) {
	mock.ExpectQuery("FROM routes WHERE id=").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "fare", "peak_hour_fare", "active", "created_at"}).
			AddRow(2, "R1", "Keliling Kampus", 100, 120, true, time.Now()))
	mock.ExpectQuery("FROM stops WHERE id=").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "route_id", "name", "latitude", "longitude", "sequence"}).
			AddRow(5, 2, "Gerbang Utama", -6.2001, 106.8001, 1))
	mock.ExpectQuery("FROM stops WHERE id=").WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "route_id", "name", "latitude", "longitude", "sequence"}).
			AddRow(6, 2, "Perpustakaan", -6.2010, 106.8020, 4))
	mock.ExpectQuery("SELECT 1 FROM users").WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("FROM wallets WHERE user_id=(.+) LIMIT 1").WithArgs(userID).
		WillReturnRows(walletRows(walletID, userID, balance, models.WalletActive))
}

func TestCreateBookingDebitsAndPersistsAtomically(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	departure := time.Now().Add(2 * time.Hour)
	expectBookingPrereqs(mock, 1, 7, 500)

	// Peak fare: base 120 * 1.25 = 150.
	mock.ExpectBegin()
	mock.ExpectQuery("FROM wallets WHERE id=(.+) FOR UPDATE").WithArgs(int64(7)).
		WillReturnRows(walletLockRows(7, 1, 500, models.WalletActive))
	mock.ExpectExec("UPDATE wallets SET balance=").WithArgs(int64(350), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(int64(7), int64(-150), models.TxTicketPurchase,
			"Tiket R1: Gerbang Utama -> Perpustakaan", sqlmock.AnyArg(), int64(350)).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(int64(1), int64(2), int64(5), int64(6), departure, int64(150), true,
			models.BookingConfirmed, nil, int64(21)).
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectCommit()

	svc := BookingService{DB: db, Policy: fare.DefaultPolicy()}
	b, err := svc.Create(domain.RequestContext{UserID: 1, Role: domain.RoleStudent}, CreateBookingInput{
		RouteID:       2,
		FromStopID:    5,
		ToStopID:      6,
		DepartureTime: departure,
		IsPeakHour:    true,
	})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if b.ID != 31 || b.Fare != 150 || b.Status != models.BookingConfirmed || b.DebitTxID != 21 {
		t.Fatalf("unexpected booking: %+v", b)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingInsufficientBalanceLeavesNoTrace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	expectBookingPrereqs(mock, 1, 7, 100)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM wallets WHERE id=(.+) FOR UPDATE").WithArgs(int64(7)).
		WillReturnRows(walletLockRows(7, 1, 100, models.WalletActive))
	mock.ExpectRollback()

	svc := BookingService{DB: db, Policy: fare.DefaultPolicy()}
	_, err = svc.Create(domain.RequestContext{UserID: 1, Role: domain.RoleStudent}, CreateBookingInput{
		RouteID:       2,
		FromStopID:    5,
		ToStopID:      6,
		DepartureTime: time.Now().Add(2 * time.Hour),
		IsPeakHour:    true,
	})
	if !domain.IsInsufficientBalance(err) {
		t.Fatalf("expected insufficient balance, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingRejectsIdenticalStops(t *testing.T) {
	svc := BookingService{Policy: fare.DefaultPolicy()}
	_, err := svc.Create(domain.RequestContext{UserID: 1}, CreateBookingInput{
		RouteID:       2,
		FromStopID:    5,
		ToStopID:      5,
		DepartureTime: time.Now().Add(time.Hour),
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got: %v", err)
	}
}

func TestCreateBookingRejectsPastDeparture(t *testing.T) {
	svc := BookingService{Policy: fare.DefaultPolicy()}
	_, err := svc.Create(domain.RequestContext{UserID: 1}, CreateBookingInput{
		RouteID:       2,
		FromStopID:    5,
		ToStopID:      6,
		DepartureTime: time.Now().Add(-time.Hour),
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got: %v", err)
	}
}

func TestCancelRefundsStoredFareOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	departure := time.Now().Add(3 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id=(.+) FOR UPDATE").WithArgs(int64(31)).
		WillReturnRows(confirmedBookingRows(31, 1, 150, departure))
	mock.ExpectQuery("FROM wallets WHERE user_id=(.+) FOR UPDATE").WithArgs(int64(1)).
		WillReturnRows(walletLockRows(7, 1, 350, models.WalletActive))
	mock.ExpectExec("UPDATE wallets SET balance=").WithArgs(int64(500), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(int64(7), int64(150), models.TxRefund, "Refund booking #31", sqlmock.AnyArg(), int64(500)).
		WillReturnResult(sqlmock.NewResult(22, 1))
	mock.ExpectExec("UPDATE bookings SET status=").
		WithArgs(models.BookingCancelled, int64(22), sqlmock.AnyArg(), int64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := BookingService{DB: db}
	b, err := svc.Cancel(31, domain.RequestContext{UserID: 1, Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("cancel error: %v", err)
	}
	if b.Status != models.BookingCancelled {
		t.Fatalf("unexpected status: %s", b.Status)
	}
	if b.RefundTxID == nil || *b.RefundTxID != 22 {
		t.Fatalf("refund entry not recorded: %+v", b)
	}
	if b.CancelledAt == nil {
		t.Fatalf("cancelled_at not set")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelAgainIsNoOpWithoutSecondRefund(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	now := time.Now()
	rows := sqlmock.NewRows(bookingColsList).
		AddRow(31, 1, 2, 5, 6, now.Add(3*time.Hour), 150, true, models.BookingCancelled,
			nil, 21, 22, now, now, now)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id=(.+) FOR UPDATE").WithArgs(int64(31)).
		WillReturnRows(rows)
	mock.ExpectRollback()

	svc := BookingService{DB: db}
	b, err := svc.Cancel(31, domain.RequestContext{UserID: 1, Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("second cancel error: %v", err)
	}
	if b.Status != models.BookingCancelled {
		t.Fatalf("unexpected status: %s", b.Status)
	}

	// No wallet lock, no refund insert: the mock would reject any such call.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelDepartedBookingRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id=(.+) FOR UPDATE").WithArgs(int64(31)).
		WillReturnRows(confirmedBookingRows(31, 1, 150, time.Now().Add(-time.Hour)))
	mock.ExpectRollback()

	svc := BookingService{DB: db}
	_, err = svc.Cancel(31, domain.RequestContext{UserID: 1, Role: domain.RoleStudent})
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected invalid state, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelByStrangerForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id=(.+) FOR UPDATE").WithArgs(int64(31)).
		WillReturnRows(confirmedBookingRows(31, 1, 150, time.Now().Add(3*time.Hour)))
	mock.ExpectRollback()

	svc := BookingService{DB: db}
	_, err = svc.Cancel(31, domain.RequestContext{UserID: 2, Role: domain.RoleStudent})
	if !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusOnlyCompletesConfirmed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	admin := domain.RequestContext{UserID: 99, Role: domain.RoleAdmin}
	svc := BookingService{DB: db}

	if _, err := svc.UpdateStatus(31, models.BookingCompleted, domain.RequestContext{UserID: 1, Role: domain.RoleStudent}); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for non-admin, got: %v", err)
	}
	if _, err := svc.UpdateStatus(31, models.BookingCancelled, admin); !domain.IsValidation(err) {
		t.Fatalf("expected validation for cancel-via-status, got: %v", err)
	}

	mock.ExpectQuery("FROM bookings WHERE id=(.+) LIMIT 1").WithArgs(int64(31)).
		WillReturnRows(confirmedBookingRows(31, 1, 150, time.Now().Add(time.Hour)))
	mock.ExpectExec("UPDATE bookings SET status=").
		WithArgs(models.BookingCompleted, int64(31), models.BookingConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	b, err := svc.UpdateStatus(31, models.BookingCompleted, admin)
	if err != nil {
		t.Fatalf("update status error: %v", err)
	}
	if b.Status != models.BookingCompleted {
		t.Fatalf("unexpected status: %s", b.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// A cancel can commit between the confirmed-status read and the completed
// write. The write is guarded on status, so it must touch zero rows and the
// refunded booking must stay cancelled.
func TestUpdateStatusNeverOverwritesConcurrentCancel(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	now := time.Now()
	cancelledRows := func() *sqlmock.Rows {
		return sqlmock.NewRows(bookingColsList).
			AddRow(31, 1, 2, 5, 6, now.Add(3*time.Hour), 150, true, models.BookingCancelled,
				nil, 21, 22, now, now, now)
	}

	// Read still sees confirmed; the cancel lands before the status write.
	mock.ExpectQuery("FROM bookings WHERE id=(.+) LIMIT 1").WithArgs(int64(31)).
		WillReturnRows(confirmedBookingRows(31, 1, 150, now.Add(3*time.Hour)))
	mock.ExpectExec("UPDATE bookings SET status=").
		WithArgs(models.BookingCompleted, int64(31), models.BookingConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM bookings WHERE id=(.+) LIMIT 1").WithArgs(int64(31)).
		WillReturnRows(cancelledRows())

	svc := BookingService{DB: db}
	_, err = svc.UpdateStatus(31, models.BookingCompleted, domain.RequestContext{UserID: 99, Role: domain.RoleAdmin})
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected invalid state, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
