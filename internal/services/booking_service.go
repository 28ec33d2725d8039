package services

import (
	"database/sql"
	"fmt"
	"time"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/fare"
	"backend/internal/repositories"
	"backend/internal/utils"

	"github.com/google/uuid"
)

// BookingService drives the booking lifecycle. The fare debit and the
// booking row are written in one SQL transaction, and the refund plus the
// status flip likewise: there is no observable state where a booking exists
// without its debit, or is cancelled without its refund.
type BookingService struct {
	BookingRepo repositories.BookingRepository
	WalletRepo  repositories.WalletRepository
	RouteRepo   repositories.RouteRepository
	Ledger      LedgerService
	Policy      fare.Policy
	DB          *sql.DB
	RequestID   string
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) bookings() repositories.BookingRepository {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepository{DB: s.db()}
}

func (s BookingService) wallets() repositories.WalletRepository {
	if s.WalletRepo.DB != nil {
		return s.WalletRepo
	}
	return repositories.WalletRepository{DB: s.db()}
}

func (s BookingService) routes() repositories.RouteRepository {
	if s.RouteRepo.DB != nil {
		return s.RouteRepo
	}
	return repositories.RouteRepository{DB: s.db()}
}

func (s BookingService) ledger() LedgerService {
	l := s.Ledger
	if l.DB == nil {
		l.DB = s.db()
	}
	if l.RequestID == "" {
		l.RequestID = s.RequestID
	}
	return l
}

// CreateBookingInput is the validated request for Create. IsPeakHour comes
// from the caller (the recommendation/booking flow owns that determination).
type CreateBookingInput struct {
	RouteID       int64
	FromStopID    int64
	ToStopID      int64
	DepartureTime time.Time
	IsPeakHour    bool
}

// Create validates the route and stops, prices the fare, debits the wallet
// and persists the booking as confirmed, all or nothing. On
// InsufficientBalance the caller must prompt the user to recharge; there is
// no retry loop here.
func (s BookingService) Create(actor domain.RequestContext, in CreateBookingInput) (models.Booking, error) {
	if in.RouteID <= 0 || in.FromStopID <= 0 || in.ToStopID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "route/stop", Msg: "id tidak valid"}
	}
	if in.FromStopID == in.ToStopID {
		return models.Booking{}, domain.ValidationError{Field: "to_stop_id", Msg: "stop asal dan tujuan sama"}
	}
	if in.DepartureTime.IsZero() {
		return models.Booking{}, domain.ValidationError{Field: "departure_time", Msg: "wajib diisi"}
	}
	if in.DepartureTime.Before(time.Now()) {
		return models.Booking{}, domain.ValidationError{Field: "departure_time", Msg: "sudah lewat"}
	}

	route, err := s.routes().GetByID(in.RouteID)
	if err != nil {
		return models.Booking{}, err
	}
	if !route.Active {
		return models.Booking{}, domain.ValidationError{Field: "route_id", Msg: "route tidak aktif"}
	}

	fromStop, err := s.routes().GetStop(in.FromStopID)
	if err != nil {
		return models.Booking{}, err
	}
	toStop, err := s.routes().GetStop(in.ToStopID)
	if err != nil {
		return models.Booking{}, err
	}
	if fromStop.RouteID != route.ID || toStop.RouteID != route.ID {
		return models.Booking{}, domain.ValidationError{Field: "stop", Msg: "stop tidak berada di route ini"}
	}

	// Lazily ensure the wallet exists before entering the money transaction.
	wallet, err := s.ledger().GetOrCreate(actor.UserID)
	if err != nil {
		return models.Booking{}, err
	}

	base := route.Fare
	if in.IsPeakHour && route.PeakHourFare > 0 {
		base = route.PeakHourFare
	}
	amount := s.Policy.Price(base, in.IsPeakHour)

	tx, err := s.db().Begin()
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	w, err := s.wallets().LockByID(tx, wallet.ID)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Booking{}, err
		}
		return models.Booking{}, domain.InternalError{Err: err}
	}
	if !w.Active() {
		return models.Booking{}, domain.WalletInactiveError{Status: w.Status}
	}
	if amount > w.Balance {
		return models.Booking{}, domain.InsufficientBalanceError{Balance: w.Balance, Required: amount}
	}

	newBalance := w.Balance - amount
	if err := s.wallets().UpdateBalance(tx, w.ID, newBalance); err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	debitID, err := s.wallets().InsertEntry(tx, models.WalletTransaction{
		WalletID:     w.ID,
		Amount:       -amount,
		Type:         models.TxTicketPurchase,
		Description:  fmt.Sprintf("Tiket %s: %s -> %s", route.Code, fromStop.Name, toStop.Name),
		Reference:    uuid.NewString(),
		BalanceAfter: newBalance,
	})
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}

	booking := models.Booking{
		UserID:        actor.UserID,
		RouteID:       route.ID,
		FromStopID:    fromStop.ID,
		ToStopID:      toStop.ID,
		DepartureTime: in.DepartureTime,
		Fare:          amount,
		IsPeakHour:    in.IsPeakHour,
		Status:        models.BookingConfirmed,
		DebitTxID:     debitID,
	}
	bookingID, err := s.bookings().Insert(tx, booking)
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}

	if err := tx.Commit(); err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("booking_id=%d fare=%d peak=%t", bookingID, amount, in.IsPeakHour))

	booking.ID = bookingID
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	return booking, nil
}

// Cancel refunds the stored fare (never repriced) and flips the status in
// one transaction. Cancelling an already-cancelled booking is an idempotent
// no-op: it returns the current record and never refunds twice.
func (s BookingService) Cancel(bookingID int64, actor domain.RequestContext) (models.Booking, error) {
	if bookingID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "id tidak valid"}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	defer tx.Rollback()

	b, err := s.bookings().LockByID(tx, bookingID)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Booking{}, err
		}
		return models.Booking{}, domain.InternalError{Err: err}
	}

	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return models.Booking{}, domain.ForbiddenError{Msg: "bukan pemilik booking"}
	}
	if b.Status == models.BookingCancelled {
		return b, nil
	}
	if b.Status == models.BookingCompleted {
		return models.Booking{}, domain.InvalidStateError{State: b.Status, Msg: "booking sudah selesai"}
	}
	if b.DepartureTime.Before(time.Now()) {
		return models.Booking{}, domain.InvalidStateError{State: b.Status, Msg: "tidak bisa membatalkan booking yang sudah lewat"}
	}

	w, err := s.wallets().LockByUserID(tx, b.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Booking{}, err
		}
		return models.Booking{}, domain.InternalError{Err: err}
	}
	// A closed wallet cannot take the refund; the cancellation must not
	// silently succeed while losing it.
	if !w.Active() {
		return models.Booking{}, domain.WalletInactiveError{Status: w.Status}
	}

	now := time.Now()
	var refundID int64
	if b.Refundable() {
		newBalance := w.Balance + b.Fare
		if err := s.wallets().UpdateBalance(tx, w.ID, newBalance); err != nil {
			return models.Booking{}, domain.InternalError{Err: err}
		}
		refundID, err = s.wallets().InsertEntry(tx, models.WalletTransaction{
			WalletID:     w.ID,
			Amount:       b.Fare,
			Type:         models.TxRefund,
			Description:  fmt.Sprintf("Refund booking #%d", b.ID),
			Reference:    uuid.NewString(),
			BalanceAfter: newBalance,
		})
		if err != nil {
			return models.Booking{}, domain.InternalError{Err: err}
		}
	}

	if err := s.bookings().MarkCancelled(tx, b.ID, refundID, now); err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}

	if err := tx.Commit(); err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "booking", "cancel",
		fmt.Sprintf("booking_id=%d refund=%d", b.ID, b.Fare))

	b.Status = models.BookingCancelled
	b.CancelledAt = &now
	if refundID > 0 {
		b.RefundTxID = &refundID
	}
	return b, nil
}

// UpdateStatus is the status-only mutation used by operational flows to
// mark a ride completed. No fare or wallet side effects; cancellations must
// go through Cancel.
func (s BookingService) UpdateStatus(bookingID int64, newStatus string, actor domain.RequestContext) (models.Booking, error) {
	if !actor.IsAdmin() {
		return models.Booking{}, domain.ForbiddenError{Msg: "hanya admin"}
	}
	if newStatus != models.BookingCompleted {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "hanya bisa diubah ke completed"}
	}

	b, err := s.bookings().GetByID(bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if b.Status != models.BookingConfirmed {
		return models.Booking{}, domain.InvalidStateError{State: b.Status, Msg: "hanya booking confirmed yang bisa diselesaikan"}
	}

	ok, err := s.bookings().UpdateStatus(b.ID, models.BookingConfirmed, newStatus)
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	if !ok {
		// Lost the race to a concurrent cancel; report the state it is in now.
		cur, err := s.bookings().GetByID(b.ID)
		if err != nil {
			return models.Booking{}, err
		}
		return models.Booking{}, domain.InvalidStateError{State: cur.Status, Msg: "hanya booking confirmed yang bisa diselesaikan"}
	}
	b.Status = newStatus
	return b, nil
}

// GetByID returns a booking the actor may see (owner or admin).
func (s BookingService) GetByID(bookingID int64, actor domain.RequestContext) (models.Booking, error) {
	b, err := s.bookings().GetByID(bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return models.Booking{}, domain.ForbiddenError{Msg: "bukan pemilik booking"}
	}
	return b, nil
}

// ListForUser returns the actor's bookings, newest first.
func (s BookingService) ListForUser(userID int64, limit, offset int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = historyDefaultLimit
	}
	if limit > historyMaxLimit {
		limit = historyMaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	out, err := s.bookings().ListByUser(userID, limit, offset)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}

// ListAll is the admin listing.
func (s BookingService) ListAll(limit, offset int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = historyDefaultLimit
	}
	if limit > historyMaxLimit {
		limit = historyMaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	out, err := s.bookings().ListAll(limit, offset)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}
