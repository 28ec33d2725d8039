package repositories

import (
	"database/sql"
	"errors"
	"time"

	intconfig "backend/internal/config"
	intdb "backend/internal/db"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingCols = `id, user_id, route_id, from_stop_id, to_stop_id, departure_time,
	fare, is_peak_hour, status, shuttle_id, debit_tx_id, refund_tx_id,
	created_at, updated_at, cancelled_at`

// Insert persists a confirmed booking inside the caller's transaction, so
// the fare debit and the booking row commit or roll back together.
func (r BookingRepository) Insert(tx *sql.Tx, b models.Booking) (int64, error) {
	res, err := tx.Exec(`
		INSERT INTO bookings
			(user_id, route_id, from_stop_id, to_stop_id, departure_time, fare, is_peak_hour, status, shuttle_id, debit_tx_id)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		b.UserID, b.RouteID, b.FromStopID, b.ToStopID, b.DepartureTime,
		b.Fare, b.IsPeakHour, b.Status, nullableID(b.ShuttleID), b.DebitTxID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BookingRepository) GetByID(id int64) (models.Booking, error) {
	row := r.db().QueryRow(`SELECT `+bookingCols+` FROM bookings WHERE id=? LIMIT 1`, id)
	return scanBooking(row)
}

// LockByID reads the booking under FOR UPDATE so cancel's refund and status
// flip serialize against concurrent cancels of the same booking.
func (r BookingRepository) LockByID(tx *sql.Tx, id int64) (models.Booking, error) {
	row := tx.QueryRow(`SELECT `+bookingCols+` FROM bookings WHERE id=? FOR UPDATE`, id)
	return scanBooking(row)
}

// MarkCancelled flips status and records the refund entry id, inside the
// caller's transaction.
func (r BookingRepository) MarkCancelled(tx *sql.Tx, id, refundTxID int64, at time.Time) error {
	_, err := tx.Exec(`
		UPDATE bookings SET status=?, refund_tx_id=?, cancelled_at=? WHERE id=?`,
		models.BookingCancelled, intdb.NullIfZero(refundTxID), at, id)
	return err
}

// UpdateStatus is the status-only mutation for operational flows. The write
// is guarded on the expected current status so it can never overwrite a
// concurrent cancel; reports whether a row actually changed.
func (r BookingRepository) UpdateStatus(id int64, from, to string) (bool, error) {
	res, err := r.db().Exec(`UPDATE bookings SET status=? WHERE id=? AND status=?`, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AssignShuttle links an operational vehicle to a booking.
func (r BookingRepository) AssignShuttle(id, shuttleID int64) error {
	_, err := r.db().Exec(`UPDATE bookings SET shuttle_id=? WHERE id=?`, intdb.NullIfZero(shuttleID), id)
	return err
}

func (r BookingRepository) ListByUser(userID int64, limit, offset int) ([]models.Booking, error) {
	rows, err := r.db().Query(`
		SELECT `+bookingCols+` FROM bookings
		WHERE user_id=? ORDER BY id DESC LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func (r BookingRepository) ListAll(limit, offset int) ([]models.Booking, error) {
	rows, err := r.db().Query(`
		SELECT `+bookingCols+` FROM bookings
		ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	defer rows.Close()
	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b           models.Booking
		shuttleID   sql.NullInt64
		refundTxID  sql.NullInt64
		cancelledAt sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.RouteID, &b.FromStopID, &b.ToStopID, &b.DepartureTime,
		&b.Fare, &b.IsPeakHour, &b.Status, &shuttleID, &b.DebitTxID, &refundTxID,
		&b.CreatedAt, &b.UpdatedAt, &cancelledAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	if err != nil {
		return models.Booking{}, err
	}
	if shuttleID.Valid {
		b.ShuttleID = &shuttleID.Int64
	}
	if refundTxID.Valid {
		b.RefundTxID = &refundTxID.Int64
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	return b, nil
}

func nullableID(id *int64) any {
	if id == nil || *id == 0 {
		return nil
	}
	return *id
}
