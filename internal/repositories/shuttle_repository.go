package repositories

import (
	"database/sql"
	"errors"

	intconfig "backend/internal/config"
	intdb "backend/internal/db"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

type ShuttleRepository struct {
	DB *sql.DB
}

func (r ShuttleRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r ShuttleRepository) GetByID(id int64) (models.Shuttle, error) {
	var (
		s       models.Shuttle
		routeID sql.NullInt64
	)
	err := r.db().QueryRow(`
		SELECT id, plate_number, capacity, route_id, active
		FROM shuttles WHERE id=? LIMIT 1`, id).
		Scan(&s.ID, &s.PlateNumber, &s.Capacity, &routeID, &s.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Shuttle{}, domain.NotFoundError{Resource: "shuttle"}
	}
	if err != nil {
		return models.Shuttle{}, err
	}
	if routeID.Valid {
		s.RouteID = &routeID.Int64
	}
	return s, nil
}

func (r ShuttleRepository) List() ([]models.Shuttle, error) {
	rows, err := r.db().Query(`
		SELECT id, plate_number, capacity, route_id, active
		FROM shuttles ORDER BY plate_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Shuttle{}
	for rows.Next() {
		var (
			s       models.Shuttle
			routeID sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.PlateNumber, &s.Capacity, &routeID, &s.Active); err != nil {
			return nil, err
		}
		if routeID.Valid {
			s.RouteID = &routeID.Int64
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r ShuttleRepository) Create(s models.Shuttle) (int64, error) {
	var routeID int64
	if s.RouteID != nil {
		routeID = *s.RouteID
	}
	res, err := r.db().Exec(`
		INSERT INTO shuttles (plate_number, capacity, route_id, active)
		VALUES (?,?,?,?)`,
		s.PlateNumber, s.Capacity, intdb.NullIfZero(routeID), s.Active)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r ShuttleRepository) Update(s models.Shuttle) error {
	var routeID int64
	if s.RouteID != nil {
		routeID = *s.RouteID
	}
	res, err := r.db().Exec(`
		UPDATE shuttles SET plate_number=?, capacity=?, route_id=?, active=? WHERE id=?`,
		s.PlateNumber, s.Capacity, intdb.NullIfZero(routeID), s.Active, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "shuttle"}
	}
	return nil
}

func (r ShuttleRepository) Delete(id int64) error {
	res, err := r.db().Exec(`DELETE FROM shuttles WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "shuttle"}
	}
	return nil
}
