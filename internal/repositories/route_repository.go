package repositories

import (
	"database/sql"
	"errors"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r RouteRepository) GetByID(id int64) (models.Route, error) {
	var rt models.Route
	err := r.db().QueryRow(`
		SELECT id, code, name, fare, peak_hour_fare, active, created_at
		FROM routes WHERE id=? LIMIT 1`, id).
		Scan(&rt.ID, &rt.Code, &rt.Name, &rt.Fare, &rt.PeakHourFare, &rt.Active, &rt.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Route{}, domain.NotFoundError{Resource: "route"}
	}
	if err != nil {
		return models.Route{}, err
	}
	return rt, nil
}

func (r RouteRepository) List(onlyActive bool) ([]models.Route, error) {
	query := `SELECT id, code, name, fare, peak_hour_fare, active, created_at FROM routes`
	if onlyActive {
		query += ` WHERE active=1`
	}
	query += ` ORDER BY code`

	rows, err := r.db().Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		var rt models.Route
		if err := rows.Scan(&rt.ID, &rt.Code, &rt.Name, &rt.Fare, &rt.PeakHourFare, &rt.Active, &rt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r RouteRepository) Create(rt models.Route) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO routes (code, name, fare, peak_hour_fare, active)
		VALUES (?,?,?,?,?)`,
		rt.Code, rt.Name, rt.Fare, rt.PeakHourFare, rt.Active)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r RouteRepository) Update(rt models.Route) error {
	res, err := r.db().Exec(`
		UPDATE routes SET code=?, name=?, fare=?, peak_hour_fare=?, active=? WHERE id=?`,
		rt.Code, rt.Name, rt.Fare, rt.PeakHourFare, rt.Active, rt.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "route"}
	}
	return nil
}

// Deactivate soft-deletes; bookings keep referencing the route for audit.
func (r RouteRepository) Deactivate(id int64) error {
	res, err := r.db().Exec(`UPDATE routes SET active=0 WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "route"}
	}
	return nil
}

func (r RouteRepository) GetStop(id int64) (models.Stop, error) {
	var s models.Stop
	err := r.db().QueryRow(`
		SELECT id, route_id, name, latitude, longitude, sequence
		FROM stops WHERE id=? LIMIT 1`, id).
		Scan(&s.ID, &s.RouteID, &s.Name, &s.Latitude, &s.Longitude, &s.Sequence)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Stop{}, domain.NotFoundError{Resource: "stop"}
	}
	if err != nil {
		return models.Stop{}, err
	}
	return s, nil
}

func (r RouteRepository) StopsOnRoute(routeID int64) ([]models.Stop, error) {
	rows, err := r.db().Query(`
		SELECT id, route_id, name, latitude, longitude, sequence
		FROM stops WHERE route_id=? ORDER BY sequence, id`, routeID)
	if err != nil {
		return nil, err
	}
	return scanStops(rows)
}

func (r RouteRepository) ListAllStops() ([]models.Stop, error) {
	rows, err := r.db().Query(`
		SELECT id, route_id, name, latitude, longitude, sequence
		FROM stops ORDER BY route_id, sequence, id`)
	if err != nil {
		return nil, err
	}
	return scanStops(rows)
}

func scanStops(rows *sql.Rows) ([]models.Stop, error) {
	defer rows.Close()
	out := []models.Stop{}
	for rows.Next() {
		var s models.Stop
		if err := rows.Scan(&s.ID, &s.RouteID, &s.Name, &s.Latitude, &s.Longitude, &s.Sequence); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r RouteRepository) CreateStop(s models.Stop) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO stops (route_id, name, latitude, longitude, sequence)
		VALUES (?,?,?,?,?)`,
		s.RouteID, s.Name, s.Latitude, s.Longitude, s.Sequence)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r RouteRepository) UpdateStop(s models.Stop) error {
	res, err := r.db().Exec(`
		UPDATE stops SET name=?, latitude=?, longitude=?, sequence=? WHERE id=?`,
		s.Name, s.Latitude, s.Longitude, s.Sequence, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "stop"}
	}
	return nil
}

func (r RouteRepository) DeleteStop(id int64) error {
	res, err := r.db().Exec(`DELETE FROM stops WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "stop"}
	}
	return nil
}
