package services

import (
	"database/sql"
	"math"
	"sort"
	"strings"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
)

// RouteService manages the route/stop/shuttle directory. The booking flow
// only reads from it; mutations are admin surfaces.
type RouteService struct {
	RouteRepo   repositories.RouteRepository
	ShuttleRepo repositories.ShuttleRepository
	DB          *sql.DB
	RequestID   string
}

func (s RouteService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s RouteService) routes() repositories.RouteRepository {
	if s.RouteRepo.DB != nil {
		return s.RouteRepo
	}
	return repositories.RouteRepository{DB: s.db()}
}

func (s RouteService) shuttles() repositories.ShuttleRepository {
	if s.ShuttleRepo.DB != nil {
		return s.ShuttleRepo
	}
	return repositories.ShuttleRepository{DB: s.db()}
}

func (s RouteService) ListRoutes(includeInactive bool) ([]models.Route, error) {
	out, err := s.routes().List(!includeInactive)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}

func (s RouteService) GetRoute(id int64) (models.Route, []models.Stop, error) {
	route, err := s.routes().GetByID(id)
	if err != nil {
		return models.Route{}, nil, err
	}
	stops, err := s.routes().StopsOnRoute(id)
	if err != nil {
		return models.Route{}, nil, domain.InternalError{Err: err}
	}
	return route, stops, nil
}

func (s RouteService) CreateRoute(rt models.Route) (models.Route, error) {
	if err := validateRoute(rt); err != nil {
		return models.Route{}, err
	}
	id, err := s.routes().Create(rt)
	if err != nil {
		return models.Route{}, domain.InternalError{Err: err}
	}
	rt.ID = id
	return rt, nil
}

func (s RouteService) UpdateRoute(rt models.Route) (models.Route, error) {
	if rt.ID <= 0 {
		return models.Route{}, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	if err := validateRoute(rt); err != nil {
		return models.Route{}, err
	}
	if err := s.routes().Update(rt); err != nil {
		if domain.IsNotFound(err) {
			return models.Route{}, err
		}
		return models.Route{}, domain.InternalError{Err: err}
	}
	return rt, nil
}

func (s RouteService) DeactivateRoute(id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	err := s.routes().Deactivate(id)
	if err != nil && !domain.IsNotFound(err) {
		return domain.InternalError{Err: err}
	}
	return err
}

func validateRoute(rt models.Route) error {
	if strings.TrimSpace(rt.Code) == "" {
		return domain.ValidationError{Field: "code", Msg: "wajib diisi"}
	}
	if strings.TrimSpace(rt.Name) == "" {
		return domain.ValidationError{Field: "name", Msg: "wajib diisi"}
	}
	if rt.Fare < 0 || rt.PeakHourFare < 0 {
		return domain.ValidationError{Field: "fare", Msg: "tidak boleh negatif"}
	}
	return nil
}

func (s RouteService) CreateStop(st models.Stop) (models.Stop, error) {
	if err := validateStop(st); err != nil {
		return models.Stop{}, err
	}
	if _, err := s.routes().GetByID(st.RouteID); err != nil {
		return models.Stop{}, err
	}
	id, err := s.routes().CreateStop(st)
	if err != nil {
		return models.Stop{}, domain.InternalError{Err: err}
	}
	st.ID = id
	return st, nil
}

func (s RouteService) UpdateStop(st models.Stop) (models.Stop, error) {
	if st.ID <= 0 {
		return models.Stop{}, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	if err := validateStop(st); err != nil {
		return models.Stop{}, err
	}
	if err := s.routes().UpdateStop(st); err != nil {
		if domain.IsNotFound(err) {
			return models.Stop{}, err
		}
		return models.Stop{}, domain.InternalError{Err: err}
	}
	return st, nil
}

func (s RouteService) DeleteStop(id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	err := s.routes().DeleteStop(id)
	if err != nil && !domain.IsNotFound(err) {
		return domain.InternalError{Err: err}
	}
	return err
}

func validateStop(st models.Stop) error {
	if st.RouteID <= 0 {
		return domain.ValidationError{Field: "route_id", Msg: "id tidak valid"}
	}
	if strings.TrimSpace(st.Name) == "" {
		return domain.ValidationError{Field: "name", Msg: "wajib diisi"}
	}
	if st.Latitude < -90 || st.Latitude > 90 || st.Longitude < -180 || st.Longitude > 180 {
		return domain.ValidationError{Field: "coordinates", Msg: "koordinat tidak valid"}
	}
	return nil
}

// NearbyStops returns the closest stops to a point, nearest first.
func (s RouteService) NearbyStops(lat, lng float64, limit int) ([]models.NearbyStop, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, domain.ValidationError{Field: "coordinates", Msg: "koordinat tidak valid"}
	}
	if limit <= 0 || limit > 50 {
		limit = 5
	}

	stops, err := s.routes().ListAllStops()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}

	out := make([]models.NearbyStop, 0, len(stops))
	for _, st := range stops {
		out = append(out, models.NearbyStop{
			Stop:       st,
			DistanceKm: haversineKm(lat, lng, st.Latitude, st.Longitude),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

func (s RouteService) ListShuttles() ([]models.Shuttle, error) {
	out, err := s.shuttles().List()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}

func (s RouteService) CreateShuttle(sh models.Shuttle) (models.Shuttle, error) {
	if err := s.validateShuttle(sh); err != nil {
		return models.Shuttle{}, err
	}
	id, err := s.shuttles().Create(sh)
	if err != nil {
		return models.Shuttle{}, domain.InternalError{Err: err}
	}
	sh.ID = id
	return sh, nil
}

func (s RouteService) UpdateShuttle(sh models.Shuttle) (models.Shuttle, error) {
	if sh.ID <= 0 {
		return models.Shuttle{}, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	if err := s.validateShuttle(sh); err != nil {
		return models.Shuttle{}, err
	}
	if err := s.shuttles().Update(sh); err != nil {
		if domain.IsNotFound(err) {
			return models.Shuttle{}, err
		}
		return models.Shuttle{}, domain.InternalError{Err: err}
	}
	return sh, nil
}

func (s RouteService) DeleteShuttle(id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	err := s.shuttles().Delete(id)
	if err != nil && !domain.IsNotFound(err) {
		return domain.InternalError{Err: err}
	}
	return err
}

func (s RouteService) validateShuttle(sh models.Shuttle) error {
	if strings.TrimSpace(sh.PlateNumber) == "" {
		return domain.ValidationError{Field: "plate_number", Msg: "wajib diisi"}
	}
	if sh.Capacity <= 0 {
		return domain.ValidationError{Field: "capacity", Msg: "harus lebih dari 0"}
	}
	if sh.RouteID != nil && *sh.RouteID > 0 {
		if _, err := s.routes().GetByID(*sh.RouteID); err != nil {
			return err
		}
	}
	return nil
}
