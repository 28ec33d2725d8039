package services

import (
	"testing"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestNearbyStopsOrdersByDistance(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	mock.ExpectQuery("FROM stops ORDER BY route_id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "route_id", "name", "latitude", "longitude", "sequence"}).
			AddRow(1, 1, "Rektorat", -6.3600, 106.8300, 1).
			AddRow(2, 1, "Gerbang Utama", -6.3610, 106.8310, 2).
			AddRow(3, 2, "Asrama", -6.4000, 106.9000, 1))

	svc := RouteService{DB: db}
	out, err := svc.NearbyStops(-6.3612, 106.8312, 2)
	if err != nil {
		t.Fatalf("nearby error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(out))
	}
	if out[0].Stop.Name != "Gerbang Utama" || out[1].Stop.Name != "Rektorat" {
		t.Fatalf("unexpected order: %s, %s", out[0].Stop.Name, out[1].Stop.Name)
	}
	if out[0].DistanceKm > out[1].DistanceKm {
		t.Fatalf("distances not ascending: %f > %f", out[0].DistanceKm, out[1].DistanceKm)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNearbyStopsRejectsBadCoordinates(t *testing.T) {
	svc := RouteService{}
	if _, err := svc.NearbyStops(123, 0, 5); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got: %v", err)
	}
}

func TestCreateStopRequiresExistingRoute(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	mock.ExpectQuery("FROM routes WHERE id=").WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "fare", "peak_hour_fare", "active", "created_at"}))

	svc := RouteService{DB: db}
	_, err = svc.CreateStop(models.Stop{RouteID: 99, Name: "Kantin", Latitude: -6.36, Longitude: 106.83})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRouteValidation(t *testing.T) {
	svc := RouteService{}

	if _, err := svc.CreateRoute(models.Route{Name: "Tanpa Kode", Fare: 100}); !domain.IsValidation(err) {
		t.Fatalf("expected validation for missing code, got: %v", err)
	}
	if _, err := svc.CreateRoute(models.Route{Code: "R9", Name: "Negatif", Fare: -1}); !domain.IsValidation(err) {
		t.Fatalf("expected validation for negative fare, got: %v", err)
	}
	if _, err := svc.CreateStop(models.Stop{RouteID: 1, Name: "Salah", Latitude: 95, Longitude: 0}); !domain.IsValidation(err) {
		t.Fatalf("expected validation for bad latitude, got: %v", err)
	}
	if _, err := svc.CreateShuttle(models.Shuttle{PlateNumber: "", Capacity: 10}); !domain.IsValidation(err) {
		t.Fatalf("expected validation for missing plate, got: %v", err)
	}
}

func TestCreateRoutePersists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	intconfig.DB = db

	mock.ExpectExec("INSERT INTO routes").
		WithArgs("R2", "Lingkar Timur", int64(100), int64(120), true).
		WillReturnResult(sqlmock.NewResult(4, 1))

	svc := RouteService{DB: db}
	rt, err := svc.CreateRoute(models.Route{Code: "R2", Name: "Lingkar Timur", Fare: 100, PeakHourFare: 120, Active: true})
	if err != nil {
		t.Fatalf("create route error: %v", err)
	}
	if rt.ID != 4 {
		t.Fatalf("unexpected id: %d", rt.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
