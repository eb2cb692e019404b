package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"import-broker/internal/apperror"
	"import-broker/internal/config"
	"import-broker/internal/models"
	"import-broker/internal/redis"

	"github.com/DATA-DOG/go-sqlmock"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

func testInventoryConfig() *config.InventoryConfig {
	return &config.InventoryConfig{
		CacheTTLMinutes: 15,
		DefaultLimit:    20,
		MaxLimit:        100,
	}
}

func testVehicleRequest() *models.CreateVehicleRequest {
	return &models.CreateVehicleRequest{
		Registration: "KDJ 001A",
		Make:         "Toyota",
		Model:        "Harrier",
		Year:         2021,
		EngineCC:     1986,
		Mileage:      42000,
		Price:        4200000,
		Origin:       "Japan",
	}
}

func vehicleColumns() []string {
	return []string{
		"id", "registration", "make", "model", "year", "engine_cc", "mileage",
		"price", "origin", "image_url", "available", "created_at", "updated_at",
	}
}

func TestVehicleService_CreateVehicle(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	svc := NewVehicleService(db, nil, testLogger(), testInventoryConfig())

	mock.ExpectExec("INSERT INTO vehicles").WillReturnResult(sqlmock.NewResult(1, 1))

	vehicle, err := svc.CreateVehicle(context.Background(), testVehicleRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if vehicle.Registration != "KDJ 001A" {
		t.Fatalf("registration not normalized: %q", vehicle.Registration)
	}
	if vehicle.Origin != "japan" {
		t.Fatalf("origin not normalized: %q", vehicle.Origin)
	}
	if !vehicle.Available {
		t.Fatalf("new vehicle should be available")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVehicleService_CreateVehicle_DuplicateRegistration(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	svc := NewVehicleService(db, nil, testLogger(), testInventoryConfig())

	mock.ExpectExec("INSERT INTO vehicles").
		WillReturnError(&pq.Error{Code: "23505"})

	if _, err := svc.CreateVehicle(context.Background(), testVehicleRequest()); !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestVehicleService_CreateVehicle_Validation(t *testing.T) {
	svc := NewVehicleService(nil, nil, testLogger(), testInventoryConfig())

	cases := []struct {
		name   string
		mutate func(*models.CreateVehicleRequest)
	}{
		{"missing registration", func(r *models.CreateVehicleRequest) { r.Registration = " " }},
		{"missing make", func(r *models.CreateVehicleRequest) { r.Make = "" }},
		{"year too old", func(r *models.CreateVehicleRequest) { r.Year = 1960 }},
		{"zero engine", func(r *models.CreateVehicleRequest) { r.EngineCC = 0 }},
		{"zero price", func(r *models.CreateVehicleRequest) { r.Price = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testVehicleRequest()
			tc.mutate(req)
			if _, err := svc.CreateVehicle(context.Background(), req); !apperror.Is(err, apperror.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestVehicleService_GetVehicle(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	svc := NewVehicleService(db, nil, testLogger(), testInventoryConfig())

	id := uuid.New()
	mock.ExpectQuery("SELECT id, registration").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(vehicleColumns()).
			AddRow(id, "KDJ 001A", "Toyota", "Harrier", 2021, 1986, 42000, 4200000.0, "japan", nil, true, time.Now(), time.Now()))

	vehicle, err := svc.GetVehicle(context.Background(), id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if vehicle.Make != "Toyota" || vehicle.EngineCC != 1986 {
		t.Fatalf("unexpected vehicle: %+v", vehicle)
	}
}

func TestVehicleService_GetVehicle_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	svc := NewVehicleService(db, nil, testLogger(), testInventoryConfig())

	id := uuid.New()
	mock.ExpectQuery("SELECT id, registration").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	if _, err := svc.GetVehicle(context.Background(), id); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVehicleService_GetVehicle_CacheHit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := redis.Connect(&config.RedisConfig{Host: "127.0.0.1", Port: mr.Port(), DB: 0}, testLogger())
	if err != nil {
		t.Fatalf("failed to connect to miniredis: %v", err)
	}
	defer rdb.Close()

	db, mock := newMockDB(t)
	defer db.Close()

	svc := NewVehicleService(db, rdb, testLogger(), testInventoryConfig())

	id := uuid.New()
	mock.ExpectQuery("SELECT id, registration").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(vehicleColumns()).
			AddRow(id, "KDJ 001A", "Toyota", "Harrier", 2021, 1986, 42000, 4200000.0, "japan", nil, true, time.Now(), time.Now()))

	if _, err := svc.GetVehicle(context.Background(), id); err != nil {
		t.Fatalf("first get failed: %v", err)
	}

	// Second read must come from cache, no second query expectation is set.
	vehicle, err := svc.GetVehicle(context.Background(), id)
	if err != nil {
		t.Fatalf("cached get failed: %v", err)
	}
	if vehicle.ID != id {
		t.Fatalf("cached vehicle mismatch: %+v", vehicle)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVehicleService_SetAvailability_InvalidatesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := redis.Connect(&config.RedisConfig{Host: "127.0.0.1", Port: mr.Port(), DB: 0}, testLogger())
	if err != nil {
		t.Fatalf("failed to connect to miniredis: %v", err)
	}
	defer rdb.Close()

	db, mock := newMockDB(t)
	defer db.Close()

	svc := NewVehicleService(db, rdb, testLogger(), testInventoryConfig())

	id := uuid.New()
	cacheKey := redis.GenerateKey(redis.KeyPrefixVehicle, id.String())
	if err := rdb.Set(context.Background(), cacheKey, &models.Vehicle{ID: id}, time.Minute); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	mock.ExpectExec("UPDATE vehicles").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.SetAvailability(context.Background(), id, false); err != nil {
		t.Fatalf("set availability failed: %v", err)
	}

	exists, err := rdb.Exists(context.Background(), cacheKey)
	if err != nil {
		t.Fatalf("exists check failed: %v", err)
	}
	if exists {
		t.Fatalf("cache entry should have been invalidated")
	}
}

func TestVehicleService_SetAvailability_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	svc := NewVehicleService(db, nil, testLogger(), testInventoryConfig())

	mock.ExpectExec("UPDATE vehicles").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := svc.SetAvailability(context.Background(), uuid.New(), false); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVehicleService_ListVehicles_Filters(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	svc := NewVehicleService(db, nil, testLogger(), testInventoryConfig())

	available := true
	filter := &models.VehicleFilter{
		Query:     "harrier",
		Origin:    "Japan",
		YearFrom:  2018,
		PriceMax:  5000000,
		Available: &available,
		Limit:     10,
	}

	mock.ExpectQuery("SELECT id, registration").
		WithArgs("%harrier%", "japan", 2018, 5000000.0, true, 10).
		WillReturnRows(sqlmock.NewRows(vehicleColumns()).
			AddRow(uuid.New(), "KDJ 001A", "Toyota", "Harrier", 2021, 1986, 42000, 4200000.0, "japan", nil, true, time.Now(), time.Now()))

	vehicles, err := svc.ListVehicles(context.Background(), filter)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(vehicles) != 1 {
		t.Fatalf("expected one vehicle, got %d", len(vehicles))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVehicleService_ListVehicles_LimitClamped(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	svc := NewVehicleService(db, nil, testLogger(), testInventoryConfig())

	mock.ExpectQuery("SELECT id, registration").
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows(vehicleColumns()))

	if _, err := svc.ListVehicles(context.Background(), &models.VehicleFilter{Limit: 500}); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
