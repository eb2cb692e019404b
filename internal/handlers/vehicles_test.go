package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"import-broker/internal/apperror"
	"import-broker/internal/models"

	"github.com/google/uuid"
)

type stubVehicleService struct {
	vehicle    *models.Vehicle
	list       []*models.Vehicle
	err        error
	lastFilter *models.VehicleFilter
}

func (s *stubVehicleService) CreateVehicle(ctx context.Context, req *models.CreateVehicleRequest) (*models.Vehicle, error) {
	return s.vehicle, s.err
}
func (s *stubVehicleService) GetVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error) {
	return s.vehicle, s.err
}
func (s *stubVehicleService) ListVehicles(ctx context.Context, filter *models.VehicleFilter) ([]*models.Vehicle, error) {
	s.lastFilter = filter
	return s.list, s.err
}
func (s *stubVehicleService) SetAvailability(ctx context.Context, vehicleID uuid.UUID, available bool) error {
	return s.err
}

func testVehicle() *models.Vehicle {
	return &models.Vehicle{
		ID:           uuid.New(),
		Registration: "KDJ 001A",
		Make:         "Toyota",
		Model:        "Harrier",
		Year:         2021,
		EngineCC:     1986,
		Price:        4200000,
		Origin:       "japan",
		Available:    true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestVehicleHandler_CreateVehicle(t *testing.T) {
	vehicle := testVehicle()
	handler := NewVehicleHandler(&stubVehicleService{vehicle: vehicle}, newTestLogger())

	body := bytes.NewBufferString(`{"registration":"KDJ 001A","make":"Toyota","model":"Harrier","year":2021,"engine_cc":1986,"price":4200000,"origin":"japan"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", body)
	rr := httptest.NewRecorder()
	handler.CreateVehicle(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
}

func TestVehicleHandler_CreateVehicle_Conflict(t *testing.T) {
	handler := NewVehicleHandler(&stubVehicleService{err: apperror.Conflict("vehicle with this registration already exists", nil)}, newTestLogger())

	body := bytes.NewBufferString(`{"registration":"KDJ 001A","make":"Toyota","model":"Harrier","year":2021,"engine_cc":1986,"price":4200000,"origin":"japan"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", body)
	rr := httptest.NewRecorder()
	handler.CreateVehicle(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestVehicleHandler_GetVehicle_NotFound(t *testing.T) {
	handler := NewVehicleHandler(&stubVehicleService{err: apperror.NotFound("vehicle not found", nil)}, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles/"+uuid.New().String(), nil)
	rr := httptest.NewRecorder()
	handler.GetVehicle(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestVehicleHandler_ListVehicles_FilterParsing(t *testing.T) {
	svc := &stubVehicleService{list: []*models.Vehicle{testVehicle()}}
	handler := NewVehicleHandler(svc, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles?q=harrier&origin=japan&year_from=2018&price_max=5000000&available=true&limit=10", nil)
	rr := httptest.NewRecorder()
	handler.ListVehicles(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	f := svc.lastFilter
	if f == nil {
		t.Fatalf("filter not passed to service")
	}
	if f.Query != "harrier" || f.Origin != "japan" || f.YearFrom != 2018 || f.PriceMax != 5000000 {
		t.Fatalf("unexpected filter: %+v", f)
	}
	if f.Available == nil || !*f.Available {
		t.Fatalf("available filter not parsed: %+v", f)
	}
	if f.Limit != 10 {
		t.Fatalf("limit not parsed: %d", f.Limit)
	}
}

func TestVehicleHandler_UpdateAvailability(t *testing.T) {
	handler := NewVehicleHandler(&stubVehicleService{}, newTestLogger())

	id := uuid.New()
	body := bytes.NewBufferString(`{"available":false}`)
	req := httptest.NewRequest(http.MethodPut, "/api/vehicles/"+id.String()+"/availability", body)
	rr := httptest.NewRecorder()
	handler.UpdateAvailability(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var got map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got["available"] != false {
		t.Fatalf("unexpected response: %v", got)
	}
}

func TestVehicleHandler_UpdateAvailability_MethodNotAllowed(t *testing.T) {
	handler := NewVehicleHandler(&stubVehicleService{}, newTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/vehicles/"+uuid.New().String()+"/availability", nil)
	rr := httptest.NewRecorder()
	handler.UpdateAvailability(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
