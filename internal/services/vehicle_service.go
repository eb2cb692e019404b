package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"import-broker/internal/apperror"
	"import-broker/internal/config"
	"import-broker/internal/database"
	"import-broker/internal/logger"
	"import-broker/internal/models"
	"import-broker/internal/redis"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	defaultVehicleLimit    = 20
	maxVehicleLimit        = 100
	defaultVehicleCacheTTL = 15 * time.Minute
)

// VehicleService manages the showcase inventory. Single-vehicle reads are
// cached in Redis; writes invalidate the whole vehicle namespace.
type VehicleService struct {
	db           *database.DB
	redis        *redis.Client
	log          *logger.Logger
	cacheTTL     time.Duration
	defaultLimit int
	maxLimit     int
}

// NewVehicleService creates the inventory service.
func NewVehicleService(db *database.DB, redisClient *redis.Client, log *logger.Logger, cfg *config.InventoryConfig) *VehicleService {
	cacheTTL := defaultVehicleCacheTTL
	defaultLimit := defaultVehicleLimit
	maxLimit := maxVehicleLimit

	if cfg != nil {
		if cfg.CacheTTLMinutes > 0 {
			cacheTTL = time.Duration(cfg.CacheTTLMinutes) * time.Minute
		}
		if cfg.DefaultLimit > 0 {
			defaultLimit = cfg.DefaultLimit
		}
		if cfg.MaxLimit > 0 {
			maxLimit = cfg.MaxLimit
		}
	}

	return &VehicleService{
		db:           db,
		redis:        redisClient,
		log:          log,
		cacheTTL:     cacheTTL,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// CreateVehicle lists a new vehicle. Registration numbers are unique.
func (s *VehicleService) CreateVehicle(ctx context.Context, req *models.CreateVehicleRequest) (*models.Vehicle, error) {
	if err := validateVehicleRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	vehicle := &models.Vehicle{
		ID:           uuid.New(),
		Registration: strings.ToUpper(strings.TrimSpace(req.Registration)),
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		EngineCC:     req.EngineCC,
		Mileage:      req.Mileage,
		Price:        req.Price,
		Origin:       strings.ToLower(strings.TrimSpace(req.Origin)),
		ImageURL:     req.ImageURL,
		Available:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `
		INSERT INTO vehicles (id, registration, make, model, year, engine_cc, mileage, price, origin, image_url, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.ExecContext(ctx, query,
		vehicle.ID, vehicle.Registration, vehicle.Make, vehicle.Model, vehicle.Year,
		vehicle.EngineCC, vehicle.Mileage, vehicle.Price, vehicle.Origin,
		vehicle.ImageURL, vehicle.Available, vehicle.CreatedAt, vehicle.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperror.Conflict("vehicle with this registration already exists", err)
		}
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	s.invalidateCache(ctx)

	s.log.WithFields(map[string]interface{}{
		"vehicle_id":   vehicle.ID,
		"registration": vehicle.Registration,
	}).Info("Vehicle listed")

	return vehicle, nil
}

// GetVehicle returns a single vehicle, serving from cache when possible.
func (s *VehicleService) GetVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error) {
	cacheKey := redis.GenerateKey(redis.KeyPrefixVehicle, vehicleID.String())

	var cached models.Vehicle
	if s.tryGetFromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	query := `
		SELECT id, registration, make, model, year, engine_cc, mileage, price, origin, image_url, available, created_at, updated_at
		FROM vehicles
		WHERE id = $1
	`

	vehicle := &models.Vehicle{}
	err := s.db.QueryRowContext(ctx, query, vehicleID).Scan(
		&vehicle.ID, &vehicle.Registration, &vehicle.Make, &vehicle.Model, &vehicle.Year,
		&vehicle.EngineCC, &vehicle.Mileage, &vehicle.Price, &vehicle.Origin,
		&vehicle.ImageURL, &vehicle.Available, &vehicle.CreatedAt, &vehicle.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("vehicle not found", err)
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	s.saveToCache(ctx, cacheKey, vehicle)

	return vehicle, nil
}

// ListVehicles returns inventory matching the filter, newest first.
func (s *VehicleService) ListVehicles(ctx context.Context, filter *models.VehicleFilter) ([]*models.Vehicle, error) {
	if filter == nil {
		filter = &models.VehicleFilter{}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	query := `
		SELECT id, registration, make, model, year, engine_cc, mileage, price, origin, image_url, available, created_at, updated_at
		FROM vehicles
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if q := strings.TrimSpace(filter.Query); q != "" {
		query += fmt.Sprintf(" AND (make ILIKE $%d OR model ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+q+"%")
		argIndex++
	}
	if filter.Origin != "" {
		query += fmt.Sprintf(" AND origin = $%d", argIndex)
		args = append(args, strings.ToLower(filter.Origin))
		argIndex++
	}
	if filter.YearFrom > 0 {
		query += fmt.Sprintf(" AND year >= $%d", argIndex)
		args = append(args, filter.YearFrom)
		argIndex++
	}
	if filter.YearTo > 0 {
		query += fmt.Sprintf(" AND year <= $%d", argIndex)
		args = append(args, filter.YearTo)
		argIndex++
	}
	if filter.PriceMin > 0 {
		query += fmt.Sprintf(" AND price >= $%d", argIndex)
		args = append(args, filter.PriceMin)
		argIndex++
	}
	if filter.PriceMax > 0 {
		query += fmt.Sprintf(" AND price <= $%d", argIndex)
		args = append(args, filter.PriceMax)
		argIndex++
	}
	if filter.Available != nil {
		query += fmt.Sprintf(" AND available = $%d", argIndex)
		args = append(args, *filter.Available)
		argIndex++
	}

	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, limit)
	argIndex++

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		v := &models.Vehicle{}
		if err := rows.Scan(
			&v.ID, &v.Registration, &v.Make, &v.Model, &v.Year,
			&v.EngineCC, &v.Mileage, &v.Price, &v.Origin,
			&v.ImageURL, &v.Available, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicles: %w", err)
	}

	return vehicles, nil
}

// SetAvailability marks a vehicle as sold or back in stock.
func (s *VehicleService) SetAvailability(ctx context.Context, vehicleID uuid.UUID, available bool) error {
	query := `
		UPDATE vehicles
		SET available = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, available, time.Now(), vehicleID)
	if err != nil {
		return fmt.Errorf("failed to update vehicle availability: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("vehicle not found", nil)
	}

	s.invalidateCache(ctx)

	s.log.WithFields(map[string]interface{}{
		"vehicle_id": vehicleID,
		"available":  available,
	}).Info("Vehicle availability updated")

	return nil
}

func validateVehicleRequest(req *models.CreateVehicleRequest) error {
	if strings.TrimSpace(req.Registration) == "" {
		return apperror.Validation("registration is required", nil)
	}
	if strings.TrimSpace(req.Make) == "" || strings.TrimSpace(req.Model) == "" {
		return apperror.Validation("make and model are required", nil)
	}
	if req.Year < 1980 || req.Year > time.Now().Year()+1 {
		return apperror.Validation("year is out of range", nil)
	}
	if req.EngineCC <= 0 {
		return apperror.Validation("engine capacity must be positive", nil)
	}
	if req.Price <= 0 {
		return apperror.Validation("price must be positive", nil)
	}
	return nil
}

func (s *VehicleService) tryGetFromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.redis == nil {
		return false
	}
	if err := s.redis.Get(ctx, key, dest); err != nil {
		return false
	}
	return true
}

func (s *VehicleService) saveToCache(ctx context.Context, key string, value interface{}) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to cache vehicle")
	}
}

func (s *VehicleService) invalidateCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.DeleteByPrefix(ctx, redis.KeyPrefixVehicle); err != nil {
		s.log.WithError(err).Warn("Failed to invalidate vehicle cache")
	}
}
