package services

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"import-broker/internal/config"
	"import-broker/internal/logger"
	"import-broker/internal/models"
	"import-broker/internal/redis"
)

const (
	arrivalsCacheKey = "current"
	arrivalsCacheTTL = time.Hour

	ArrivalStatusDocked    = "docked"
	ArrivalStatusArriving  = "arriving"
	ArrivalStatusInTransit = "in_transit"
)

// Carrier names used by the simulated feed. Real vessel tracking would come
// from a port-authority integration.
var vesselNames = []string{
	"Morning Crown", "Horizon Ace", "Pacific Pioneer", "Coral Leader",
	"Trans Future 7", "Grand Quest", "Silver Ray", "Asian Majesty",
}

// ArrivalsService maintains a simulated feed of inbound carrier vessels,
// refreshed on a fixed interval and cached in Redis (best effort).
type ArrivalsService struct {
	redis      *redis.Client
	log        *logger.Logger
	interval   time.Duration
	maxVessels int
	rand       *rand.Rand

	mu      sync.RWMutex
	current *models.ArrivalsSnapshot

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewArrivalsService creates the arrivals feed, seeded for reproducible tests.
func NewArrivalsService(redisClient *redis.Client, log *logger.Logger, cfg *config.ArrivalsConfig, seed int64) *ArrivalsService {
	interval := time.Duration(cfg.RefreshSeconds) * time.Second
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	maxVessels := cfg.MaxVessels
	if maxVessels <= 0 {
		maxVessels = 6
	}
	return &ArrivalsService{
		redis:      redisClient,
		log:        log,
		interval:   interval,
		maxVessels: maxVessels,
		rand:       rand.New(rand.NewSource(seed)),
	}
}

// Current returns the latest snapshot, or nil before the first refresh.
func (s *ArrivalsService) Current() *models.ArrivalsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Refresh generates a new snapshot and swaps it in.
func (s *ArrivalsService) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("arrivals refresh aborted: %w", err)
	}

	snapshot := s.generate()

	s.mu.Lock()
	s.current = snapshot
	s.mu.Unlock()

	s.log.WithField("vessels", len(snapshot.Arrivals)).Info("Arrivals feed refreshed")

	if s.redis != nil {
		key := redis.GenerateKey(redis.KeyPrefixArrivals, arrivalsCacheKey)
		if err := s.redis.Set(ctx, key, snapshot, arrivalsCacheTTL); err != nil {
			s.log.WithError(err).Warn("Failed to cache arrivals snapshot")
		}
	}

	return nil
}

func (s *ArrivalsService) generate() *models.ArrivalsSnapshot {
	now := time.Now()

	origins := make([]string, 0, len(baseShippingByOrigin))
	for origin := range baseShippingByOrigin {
		origins = append(origins, origin)
	}
	sort.Strings(origins)

	count := 1 + s.rand.Intn(s.maxVessels)
	arrivals := make([]models.VesselArrival, 0, count)
	for i := 0; i < count; i++ {
		etaHours := s.rand.Intn(24 * 21)
		eta := now.Add(time.Duration(etaHours) * time.Hour)

		status := ArrivalStatusInTransit
		switch {
		case etaHours < 24:
			status = ArrivalStatusDocked
		case etaHours < 24*4:
			status = ArrivalStatusArriving
		}

		arrivals = append(arrivals, models.VesselArrival{
			Vessel: vesselNames[s.rand.Intn(len(vesselNames))],
			Origin: origins[s.rand.Intn(len(origins))],
			ETA:    eta,
			Units:  20 + s.rand.Intn(180),
			Status: status,
		})
	}

	sort.Slice(arrivals, func(i, j int) bool { return arrivals[i].ETA.Before(arrivals[j].ETA) })

	return &models.ArrivalsSnapshot{
		Arrivals:    arrivals,
		GeneratedAt: now,
	}
}

// Start generates the initial snapshot and begins periodic refresh.
func (s *ArrivalsService) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if err := s.Refresh(ctx); err != nil {
		cancel()
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					s.log.WithError(err).Error("Arrivals refresh failed, keeping previous snapshot")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop halts future refreshes.
func (s *ArrivalsService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
