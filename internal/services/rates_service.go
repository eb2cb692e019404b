package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"import-broker/internal/config"
	"import-broker/internal/logger"
	"import-broker/internal/models"
	"import-broker/internal/redis"
)

const (
	ratesCacheKey = "current"
	ratesCacheTTL = time.Hour
)

// RateSource fetches a fresh rate table. The production implementation is
// simulated; a real tax-authority / port-authority integration would slot in
// behind the same interface.
type RateSource interface {
	Fetch(ctx context.Context) (*models.RateTable, error)
}

// ratesPublisher is the slice of the event producer the rate service needs.
type ratesPublisher interface {
	PublishRatesUpdated(table *models.RateTable) error
}

// Baseline shipping costs per origin port. A real port-authority feed would
// replace these; the simulated source jitters them on every refresh.
var baseShippingByOrigin = map[string]float64{
	"japan":        150000,
	"singapore":    160000,
	"thailand":     165000,
	"uae":          180000,
	"south_africa": 190000,
	"australia":    210000,
	"uk":           220000,
}

// defaultEngineBands orders displacement bands with non-decreasing multipliers.
var defaultEngineBands = []models.EngineBand{
	{Code: "0-1000", Label: "Up to 1000cc", MaxCC: 1000, Multiplier: 1.0},
	{Code: "1001-1500", Label: "1001–1500cc", MaxCC: 1500, Multiplier: 1.1},
	{Code: "1501-2000", Label: "1501–2000cc", MaxCC: 2000, Multiplier: 1.2},
	{Code: "2001-3000", Label: "2001–3000cc", MaxCC: 3000, Multiplier: 1.35},
	{Code: "3001+", Label: "Above 3000cc", Multiplier: 1.5},
}

// defaultAgeBands orders age bands with non-increasing depreciation factors.
var defaultAgeBands = []models.AgeBand{
	{Code: "0-1", Label: "Under 1 year", MaxYears: 1, Factor: 1.0},
	{Code: "1-2", Label: "1–2 years", MaxYears: 2, Factor: 0.95},
	{Code: "2-4", Label: "2–4 years", MaxYears: 4, Factor: 0.85},
	{Code: "4-6", Label: "4–6 years", MaxYears: 6, Factor: 0.75},
	{Code: "6-8", Label: "6–8 years", MaxYears: 8, Factor: 0.65},
	{Code: "8+", Label: "Over 8 years", Factor: 0.5},
}

// SimulatedRateSource produces rate tables from configured statutory rates
// and jittered shipping costs. Each fetch yields a new immutable table with
// an incremented version.
type SimulatedRateSource struct {
	cfg  *config.RatesConfig
	rand *rand.Rand

	mu      sync.Mutex
	version int64
}

// NewSimulatedRateSource creates a source seeded for reproducible tests.
func NewSimulatedRateSource(cfg *config.RatesConfig, seed int64) *SimulatedRateSource {
	return &SimulatedRateSource{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(seed)),
	}
}

// Fetch builds the next rate table.
func (s *SimulatedRateSource) Fetch(ctx context.Context) (*models.RateTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++

	jitter := s.cfg.ShippingJitterPct / 100
	shipping := make(map[string]float64, len(baseShippingByOrigin))
	for origin, base := range baseShippingByOrigin {
		factor := 1 + (s.rand.Float64()*2-1)*jitter
		shipping[origin] = base * factor
	}

	return &models.RateTable{
		Version:             s.version,
		FetchedAt:           time.Now(),
		ImportDutyRate:      s.cfg.ImportDutyRate,
		ExciseDutyRate:      s.cfg.ExciseDutyRate,
		VATRate:             s.cfg.VATRate,
		ServiceFeeRate:      s.cfg.ServiceFeeRate,
		ShippingByOrigin:    shipping,
		DefaultShippingCost: s.cfg.DefaultShippingCost,
		Fees: models.FeeSchedule{
			Clearing:      s.cfg.ClearingFee,
			Inspection:    s.cfg.InspectionFee,
			Documentation: s.cfg.DocumentationFee,
			TaxProcessing: s.cfg.TaxProcessingFee,
			Registration:  s.cfg.RegistrationFee,
			PortHandling:  s.cfg.PortHandlingFee,
		},
		EngineBands: defaultEngineBands,
		AgeBands:    defaultAgeBands,
	}, nil
}

// RateService keeps the current rate table and refreshes it on a fixed
// interval. A failed refresh leaves the previous table in effect; each
// successful refresh caches the table in Redis (best effort) and publishes a
// rates.updated event.
type RateService struct {
	source   RateSource
	redis    *redis.Client
	producer ratesPublisher
	log      *logger.Logger
	interval time.Duration

	mu      sync.RWMutex
	current *models.RateTable

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRateService creates the rate provider.
func NewRateService(source RateSource, redisClient *redis.Client, producer ratesPublisher, log *logger.Logger, cfg *config.RatesConfig) *RateService {
	interval := time.Duration(cfg.RefreshSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RateService{
		source:   source,
		redis:    redisClient,
		producer: producer,
		log:      log,
		interval: interval,
	}
}

// Current returns the rate table in effect. Callers must treat it as
// immutable. Returns nil before the first successful refresh.
func (s *RateService) Current() *models.RateTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Refresh fetches a new table and swaps it in.
func (s *RateService) Refresh(ctx context.Context) error {
	table, err := s.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch rate table: %w", err)
	}

	s.mu.Lock()
	s.current = table
	s.mu.Unlock()

	s.log.WithField("version", table.Version).Info("Rate table refreshed")

	if s.redis != nil {
		key := redis.GenerateKey(redis.KeyPrefixRates, ratesCacheKey)
		if err := s.redis.Set(ctx, key, table, ratesCacheTTL); err != nil {
			s.log.WithError(err).Warn("Failed to cache rate table")
		}
	}

	if s.producer != nil {
		if err := s.producer.PublishRatesUpdated(table); err != nil {
			s.log.WithError(err).Warn("Failed to publish rates updated event")
		}
	}

	return nil
}

// Start loads the initial table and begins periodic refresh. It fails if the
// first fetch fails; later failures only log and keep the previous table.
func (s *RateService) Start() error {
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
					s.log.WithError(err).Error("Rate table refresh failed, keeping previous table")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop halts future refreshes. Already-running refreshes are synchronous and
// short-lived; there is nothing in flight to cancel.
func (s *RateService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
