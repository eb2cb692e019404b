package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Kafka     KafkaConfig     `json:"kafka"`
	Logger    LoggerConfig    `json:"logger"`
	Rates     RatesConfig     `json:"rates"`
	Arrivals  ArrivalsConfig  `json:"arrivals"`
	Inventory InventoryConfig `json:"inventory"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
}

// DatabaseConfig configures the Postgres connection.
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// KafkaConfig configures the event bus.
type KafkaConfig struct {
	Brokers []string `json:"brokers"`
	GroupID string   `json:"group_id"`
	Topics  Topics   `json:"topics"`
}

// Topics lists the Kafka topics used by the service.
type Topics struct {
	Rates     string `json:"rates"`
	Quotes    string `json:"quotes"`
	Inquiries string `json:"inquiries"`
}

// LoggerConfig configures logging output.
type LoggerConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file"`
}

// RatesConfig holds the baseline tax rates, fee schedule and refresh cadence
// for the rate table provider. The statutory rates here stand in for a real
// tax-authority feed; confirm with domain owners before trusting them.
type RatesConfig struct {
	RefreshSeconds      int     `json:"refresh_seconds"`
	ImportDutyRate      float64 `json:"import_duty_rate"`
	ExciseDutyRate      float64 `json:"excise_duty_rate"`
	VATRate             float64 `json:"vat_rate"`
	ServiceFeeRate      float64 `json:"service_fee_rate"`
	DefaultShippingCost float64 `json:"default_shipping_cost"`
	ShippingJitterPct   float64 `json:"shipping_jitter_pct"`
	ClearingFee         float64 `json:"clearing_fee"`
	InspectionFee       float64 `json:"inspection_fee"`
	DocumentationFee    float64 `json:"documentation_fee"`
	TaxProcessingFee    float64 `json:"tax_processing_fee"`
	RegistrationFee     float64 `json:"registration_fee"`
	PortHandlingFee     float64 `json:"port_handling_fee"`
}

// ArrivalsConfig configures the simulated port-authority arrivals feed.
type ArrivalsConfig struct {
	RefreshSeconds int `json:"refresh_seconds"`
	MaxVessels     int `json:"max_vessels"`
}

// InventoryConfig holds showcase inventory settings.
type InventoryConfig struct {
	CacheTTLMinutes int `json:"cache_ttl_minutes"`
	DefaultLimit    int `json:"default_limit"`
	MaxLimit        int `json:"max_limit"`
}

// RateLimitConfig configures request rate limiting.
type RateLimitConfig struct {
	Enabled       bool   `json:"enabled"`
	Requests      int    `json:"requests"`
	WindowSeconds int    `json:"window_seconds"`
	KeyPrefix     string `json:"key_prefix"`
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "broker_user"),
			Password: getEnv("DB_PASSWORD", "broker_pass"),
			DBName:   getEnv("DB_NAME", "import_broker"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			GroupID: getEnv("KAFKA_GROUP_ID", "import-broker"),
			Topics: Topics{
				Rates:     getEnv("KAFKA_TOPIC_RATES", "rates"),
				Quotes:    getEnv("KAFKA_TOPIC_QUOTES", "quotes"),
				Inquiries: getEnv("KAFKA_TOPIC_INQUIRIES", "inquiries"),
			},
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		Rates: RatesConfig{
			RefreshSeconds:      getEnvAsInt("RATES_REFRESH_SECONDS", 300),
			ImportDutyRate:      getEnvAsFloat("RATES_IMPORT_DUTY", 0.25),
			ExciseDutyRate:      getEnvAsFloat("RATES_EXCISE_DUTY", 0.25),
			VATRate:             getEnvAsFloat("RATES_VAT", 0.16),
			ServiceFeeRate:      getEnvAsFloat("RATES_SERVICE_FEE", 0.03),
			DefaultShippingCost: getEnvAsFloat("RATES_DEFAULT_SHIPPING", 150000),
			ShippingJitterPct:   getEnvAsFloat("RATES_SHIPPING_JITTER_PCT", 5),
			ClearingFee:         getEnvAsFloat("RATES_FEE_CLEARING", 85000),
			InspectionFee:       getEnvAsFloat("RATES_FEE_INSPECTION", 15000),
			DocumentationFee:    getEnvAsFloat("RATES_FEE_DOCUMENTATION", 25000),
			TaxProcessingFee:    getEnvAsFloat("RATES_FEE_TAX_PROCESSING", 5000),
			RegistrationFee:     getEnvAsFloat("RATES_FEE_REGISTRATION", 3000),
			PortHandlingFee:     getEnvAsFloat("RATES_FEE_PORT_HANDLING", 12000),
		},
		Arrivals: ArrivalsConfig{
			RefreshSeconds: getEnvAsInt("ARRIVALS_REFRESH_SECONDS", 600),
			MaxVessels:     getEnvAsInt("ARRIVALS_MAX_VESSELS", 6),
		},
		Inventory: InventoryConfig{
			CacheTTLMinutes: getEnvAsInt("INVENTORY_CACHE_TTL_MINUTES", 15),
			DefaultLimit:    getEnvAsInt("INVENTORY_DEFAULT_LIMIT", 20),
			MaxLimit:        getEnvAsInt("INVENTORY_MAX_LIMIT", 100),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", false),
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			KeyPrefix:     getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit"),
		},
	}
}

// getEnv reads an environment variable with a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as int with a default.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat reads an environment variable as float64 with a default.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool reads an environment variable as bool with a default.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	if valueStr == "true" || valueStr == "1" || valueStr == "yes" {
		return true
	}
	if valueStr == "false" || valueStr == "0" || valueStr == "no" {
		return false
	}
	return defaultValue
}
