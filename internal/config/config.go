package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"solarviz.app/internal/core/series"
	"solarviz.app/pkg/errors"
)

const (
	maxRedisDB       = 15
	maxPortNumber    = 65535
	maxPrefetchSteps = 240
	minTickInterval  = 50 * time.Millisecond
)

// Config represents the application configuration structure
type Config struct {
	Server    ServerConfig    `split_words:"true"`
	Playback  PlaybackConfig  `split_words:"true"`
	Catalog   CatalogConfig   `split_words:"true"`
	FlatStore FlatStoreConfig `split_words:"true"`
	HSDS      HSDSConfig      `split_words:"true"`
	CustomAPI CustomAPIConfig `split_words:"true"`
	Cache     CacheConfig     `split_words:"true"`
	Database  DatabaseConfig  `split_words:"true"`
	Backend   BackendConfig   `split_words:"true"`
	Logging   LoggingConfig   `split_words:"true"`
}

type ServerConfig struct {
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	AllowedOrigins  []string      `envconfig:"SERVER_ALLOWED_ORIGINS" default:"*"`
}

type PlaybackConfig struct {
	TickInterval  time.Duration   `envconfig:"PLAYBACK_TICK_INTERVAL" default:"2s"`
	InitialTime   time.Time       `envconfig:"PLAYBACK_INITIAL_TIME" default:"2010-06-15T00:00:00Z"`
	InitialSeries string          `envconfig:"PLAYBACK_INITIAL_SERIES" default:"measdaily"`
	StepSize      series.StepSize `envconfig:"PLAYBACK_STEP_SIZE" default:"1day"`
	Autostart     bool            `envconfig:"PLAYBACK_AUTOSTART" default:"false"`
}

// CatalogSource selects where series definitions come from
type CatalogSource string

const (
	CatalogSourceStatic   CatalogSource = "static"
	CatalogSourceDatabase CatalogSource = "database"
)

// IsValid checks if the catalog source is known
func (c CatalogSource) IsValid() bool {
	return c == CatalogSourceStatic || c == CatalogSourceDatabase
}

type CatalogConfig struct {
	Source        CatalogSource `envconfig:"CATALOG_SOURCE" default:"static"`
	IntervalStart time.Time     `envconfig:"DATA_INTERVAL_START" default:"2007-01-01T00:00:00Z"`
	IntervalEnd   time.Time     `envconfig:"DATA_INTERVAL_END" default:"2013-12-31T23:00:00Z"`
}

// Interval returns the playable time range
func (c CatalogConfig) Interval() series.Interval {
	return series.Interval{Start: c.IntervalStart.UTC(), End: c.IntervalEnd.UTC()}
}

type FlatStoreConfig struct {
	URLPrefix string `envconfig:"FLAT_STORE_URL_PREFIX" default:"https://solar-viz-data.s3.amazonaws.com/"`
	Alignment string `envconfig:"FLAT_STORE_ALIGNMENT" default:"strict"`
}

type HSDSConfig struct {
	Enabled             bool          `envconfig:"HSDS_ENABLED" default:"true"`
	BaseURL             string        `envconfig:"HSDS_BASE_URL" default:"https://developer.nrel.gov/api/hsds"`
	Domain              string        `envconfig:"HSDS_DOMAIN" default:"/nrel/wtk-us.h5"`
	APIKey              string        `envconfig:"HSDS_API_KEY"`
	Variable            string        `envconfig:"HSDS_VARIABLE" default:"GHI"`
	CoordinatesVariable string        `envconfig:"HSDS_COORDINATES_VARIABLE" default:"coordinates"`
	Epoch               time.Time     `envconfig:"HSDS_EPOCH" default:"2007-01-01T00:00:00Z"`
	XStart              int           `envconfig:"HSDS_X_START" default:"0"`
	XEnd                int           `envconfig:"HSDS_X_END" default:"1601"`
	YStart              int           `envconfig:"HSDS_Y_START" default:"0"`
	YEnd                int           `envconfig:"HSDS_Y_END" default:"2975"`
	Divisor             int           `envconfig:"HSDS_DIVISOR" default:"50"`
	RetryInterval       time.Duration `envconfig:"HSDS_DISCOVERY_RETRY_INTERVAL" default:"5m"`
}

type CustomAPIConfig struct {
	Host      string        `envconfig:"CUSTOM_API_HOST"`
	Lookahead time.Duration `envconfig:"CUSTOM_API_LOOKAHEAD" default:"48h"`
}

// CacheType represents the type of payload store to use
type CacheType int

const (
	CacheTypeUnknown CacheType = iota
	CacheTypeNone
	CacheTypeMemory
	CacheTypeRedis
)

// String returns the string representation of cache type
func (c CacheType) String() string {
	switch c {
	case CacheTypeNone:
		return "none"
	case CacheTypeMemory:
		return "memory"
	case CacheTypeRedis:
		return "redis"
	default:
		return "unknown"
	}
}

// IsValid checks if the cache type is valid
func (c CacheType) IsValid() bool {
	return c == CacheTypeNone || c == CacheTypeMemory || c == CacheTypeRedis
}

// CacheTypeFromString converts string to CacheType enum
func CacheTypeFromString(s string) CacheType {
	switch s {
	case "none":
		return CacheTypeNone
	case "memory":
		return CacheTypeMemory
	case "redis":
		return CacheTypeRedis
	default:
		return CacheTypeUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (c *CacheType) UnmarshalText(text []byte) error {
	*c = CacheTypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (c CacheType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type CacheConfig struct {
	Type          CacheType     `envconfig:"CACHE_TYPE" default:"memory"`
	PrefetchSteps int           `envconfig:"PREFETCH_STEPS" default:"10"`
	MaxEntries    int           `envconfig:"CACHE_MAX_ENTRIES" default:"0"`
	TTL           time.Duration `envconfig:"CACHE_TTL" default:"24h"`
	Redis         RedisConfig   `split_words:"true"`
}

type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"solarviz"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type BackendConfig struct {
	Timeout        time.Duration `envconfig:"BACKEND_HTTP_TIMEOUT" default:"30s"`
	MaxFailures    uint32        `envconfig:"BACKEND_BREAKER_MAX_FAILURES" default:"5"`
	BreakerTimeout time.Duration `envconfig:"BACKEND_BREAKER_TIMEOUT" default:"30s"`
}

type LoggingConfig struct {
	Level         string `envconfig:"LOG_LEVEL" default:"info"`
	FilePath      string `envconfig:"LOG_FILE_PATH" default:""`
	SourceLogging bool   `envconfig:"SOURCE_LOGGING_ENABLED" default:"true"`
}

func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	validators := []func() error{
		c.Server.Validate,
		c.Playback.Validate,
		c.Catalog.Validate,
		c.FlatStore.Validate,
		c.HSDS.Validate,
		c.CustomAPI.Validate,
		c.Cache.Validate,
		c.Backend.Validate,
		c.Logging.Validate,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	if c.Catalog.Source == CatalogSourceDatabase {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}
	if !c.Catalog.Interval().Contains(c.Playback.InitialTime) {
		return errors.NewConfigurationError("PLAYBACK_INITIAL_TIME must lie inside the data interval", nil)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > maxPortNumber {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	if s.ShutdownTimeout <= 0 {
		return errors.NewConfigurationError("SERVER_SHUTDOWN_TIMEOUT must be positive", nil)
	}
	return nil
}

func (p *PlaybackConfig) Validate() error {
	if p.TickInterval < minTickInterval {
		return errors.NewConfigurationError("PLAYBACK_TICK_INTERVAL must be at least 50ms", nil)
	}
	if err := p.StepSize.Validate(); err != nil {
		return errors.NewConfigurationError("invalid PLAYBACK_STEP_SIZE", err)
	}
	return nil
}

func (c *CatalogConfig) Validate() error {
	if !c.Source.IsValid() {
		return errors.NewConfigurationError("CATALOG_SOURCE must be one of: static, database", nil)
	}
	if err := c.Interval().Validate(); err != nil {
		return errors.NewConfigurationError("invalid data interval", err)
	}
	return nil
}

func (f *FlatStoreConfig) Validate() error {
	if err := validateHTTPURL("FLAT_STORE_URL_PREFIX", f.URLPrefix); err != nil {
		return err
	}
	if f.Alignment != "strict" && f.Alignment != "none" {
		return errors.NewConfigurationError("FLAT_STORE_ALIGNMENT must be one of: strict, none", nil)
	}
	return nil
}

func (h *HSDSConfig) Validate() error {
	if !h.Enabled {
		return nil
	}
	if err := validateHTTPURL("HSDS_BASE_URL", h.BaseURL); err != nil {
		return err
	}
	if h.Domain == "" {
		return errors.NewConfigurationError("HSDS_DOMAIN cannot be empty", nil)
	}
	if h.Variable == "" {
		return errors.NewConfigurationError("HSDS_VARIABLE cannot be empty", nil)
	}
	if h.XEnd <= h.XStart || h.YEnd <= h.YStart {
		return errors.NewConfigurationError("HSDS index ranges must be increasing", nil)
	}
	if h.Divisor < 1 {
		return errors.NewConfigurationError("HSDS_DIVISOR must be at least 1", nil)
	}
	if h.RetryInterval < time.Second {
		return errors.NewConfigurationError("HSDS_DISCOVERY_RETRY_INTERVAL must be at least 1s", nil)
	}
	return nil
}

func (c *CustomAPIConfig) Validate() error {
	if c.Host == "" {
		return nil
	}
	if err := validateHTTPURL("CUSTOM_API_HOST", c.Host); err != nil {
		return err
	}
	if c.Lookahead <= 0 {
		return errors.NewConfigurationError("CUSTOM_API_LOOKAHEAD must be positive", nil)
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	if !c.Type.IsValid() {
		return errors.NewConfigurationError("CACHE_TYPE must be one of: none, memory, redis", nil)
	}
	if c.PrefetchSteps < 0 || c.PrefetchSteps > maxPrefetchSteps {
		return errors.NewConfigurationError("PREFETCH_STEPS must be between 0 and 240", nil)
	}
	if c.MaxEntries < 0 {
		return errors.NewConfigurationError("CACHE_MAX_ENTRIES cannot be negative", nil)
	}
	if c.TTL <= 0 {
		return errors.NewConfigurationError("CACHE_TTL must be positive", nil)
	}

	if c.Type == CacheTypeRedis {
		return c.Redis.Validate()
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty when using Redis cache", nil)
	}
	if r.DB < 0 || r.DB > maxRedisDB {
		return errors.NewConfigurationError("REDIS_DB must be between 0 and 15", nil)
	}
	if r.DialTimeout < 1 {
		return errors.NewConfigurationError("REDIS_DIAL_TIMEOUT must be at least 1 second", nil)
	}
	if r.ReadTimeout < 1 {
		return errors.NewConfigurationError("REDIS_READ_TIMEOUT must be at least 1 second", nil)
	}
	if r.WriteTimeout < 1 {
		return errors.NewConfigurationError("REDIS_WRITE_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > maxPortNumber {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	return d.ValidateSSLMode()
}

func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

func (b *BackendConfig) Validate() error {
	if b.Timeout <= 0 {
		return errors.NewConfigurationError("BACKEND_HTTP_TIMEOUT must be positive", nil)
	}
	if b.MaxFailures < 1 {
		return errors.NewConfigurationError("BACKEND_BREAKER_MAX_FAILURES must be at least 1", nil)
	}
	if b.BreakerTimeout <= 0 {
		return errors.NewConfigurationError("BACKEND_BREAKER_TIMEOUT must be positive", nil)
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return errors.NewConfigurationError("LOG_LEVEL must be one of: debug, info, warn, error", nil)
	}
}

func validateHTTPURL(name, value string) error {
	if value == "" {
		return errors.NewConfigurationError(name+" cannot be empty", nil)
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return errors.NewConfigurationError(name+" must start with http:// or https://", nil)
	}
	return nil
}
