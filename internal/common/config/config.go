// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Retrieval    RetrievalConfig    `mapstructure:"retrieval"`
	Scoring      ScoringConfig      `mapstructure:"scoring"`
	Weights      WeightsConfig      `mapstructure:"weights"`
	Verification VerificationConfig `mapstructure:"verification"`
	Sources      SourcesConfig      `mapstructure:"sources"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	ReadTimeout    int    `mapstructure:"read_timeout"`    // milliseconds
	WriteTimeout   int    `mapstructure:"write_timeout"`   // milliseconds
	SessionTTL     int    `mapstructure:"session_ttl"`     // milliseconds
	MaxSessions    int    `mapstructure:"max_sessions"`
	EnableProfiler bool   `mapstructure:"enable_profiler"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Pipeline Configuration Sections ---

// RetrievalConfig drives the candidate index query.
type RetrievalConfig struct {
	IndexName string `mapstructure:"index_name"`
	DefaultK  int    `mapstructure:"default_k"`
	MaxK      int    `mapstructure:"max_k"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
}

// ScoringConfig carries the sub-score constants. These are tuning knobs,
// not invariants, so they live in configuration rather than code.
type ScoringConfig struct {
	NeutralDefault        float64 `mapstructure:"neutral_default"`
	SalaryCeiling         float64 `mapstructure:"salary_ceiling"`          // INR/year; log-scale saturation point
	UnverifiedRatingWeight float64 `mapstructure:"unverified_rating_weight"` // mentor ratings without the verified flag
	ProximitySameState    float64 `mapstructure:"proximity_same_state"`
	ProximityFloor        float64 `mapstructure:"proximity_floor"`
}

// WeightsConfig holds the default preference weights applied when a request
// supplies none. A request with explicit broken weights is still rejected.
type WeightsConfig struct {
	Quality   float64 `mapstructure:"quality"`
	Trust     float64 `mapstructure:"trust"`
	Relevance float64 `mapstructure:"relevance"`
	Proximity float64 `mapstructure:"proximity"`
}

// VerificationConfig drives claim verification fan-out and matching.
type VerificationConfig struct {
	SourceTimeout      int                `mapstructure:"source_timeout"` // milliseconds, per source query
	PoolSize           int                `mapstructure:"pool_size"`      // 0 = number of configured sources
	PercentageTolerance float64           `mapstructure:"percentage_tolerance"` // absolute points
	SalaryTolerance    float64            `mapstructure:"salary_tolerance"`     // fraction of asserted value
	SeatsTolerance     int                `mapstructure:"seats_tolerance"`
	MaxSeatClaims      int                `mapstructure:"max_seat_claims"` // per candidate
	FieldImportance    map[string]float64 `mapstructure:"field_importance"`
	CacheTTL           int                `mapstructure:"cache_ttl"` // milliseconds, source record cache
}

// SourcesConfig locates the authoritative source catalog.
type SourcesConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
	DataDir     string `mapstructure:"data_dir"` // static source data files
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
