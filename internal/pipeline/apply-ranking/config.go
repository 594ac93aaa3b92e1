// internal/pipeline/apply-ranking/config.go
package applyranking

type Config struct {
	// DefaultK bounds the returned list when the caller asks for nothing
	// specific.
	DefaultK int
}

func LoadConfig() *Config {
	return &Config{
		DefaultK: 10,
	}
}
