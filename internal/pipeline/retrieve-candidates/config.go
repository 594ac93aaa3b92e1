// internal/pipeline/retrieve-candidates/config.go
package retrievecandidates

import "time"

type Config struct {
	DefaultK int
	MaxK     int
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultK: 10,
		MaxK:     50,
		Timeout:  5 * time.Second,
	}
}
