package gateway

import "time"

type Config struct {
	EndpointURL string
	APIKey      string
	Timeout     time.Duration
	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.Timeout <= 0 {
		out.Timeout = 30 * time.Second
	}
	if out.MaxBodyBytes <= 0 {
		out.MaxBodyBytes = 1 << 20
	}
	return &out
}
