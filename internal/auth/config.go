package auth

import "time"

// Config holds session token configuration.
type Config struct {
	Issuer string
	Secret string
	TTL    time.Duration
}

// DefaultIssuer is the iss claim stamped on every session token.
const DefaultIssuer = "medflow-operations-service"

// NewConfig builds a Config, defaulting the TTL to twelve hours.
func NewConfig(secret string, ttl time.Duration) Config {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return Config{
		Issuer: DefaultIssuer,
		Secret: secret,
		TTL:    ttl,
	}
}
