package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	PostgresDSN   string
	RedisURL      string
	JWTSigningKey string
	JWTIssuer     string
}

// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
var ShutdownTimeout = 10 * time.Second

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("ESCOLAR_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("ESCOLAR_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	issuer := os.Getenv("ESCOLAR_JWT_ISSUER")
	if issuer == "" {
		issuer = "escolar"
	}

	return Server{
		Addr:          addr,
		PostgresDSN:   os.Getenv("ESCOLAR_POSTGRES_DSN"),
		RedisURL:      os.Getenv("ESCOLAR_REDIS_URL"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     issuer,
	}
}
