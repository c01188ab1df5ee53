package config

import (
	"os"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	JWTSecret string
	JWTTTL    time.Duration

	// Seed logins for the three global roles. Real deployments override
	// every one of these.
	AdminPassword     string
	RegistrarPassword string
	ObserverPassword  string

	// DemoMode seeds an in-memory demo election and relaxes voting gates
	// on elections flagged as demo.
	DemoMode bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "asamblea"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	ttl := 8 * time.Hour
	if raw := strings.TrimSpace(os.Getenv("JWT_TTL")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			ttl = parsed
		}
	}

	return Config{
		ServiceName:       service,
		HTTPPort:          port,
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		JWTSecret:         secret,
		JWTTTL:            ttl,
		AdminPassword:     envDefault("ADMIN_PASSWORD", "admin"),
		RegistrarPassword: envDefault("REGISTRAR_PASSWORD", "registrar"),
		ObserverPassword:  envDefault("OBSERVER_PASSWORD", "observer"),
		DemoMode:          envBool("DEMO_MODE", false),
	}, nil
}

func envDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
