// Package config loads process configuration from the environment once at
// startup. The resulting value is immutable and injected into components at
// construction; nothing reads os.Getenv after boot.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config captures everything the enrollment service reads from the environment.
type Config struct {
	Addr string
	Env  string

	MongoURI      string
	MongoDatabase string

	// Peer service base URLs. An empty URL means the peer is unconfigured;
	// calls then fail closed unless AllowMockFallback is set.
	StudentServiceURL string
	CourseServiceURL  string
	GradeServiceURL   string
	AuthServiceURL    string

	// CallTimeout bounds every outbound peer call.
	CallTimeout time.Duration

	// AllowMockFallback substitutes deterministic placeholder records when a
	// peer is unreachable instead of surfacing 503. Degraded-mode knob only.
	AllowMockFallback bool

	// AuthBypass replaces token validation with a fixed development actor.
	// Refused in production by Validate.
	AuthBypass bool

	// RedisURL enables the peer-validation cache when set.
	RedisURL string

	// KafkaBrokers enables the audit event stream when set.
	KafkaBrokers string
	KafkaTopic   string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:              getEnv("ENROLL_ADDR", ":8080"),
		Env:               getEnv("APP_ENV", "development"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "enrollmentdb"),
		StudentServiceURL: os.Getenv("STUDENT_SERVICE_URL"),
		CourseServiceURL:  os.Getenv("COURSE_SERVICE_URL"),
		GradeServiceURL:   os.Getenv("GRADE_SERVICE_URL"),
		AuthServiceURL:    os.Getenv("AUTH_SERVICE_URL"),
		CallTimeout:       getDuration("SERVICE_CALL_TIMEOUT_MS", 5*time.Second),
		AllowMockFallback: os.Getenv("ALLOW_MOCK_SERVICES") == "true",
		AuthBypass:        os.Getenv("AUTH_BYPASS") == "true",
		RedisURL:          os.Getenv("REDIS_URL"),
		KafkaBrokers:      os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:        getEnv("KAFKA_AUDIT_TOPIC", "enrollment.audit"),
	}
}

// Validate rejects configurations that must never reach production.
func (c Config) Validate() error {
	if c.IsProduction() {
		if c.AuthBypass {
			return errors.New("AUTH_BYPASS must not be enabled in production")
		}
		if c.AllowMockFallback {
			return errors.New("ALLOW_MOCK_SERVICES must not be enabled in production")
		}
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is required")
	}
	return nil
}

// IsProduction returns true when the service runs in production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms <= 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
