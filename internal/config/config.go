package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server
	ServerPort string

	// CORS
	CORSAllowOrigin string

	// Logging
	LogLevel string

	// Registry backend: consul, kubernetes or file
	RegistryBackend string

	// Consul
	ConsulAddr       string
	ConsulToken      string
	ConsulDatacenter string

	// Kubernetes
	KubeConfig    string
	KubeNamespace string

	// File snapshot
	RegistryFile string

	// Topology
	NamingRulesFile    string
	GatewayConcurrency int

	// Gateway throttling; a non-positive rate disables it
	GatewayRateLimit float64
	GatewayRateBurst int
}

// LoadDotEnv loads a .env file from the working directory into the
// environment. Variables already set are not overridden.
func LoadDotEnv() error {
	return godotenv.Load()
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort:         envOrDefault("SERVER_PORT", "8080"),
		CORSAllowOrigin:    envOrDefault("CORS_ALLOW_ORIGIN", "http://localhost:5173"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		RegistryBackend:    envOrDefault("REGISTRY_BACKEND", "consul"),
		ConsulAddr:         envOrDefault("CONSUL_HTTP_ADDR", "http://localhost:8500"),
		ConsulToken:        envOrDefault("CONSUL_HTTP_TOKEN", ""),
		ConsulDatacenter:   envOrDefault("CONSUL_DATACENTER", ""),
		KubeConfig:         envOrDefault("KUBECONFIG", ""),
		KubeNamespace:      envOrDefault("KUBE_NAMESPACE", "default"),
		RegistryFile:       envOrDefault("REGISTRY_FILE", ""),
		NamingRulesFile:    envOrDefault("NAMING_RULES_FILE", ""),
		GatewayConcurrency: EnvInt("GATEWAY_CONCURRENCY", 8),
		GatewayRateLimit:   EnvFloat("GATEWAY_RATE_LIMIT", 0),
		GatewayRateBurst:   EnvInt("GATEWAY_RATE_BURST", 16),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvInt reads an integer environment variable with a fallback
func EnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// EnvFloat reads a float environment variable with a fallback
func EnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
