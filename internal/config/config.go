package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The defaults mirror a local development setup;
// only JWT_SECRET is strictly required because signing tokens with a
// well-known fallback value would silently break authentication.
type Config struct {
	Env        string        // application environment (e.g. "dev", "prod")
	Port       string        // HTTP port to listen on
	DataDir    string        // directory holding the xlsx data files
	StaticDir  string        // optional directory of static assets to serve
	JWTSecret  string        // secret used to sign JWTs
	TokenTTL   time.Duration // lifetime of issued auth tokens
	BcryptCost int           // bcrypt cost for password hashing
	GeoAPIBase string        // base URL of the IP geolocation API
	TrackPath  string        // request path that records visitor analytics
	LogLevel   string        // zap log level (debug/info/warn/error)
	LogFormat  string        // zap output format (json/console)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:        envStr("APP_ENV", "dev"),
		Port:       envStr("APP_PORT", "3001"),
		DataDir:    envStr("DATA_DIR", "."),
		StaticDir:  os.Getenv("STATIC_DIR"), // empty disables static serving
		JWTSecret:  must("JWT_SECRET"),
		TokenTTL:   envDur("TOKEN_TTL", 24*time.Hour),
		BcryptCost: envInt("BCRYPT_COST", 10),
		GeoAPIBase: envStr("GEO_API_BASE", "https://ipapi.co"),
		TrackPath:  envStr("VISITOR_TRACK_PATH", "/visitor-info.html"),
		LogLevel:   envStr("LOG_LEVEL", "info"),
		LogFormat:  envStr("LOG_FORMAT", "json"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
