package config

import (
	"crypto/rand"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-wide settings. It is built once in main and
// passed explicitly to the services that need it.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret []byte

	// Analysis gateway settings
	UploadDir       string
	PythonBin       string
	ScriptDir       string
	MaxAnalyses     int
	AnalysisTimeout time.Duration

	CORSOrigin string
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored if present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:            envOr("VOICEGUARD_PORT", "5000"),
		DBPath:          envOr("VOICEGUARD_DB_PATH", "./voiceguard.db"),
		UploadDir:       envOr("VOICEGUARD_UPLOAD_DIR", "./uploads"),
		PythonBin:       envOr("VOICEGUARD_PYTHON", "python3"),
		ScriptDir:       envOr("VOICEGUARD_SCRIPT_DIR", "./python_scripts"),
		MaxAnalyses:     envIntOr("VOICEGUARD_MAX_ANALYSES", 4),
		AnalysisTimeout: envDurationOr("VOICEGUARD_ANALYSIS_TIMEOUT", 2*time.Minute),
		CORSOrigin:      envOr("VOICEGUARD_CORS_ORIGIN", "http://localhost:3000"),
	}

	if secret := os.Getenv("VOICEGUARD_JWT_SECRET"); secret != "" {
		cfg.JWTSecret = []byte(secret)
	} else {
		// No configured secret: generate a random one. Tokens will not
		// survive a restart in this mode.
		log.Println("VOICEGUARD_JWT_SECRET not set, generating a random signing key")
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("failed to generate JWT signing key: %v", err)
		}
		cfg.JWTSecret = b
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
