package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"VOICEGUARD_PORT", "VOICEGUARD_DB_PATH", "VOICEGUARD_UPLOAD_DIR",
		"VOICEGUARD_PYTHON", "VOICEGUARD_SCRIPT_DIR", "VOICEGUARD_MAX_ANALYSES",
		"VOICEGUARD_ANALYSIS_TIMEOUT", "VOICEGUARD_CORS_ORIGIN", "VOICEGUARD_JWT_SECRET",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "python3", cfg.PythonBin)
	assert.Equal(t, "./python_scripts", cfg.ScriptDir)
	assert.Equal(t, 4, cfg.MaxAnalyses)
	assert.Equal(t, 2*time.Minute, cfg.AnalysisTimeout)
	assert.Equal(t, "http://localhost:3000", cfg.CORSOrigin)
	assert.Len(t, cfg.JWTSecret, 32, "unset secret falls back to a random key")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VOICEGUARD_PORT", "8080")
	t.Setenv("VOICEGUARD_JWT_SECRET", "configured-secret")
	t.Setenv("VOICEGUARD_MAX_ANALYSES", "2")
	t.Setenv("VOICEGUARD_ANALYSIS_TIMEOUT", "30s")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []byte("configured-secret"), cfg.JWTSecret)
	assert.Equal(t, 2, cfg.MaxAnalyses)
	assert.Equal(t, 30*time.Second, cfg.AnalysisTimeout)
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("VOICEGUARD_MAX_ANALYSES", "not-a-number")
	t.Setenv("VOICEGUARD_ANALYSIS_TIMEOUT", "-5s")

	cfg := Load()

	assert.Equal(t, 4, cfg.MaxAnalyses)
	assert.Equal(t, 2*time.Minute, cfg.AnalysisTimeout)
}
