// Package config handles service configuration
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr     string
	DeepLAuthKey string
	SourceLang   string // translation source, e.g. "KO"
	TargetLang   string // translation target, e.g. "EN-US"
	OCRLanguage  string // tesseract language hint, e.g. "kor"
	PollInterval time.Duration
	MinTextChars int // normalized OCR output shorter than this is treated as noise

	// Fingerprint mode: "exact" (SHA-256 of a downsampled thumbnail) or
	// "perceptual" (pHash Hamming distance).
	FingerprintMode       string
	PerceptualMaxDistance int
}

func Load() *Config {
	return &Config{
		HTTPAddr:              getEnv("HTTP_ADDR", ":8000"),
		DeepLAuthKey:          os.Getenv("DEEPL_AUTH_KEY"),
		SourceLang:            getEnv("SOURCE_LANG", "KO"),
		TargetLang:            getEnv("TARGET_LANG", "EN-US"),
		OCRLanguage:           getEnv("OCR_LANGUAGE", "kor"),
		PollInterval:          getEnvDuration("POLL_INTERVAL", 500*time.Millisecond),
		MinTextChars:          getEnvInt("MIN_TEXT_CHARS", 10),
		FingerprintMode:       getEnv("FINGERPRINT_MODE", "exact"),
		PerceptualMaxDistance: getEnvInt("PERCEPTUAL_MAX_DISTANCE", 5),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
