package config

import (
	"os"
	"strconv"
	"strings"
)

// Env holds process configuration resolved once at startup. Tunables that
// used to be feature-flag globals (fare multipliers, default balance) live
// here and are passed down explicitly.
type Env struct {
	AppAddr string
	GinMode string

	DBDSN string

	JWTSecret string

	// DefaultWalletBalance seeds a wallet created lazily on first access.
	DefaultWalletBalance int64

	// Fare policy knobs. Peak surcharge / off-peak discount multipliers.
	PeakMultiplier    float64
	OffPeakMultiplier float64
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		secret = "super-secret-key-change-me"
	}

	return Env{
		AppAddr:              appAddr,
		GinMode:              ginMode,
		DBDSN:                dsn,
		JWTSecret:            secret,
		DefaultWalletBalance: envInt64("WALLET_DEFAULT_BALANCE", 0),
		PeakMultiplier:       envFloat("FARE_PEAK_MULTIPLIER", 1.25),
		OffPeakMultiplier:    envFloat("FARE_OFFPEAK_MULTIPLIER", 0.90),
	}
}

func envInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}
