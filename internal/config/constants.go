package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background jobs
const (
	CleanupJobInterval = 5 * time.Minute
	CleanupJobTimeout  = 30 * time.Second
	ReconcileTimeout   = 45 * time.Second
	ReconcileBatchSize = 50
	// Intents younger than this are still owned by the request that created them.
	ReconcileMinAge      = 30 * time.Second
	MaxProvisionAttempts = 10
)

// Pagination
const (
	DefaultPage     = 1
	MaxPage         = 1_000_000
	DefaultPageSize = 10
	MinPageSize     = 1
	MaxPageSize     = 100
)

// Auth
const (
	SessionTTL             = 7 * 24 * time.Hour
	VerificationTTL        = 24 * time.Hour
	MinPasswordLen         = 8
	AuthRateLimit          = 10
	AuthRateWindow         = time.Minute
	DefaultRateLimitPerMin = 120
)

// Video platform
const (
	VideoTokenTTL              = time.Hour
	VideoTokenClockSkew        = 60 * time.Second
	DefaultCallType            = "default"
	DefaultExternalHTTPTimeout = 10 * time.Second
)

// Transcripts larger than this are rejected.
const MaxTranscriptBytes = 16 << 20

// Premium products are cached in Redis.
const ProductCacheTTL = 5 * time.Minute
