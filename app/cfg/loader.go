package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/purple_letter.db" description:"Path to the sqlite database file"`

	// Article source configuration
	ScannerDBPath string   `long:"scanner-db-path" env:"SCANNER_DB_PATH" description:"Path to the external news scanner sqlite database (read-only)"`
	FeedURLs      []string `long:"feed-url" env:"FEED_URLS" env-delim:"," description:"RSS/Atom feed URLs used when no scanner database is configured"`
	SyncLimit     int      `long:"sync-limit" env:"SYNC_LIMIT" default:"200" description:"Maximum number of articles fetched per sync"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SyncInterval int    `long:"sync-interval" env:"SYNC_INTERVAL" default:"600" description:"Interval between automatic syncs in seconds (0 disables)"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background task workers"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for selection endpoints (optional)"`

	// Curation policy
	DefaultTopN      int     `long:"default-top-n" env:"DEFAULT_TOP_N" default:"4" description:"Default number of recommended articles"`
	MinImpactScore   int     `long:"min-impact-score" env:"MIN_IMPACT_SCORE" default:"4" description:"Minimum impact score for recommendations"`
	MaxSelected      int     `long:"max-selected" env:"MAX_SELECTED" default:"5" description:"Maximum newsletter size before selection is flagged as over capacity"`
	MinAvgScore      float64 `long:"min-avg-score" env:"MIN_AVG_SCORE" default:"6" description:"Average impact score below which the selection gets a replacement recommendation"`
	EcommerceScoring bool    `long:"ecommerce-scoring" env:"ECOMMERCE_SCORING" description:"Enable the additive e-commerce relevance criterion"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Purple Letter/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Seoul)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	// Optional .env file, real environment wins
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.SyncLimit <= 0 {
		return nil, fmt.Errorf("sync limit must be positive, got %d", raw.SyncLimit)
	}
	if raw.DefaultTopN < 1 {
		return nil, fmt.Errorf("default top N must be at least 1, got %d", raw.DefaultTopN)
	}
	if raw.MaxSelected < 1 {
		return nil, fmt.Errorf("max selected must be at least 1, got %d", raw.MaxSelected)
	}

	cfg := &Cfg{
		DBPath:           raw.DBPath,
		ScannerDBPath:    raw.ScannerDBPath,
		FeedURLs:         raw.FeedURLs,
		SyncLimit:        raw.SyncLimit,
		Port:             raw.Port,
		SyncInterval:     raw.SyncInterval,
		WorkerCount:      raw.WorkerCount,
		APIAccessKey:     raw.APIAccessKey,
		DefaultTopN:      raw.DefaultTopN,
		MinImpactScore:   raw.MinImpactScore,
		MaxSelected:      raw.MaxSelected,
		MinAvgScore:      raw.MinAvgScore,
		EcommerceScoring: raw.EcommerceScoring,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
	}
	return nil
}
