package cfg

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const (
	DefaultFeedURL = "https://www.blogger.com/feeds/8982037438137564684/posts/default"
	cacheDirName   = "crosreleasenotifier"
)

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Rendering configuration
	Decorator  string `short:"D" long:"decorator" env:"DECORATOR" default:"markdown" choice:"markdown" choice:"plain" description:"Decorator to format the release HTML with"`
	Format     string `short:"f" long:"format" env:"FORMAT" default:"pretty" choice:"json" choice:"pretty" choice:"yaml" choice:"rss" choice:"notification" description:"Format to print releases in"`
	Unfiltered bool   `short:"F" long:"no-filter" description:"Disable filtering the release HTML to remove boilerplate"`

	// Feed configuration
	FeedURL   string `long:"feed-url" env:"FEED_URL" default:"https://www.blogger.com/feeds/8982037438137564684/posts/default" description:"Chrome Releases feed endpoint"`
	Releases  uint   `short:"r" long:"releases" default:"25" description:"Number of releases to fetch from the feed (not the number of releases returned)"`
	Start     uint   `short:"s" long:"start" default:"1" description:"Start index of releases to fetch from the feed"`
	Timeout   int    `long:"timeout" env:"TIMEOUT" default:"30" description:"HTTP timeout in seconds"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests"`

	// State configuration
	Diff     bool   `short:"d" long:"diff" description:"Store and use a timestamp to only show new releases"`
	CacheDir string `long:"cache-dir" env:"CACHE_DIR" description:"Directory holding the state database (default: XDG cache dir)"`

	// Serve configuration
	Serve             bool   `long:"serve" env:"SERVE" description:"Run the HTTP server instead of printing releases"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"900" description:"Feed refresh interval in seconds"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"1" description:"Number of background workers"`

	// Application metadata
	Timezone    string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/London)"`
	Debug       bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	ShowVersion bool   `short:"V" long:"version" description:"Print version and exit"`
}

var globalCfg *Cfg

// Load parses command-line arguments and environment variables. It returns
// nil, nil when help or the version was printed.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.ShowVersion {
		fmt.Println(GetVersion())
		return nil, nil
	}

	cfg := &Cfg{
		Decorator:         raw.Decorator,
		Format:            raw.Format,
		Unfiltered:        raw.Unfiltered,
		FeedURL:           raw.FeedURL,
		Releases:          raw.Releases,
		Start:             raw.Start,
		Timeout:           raw.Timeout,
		UserAgent:         cmp.Or(raw.UserAgent, "cros-releases/"+GetVersion()),
		Diff:              raw.Diff,
		CacheDir:          raw.CacheDir,
		Serve:             raw.Serve,
		Port:              raw.Port,
		SchedulerInterval: raw.SchedulerInterval,
		WorkerCount:       raw.WorkerCount,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if cfg.CacheDir == "" {
		dir, err := defaultCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cache directory: %w", err)
		}
		cfg.CacheDir = dir
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
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

// DatabasePath is the SQLite file holding the diff timestamp and served releases.
func (c *Cfg) DatabasePath() string {
	return filepath.Join(c.CacheDir, "releases.db")
}

func (c *Cfg) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

func (c *Cfg) GetSchedulerInterval() time.Duration {
	if c.SchedulerInterval <= 0 {
		return 900 * time.Second
	}
	return time.Duration(c.SchedulerInterval) * time.Second
}

func validate(cfg *Cfg) error {
	if cfg.FeedURL == "" {
		return fmt.Errorf("feed URL is required")
	}
	if cfg.Releases == 0 {
		return fmt.Errorf("releases must be positive")
	}
	if cfg.Start == 0 {
		return fmt.Errorf("start index must be positive")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if cfg.Serve && cfg.WorkerCount <= 0 {
		return fmt.Errorf("worker count must be positive")
	}
	return nil
}

func defaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, cacheDirName), nil
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
