package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"tournament-nav/internal/timeutil"
)

// Config holds runtime configuration for the server and terminal client.
type Config struct {
	Port        string `env:"PORT" envDefault:"4000"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	InitialPath string `env:"INITIAL_PATH" envDefault:"/"`
	LogFile     string `env:"LOG_FILE"`

	Navigation NavigationConfig
	Sessions   SessionConfig
	Metrics    MetricsConfig
}

// NavigationConfig controls redirects and season inference.
type NavigationConfig struct {
	DefaultTournament string   `env:"DEFAULT_TOURNAMENT" envDefault:"wc"`
	DefaultStage      string   `env:"DEFAULT_STAGE" envDefault:"groups"`
	Tournaments       []string `env:"TOURNAMENTS" envDefault:"wc,el,cl" envSeparator:","`
	// Month a new season starts in.
	SeasonBoundary timeutil.Month `env:"SEASON_BOUNDARY_MONTH" envDefault:"7"`
}

// SessionConfig controls how long idle navigation sessions are kept.
type SessionConfig struct {
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Navigation.Tournaments = normalizeCodes(cfg.Navigation.Tournaments)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that would break navigation.
func (c Config) Validate() error {
	var errs []error
	nav := c.Navigation

	if !validCode(nav.DefaultTournament) {
		errs = append(errs, fmt.Errorf("DEFAULT_TOURNAMENT %q must be a non-empty code without '/'", nav.DefaultTournament))
	}
	if !validCode(nav.DefaultStage) {
		errs = append(errs, fmt.Errorf("DEFAULT_STAGE %q must be a non-empty code without '/'", nav.DefaultStage))
	}
	for _, code := range nav.Tournaments {
		if !validCode(code) {
			errs = append(errs, fmt.Errorf("TOURNAMENTS entry %q must not contain '/'", code))
		}
	}
	// The root redirect targets /{DEFAULT_TOURNAMENT}; it only settles when
	// that path is itself a bare code redirect.
	if !slices.Contains(nav.Tournaments, nav.DefaultTournament) {
		errs = append(errs, fmt.Errorf("DEFAULT_TOURNAMENT %q must be listed in TOURNAMENTS", nav.DefaultTournament))
	}
	if nav.SeasonBoundary < timeutil.Month(time.January) || nav.SeasonBoundary > timeutil.Month(time.December) {
		errs = append(errs, fmt.Errorf("SEASON_BOUNDARY_MONTH %d out of range", nav.SeasonBoundary))
	}
	if c.Sessions.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Sessions.SweepInterval <= 0 {
		errs = append(errs, errors.New("SESSION_SWEEP_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}

func validCode(code string) bool {
	return code != "" && !strings.Contains(code, "/")
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			out = append(out, code)
		}
	}
	return out
}
