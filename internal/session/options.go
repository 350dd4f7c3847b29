package session

import (
	"log/slog"
	"time"

	"tournament-nav/internal/config"
	"tournament-nav/internal/metrics"
	"tournament-nav/internal/season"
	"tournament-nav/internal/view"
)

// OptionsFor builds the composer and season resolver described by nav.
func OptionsFor(nav config.NavigationConfig, logger *slog.Logger, recorder *metrics.Recorder) Options {
	return Options{
		Composer: view.NewComposer(view.Routes{
			DefaultTournament: nav.DefaultTournament,
			DefaultStage:      nav.DefaultStage,
			Tournaments:       nav.Tournaments,
		}),
		Resolver: season.New(time.Month(nav.SeasonBoundary), nil),
		Logger:   logger,
		Recorder: recorder,
	}
}
