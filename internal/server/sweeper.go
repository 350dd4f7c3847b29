package server

import (
	"context"

	"tournament-nav/internal/session"
)

// Sweeper defines the minimal session sweeper behavior needed by the server.
type Sweeper interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() session.Status
}
