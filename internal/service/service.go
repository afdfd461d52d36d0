package service

import (
	"context"

	"launch_control/internal/logger"
	"launch_control/internal/models"
	"launch_control/internal/repository"
)

// Launch is the control loop: the only goroutine that touches the sequencer.
// Stop via context cancellation in main() for graceful shutdown.
type Launch interface {
	Run(ctx context.Context)
	Do(ctx context.Context, cmd Command) (Result, error)
}

// Journal is the append-only session log.
type Journal interface {
	Record(e models.LaunchEvent)
	List(ctx context.Context, f JournalFilter) ([]models.LaunchEvent, error)
}

// JournalRunner is a Journal that drains its queue on a goroutine of its own.
type JournalRunner interface {
	Journal
	Run(ctx context.Context)
}

type Service struct {
	Launch
	Journal JournalRunner
}

// NewService wires the repository layer and the sequencer collaborators into
// the concrete services.
func NewService(repos *repository.Repository, deps LaunchDeps, journalQueue int, log *logger.Logger) *Service {
	journal := NewJournalService(repos.EventRepo, journalQueue, log)
	return &Service{
		Launch:  NewLaunchService(deps, journal, log),
		Journal: journal,
	}
}
