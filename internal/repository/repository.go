package repository

import (
	"context"
	"database/sql"

	"launch_control/internal/models"
)

// EventRepo is the session journal store.
type EventRepo interface {
	Append(ctx context.Context, e models.LaunchEvent) error
	List(ctx context.Context, typ string, limit int) ([]models.LaunchEvent, error)
}

type Repository struct {
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
	}
}
