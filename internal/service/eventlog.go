package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"launch_control/internal/logger"
	"launch_control/internal/models"
	"launch_control/internal/repository"

	"github.com/google/uuid"
)

const (
	DefaultJournalQueue = 64

	appendTimeout = time.Second
)

var (
	errUnknownEventType = errors.New("unknown event type")
	errNegativeLimit    = errors.New("limit must be >= 0")
)

// JournalService records session events off the control loop. Record never
// blocks; Run drains the queue into the event repository.
type JournalService struct {
	eventRepo repository.EventRepo
	log       *logger.Logger
	queue     chan models.LaunchEvent
	now       func() time.Time
}

func NewJournalService(eventRepo repository.EventRepo, size int, log *logger.Logger) *JournalService {
	if size <= 0 {
		size = DefaultJournalQueue
	}
	if log == nil {
		log = logger.Nop()
	}
	return &JournalService{
		eventRepo: eventRepo,
		log:       log,
		queue:     make(chan models.LaunchEvent, size),
		now:       time.Now,
	}
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

func validEventType(s string) bool {
	switch s {
	case "", models.EventTransition, models.EventConfig, models.EventFire, models.EventRejected:
		return true
	}
	return false
}

// Record stamps e and queues it. A full queue drops the entry.
func (s *JournalService) Record(e models.LaunchEvent) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = s.now().UTC()
	}
	select {
	case s.queue <- e:
	default:
		s.log.Warnw("journal_dropped", "type", e.Type, "message", e.Description)
	}
}

// Run appends queued entries until ctx is canceled, then flushes what is
// left. Appends never use ctx itself: an entry taken off the queue after
// cancellation must still be stored.
func (s *JournalService) Run(ctx context.Context) {
	store := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			s.flush(store)
			return
		case e := <-s.queue:
			s.append(store, e)
		}
	}
}

func (s *JournalService) flush(ctx context.Context) {
	for {
		select {
		case e := <-s.queue:
			s.append(ctx, e)
		default:
			return
		}
	}
}

func (s *JournalService) append(ctx context.Context, e models.LaunchEvent) {
	ctx, cancel := context.WithTimeout(ctx, appendTimeout)
	defer cancel()
	if err := s.eventRepo.Append(ctx, e); err != nil {
		s.log.Errorw("journal_append_failed", "type", e.Type, "error", err)
	}
}

func (s *JournalService) List(ctx context.Context, f JournalFilter) ([]models.LaunchEvent, error) {
	typ := normalizeEventType(f.Type)
	if !validEventType(typ) {
		return nil, errUnknownEventType
	}
	if f.Limit < 0 {
		return nil, errNegativeLimit
	}
	return s.eventRepo.List(ctx, typ, f.Limit)
}
