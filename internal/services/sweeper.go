package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const sweepTimeout = 30 * time.Second

// Sweeper по расписанию удаляет записи, дедлайн которых прошёл больше grace
// назад. Такие записи остаются, если процесс упал, пока задача обновления работала.
type Sweeper struct {
	cron  *cron.Cron
	store *EventStore
	grace time.Duration
	log   *slog.Logger
	now   func() time.Time
}

func NewSweeper(store *EventStore, spec string, grace time.Duration, log *slog.Logger) (*Sweeper, error) {
	s := &Sweeper{
		cron:  cron.New(),
		store: store,
		grace: grace,
		log:   log,
		now:   time.Now,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.Sweep(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop останавливает расписание и ждёт текущий проход.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep выполняет один проход чистки и возвращает число удалённых записей.
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	before := s.now().Add(-s.grace)
	n, err := s.store.PurgeExpired(ctx, before)
	if err != nil {
		s.log.Error("failed to purge expired events", "error", err)
		return 0
	}
	if n > 0 {
		s.log.Info("expired events purged", "count", n, "before", before)
	}
	return n
}
