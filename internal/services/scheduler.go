package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/natindo/CountdownBot/internal/models"
)

// State — состояние задачи обновления одного события.
type State int

const (
	StateRunning State = iota
	StateEnded
	StateCancelled
	// StateStopped — процесс завершается, задача вышла без финального сообщения.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	case StateCancelled:
		return "cancelled"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MessageRef указывает на отправленное сообщение, которое потом редактируется.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Gateway — чат-платформа: отправка и редактирование сообщений.
type Gateway interface {
	Send(ctx context.Context, chatID int64, text string) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, text string) error
}

// RefreshConfig задаёт частоту опроса.
type RefreshConfig struct {
	PollInterval  time.Duration
	FinalInterval time.Duration
	// FinalWindow — остаток, начиная с которого опрос идёт с FinalInterval.
	FinalWindow time.Duration
}

func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		PollInterval:  5 * time.Second,
		FinalInterval: time.Second,
		FinalWindow:   10 * time.Second,
	}
}

// Interval возвращает паузу перед следующей проверкой.
func (c RefreshConfig) Interval(remaining time.Duration) time.Duration {
	if remaining < c.FinalWindow {
		return c.FinalInterval
	}
	return c.PollInterval
}

// Scheduler запускает по горутине на каждое событие. Отмена кооперативная:
// задача замечает удаление записи при следующей проверке, то есть не позже
// чем через текущий интервал опроса.
type Scheduler struct {
	store  *EventStore
	gw     Gateway
	cfg    RefreshConfig
	log    *slog.Logger
	now    func() time.Time
	active atomic.Int64
}

const waitPollInterval = 10 * time.Millisecond

type SchedulerOption func(*Scheduler)

func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

func NewScheduler(store *EventStore, gw Gateway, cfg RefreshConfig, log *slog.Logger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		store: store,
		gw:    gw,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start запускает задачу обновления в отдельной горутине.
func (s *Scheduler) Start(ctx context.Context, ev models.Event) {
	s.active.Add(1)
	go func() {
		defer s.active.Add(-1)
		s.Run(ctx, ev)
	}()
}

// Active — число работающих задач.
func (s *Scheduler) Active() int {
	return int(s.active.Load())
}

// Wait ждёт, пока не останется активных задач, или отмены ctx.
// Своих горутин не запускает, поэтому его можно вызывать сколько угодно раз.
func (s *Scheduler) Wait(ctx context.Context) error {
	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	for s.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Run ведёт одно событие до конечного состояния и возвращает его.
func (s *Scheduler) Run(ctx context.Context, ev models.Event) State {
	log := s.log.With("chat_id", ev.ChatID, "event", ev.Name)
	msg := &refreshMessage{chatID: ev.ChatID}

	remaining := ev.Deadline.Sub(s.now())
	if remaining <= 0 {
		s.render(ctx, log, msg, EndedText(ev.Name))
		s.release(ctx, log, ev)
		log.Info("event has ended before start")
		return StateEnded
	}

	s.render(ctx, log, msg, CountdownText(remaining, ev.Name))

	for {
		timer := time.NewTimer(s.cfg.Interval(remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("refresh stopped")
			return StateStopped
		case <-timer.C:
		}

		remaining = ev.Deadline.Sub(s.now())

		cur, err := s.store.Get(ctx, ev.ChatID, ev.Name)
		if err != nil {
			if ctx.Err() != nil {
				return StateStopped
			}
			log.Error("failed to check event", "error", err)
			continue
		}

		if cur == nil || cur.ID != ev.ID {
			s.render(ctx, log, msg, CancelledText(ev.Name))
			log.Info("event was cancelled")
			return StateCancelled
		}

		if remaining < 0 {
			s.render(ctx, log, msg, EndedText(ev.Name))
			s.release(ctx, log, ev)
			log.Info("event has ended")
			return StateEnded
		}

		s.render(ctx, log, msg, CountdownText(remaining, ev.Name))
	}
}

// refreshMessage помнит, удалось ли уже отправить сообщение.
type refreshMessage struct {
	chatID int64
	ref    MessageRef
	sent   bool
}

// render редактирует сообщение, а если первая отправка не удалась — пробует
// отправить заново. Ошибки доставки только логируются.
func (s *Scheduler) render(ctx context.Context, log *slog.Logger, msg *refreshMessage, text string) {
	if !msg.sent {
		ref, err := s.gw.Send(ctx, msg.chatID, text)
		if err != nil {
			log.Error("failed to send message", "error", err)
			return
		}
		msg.ref = ref
		msg.sent = true
		return
	}

	if err := s.gw.Edit(ctx, msg.ref, text); err != nil {
		log.Error("failed to edit message", "error", err, "message_id", msg.ref.MessageID)
	}
}

func (s *Scheduler) release(ctx context.Context, log *slog.Logger, ev models.Event) {
	if _, err := s.store.Release(ctx, ev); err != nil {
		log.Error("failed to release event", "error", err)
	}
}
