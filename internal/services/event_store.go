package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/natindo/CountdownBot/internal/database"
	"github.com/natindo/CountdownBot/internal/models"
)

var (
	// ErrNotFound — отмена события, которого нет в чате.
	ErrNotFound = errors.New("event not found")
	// ErrDuplicate — событие с таким именем уже есть, а политика запрещает перезапись.
	ErrDuplicate = database.ErrDuplicate
)

// Policy определяет, что делать при повторном имени события в чате.
type Policy string

const (
	PolicyOverwrite Policy = "overwrite"
	PolicyReject    Policy = "reject"
)

// Backend — таблица событий. Реализации лежат в пакете database
// и должны быть безопасны для конкурентного использования.
type Backend interface {
	Insert(ctx context.Context, ev models.Event, overwrite bool) error
	// Get возвращает nil, nil, если записи нет.
	Get(ctx context.Context, key models.EventKey) (*models.Event, error)
	Delete(ctx context.Context, key models.EventKey) (bool, error)
	DeleteExact(ctx context.Context, ev models.Event) (bool, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// EventStore — единственный владелец записей о событиях.
type EventStore struct {
	backend Backend
	policy  Policy
	now     func() time.Time
	log     *slog.Logger
}

type StoreOption func(*EventStore)

// WithStoreClock подменяет источник текущего времени.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *EventStore) { s.now = now }
}

func NewEventStore(backend Backend, policy Policy, log *slog.Logger, opts ...StoreOption) *EventStore {
	s := &EventStore{
		backend: backend,
		policy:  policy,
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// key нормализует имя: пробелы по краям не входят в ключ.
func key(chatID int64, name string) models.EventKey {
	return models.EventKey{ChatID: chatID, Name: strings.TrimSpace(name)}
}

// Add разбирает дату и время, создаёт событие с новым ID и сохраняет его.
// При ошибке разбора в хранилище ничего не попадает.
func (s *EventStore) Add(ctx context.Context, chatID int64, name, rawDateTime string) (models.Event, error) {
	k := key(chatID, name)
	if k.Name == "" {
		return models.Event{}, fmt.Errorf("%w: empty event name", ErrParse)
	}

	deadline, err := ComputeDeadlineRaw(rawDateTime, s.now())
	if err != nil {
		return models.Event{}, err
	}

	ev := models.Event{
		ID:       uuid.New(),
		ChatID:   k.ChatID,
		Name:     k.Name,
		Deadline: deadline,
	}
	if err := s.backend.Insert(ctx, ev, s.policy != PolicyReject); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return models.Event{}, ErrDuplicate
		}
		return models.Event{}, fmt.Errorf("insert event: %w", err)
	}

	s.log.Info("event added", "chat_id", chatID, "event", ev.Name, "deadline", deadline)
	return ev, nil
}

// Get — проверка, живо ли событие. nil означает «отменено или не существовало».
func (s *EventStore) Get(ctx context.Context, chatID int64, name string) (*models.Event, error) {
	return s.backend.Get(ctx, key(chatID, name))
}

// Delete удаляет событие и сообщает, было ли что удалять.
func (s *EventStore) Delete(ctx context.Context, chatID int64, name string) (bool, error) {
	return s.backend.Delete(ctx, key(chatID, name))
}

// Cancel — Delete для команды отмены: отсутствие записи превращается в ErrNotFound.
func (s *EventStore) Cancel(ctx context.Context, chatID int64, name string) error {
	removed, err := s.Delete(ctx, chatID, name)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if !removed {
		return ErrNotFound
	}
	s.log.Info("event cancelled", "chat_id", chatID, "event", name)
	return nil
}

// Release удаляет запись завершившегося события, если её не успели перезаписать.
func (s *EventStore) Release(ctx context.Context, ev models.Event) (bool, error) {
	return s.backend.DeleteExact(ctx, ev)
}

func (s *EventStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	return s.backend.PurgeExpired(ctx, before)
}
