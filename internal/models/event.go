package models

import (
	"time"

	"github.com/google/uuid"
)

// Event хранит один активный обратный отсчёт, привязанный к чату.
type Event struct {
	// ID меняется при каждой вставке: по нему задача обновления узнаёт,
	// что её запись перезаписали новой.
	ID       uuid.UUID `json:"id" db:"id"`
	ChatID   int64     `json:"chat_id" db:"chat_id"`
	Name     string    `json:"name" db:"name"`
	Deadline time.Time `json:"deadline" db:"deadline"`
}

// Key возвращает ключ (chat_id, name).
func (e Event) Key() EventKey {
	return EventKey{ChatID: e.ChatID, Name: e.Name}
}

// EventKey уникально идентифицирует живое событие.
type EventKey struct {
	ChatID int64
	Name   string
}
