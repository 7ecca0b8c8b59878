package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/natindo/CountdownBot/internal/services"
)

// Telegram отвечает этой ошибкой, если текст не изменился.
const errNotModified = "message is not modified"

// Gateway отправляет и редактирует сообщения таймеров через Bot API.
type Gateway struct {
	api API
}

func NewGateway(api API) *Gateway {
	return &Gateway{api: api}
}

func (g *Gateway) Send(_ context.Context, chatID int64, text string) (services.MessageRef, error) {
	m, err := g.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return services.MessageRef{}, err
	}
	return services.MessageRef{ChatID: chatID, MessageID: m.MessageID}, nil
}

func (g *Gateway) Edit(_ context.Context, ref services.MessageRef, text string) error {
	_, err := g.api.Request(tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text))
	if err != nil && strings.Contains(err.Error(), errNotModified) {
		return nil
	}
	return err
}
