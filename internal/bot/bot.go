package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API — часть *tgbotapi.BotAPI, которой пользуется бот.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// NewBot инициализирует *tgbotapi.BotAPI и регистрирует список команд.
func NewBot(token string, debug bool, log *slog.Logger) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	bot.Debug = debug

	commands := []tgbotapi.BotCommand{
		{Command: cmdStart, Description: "Show the menu"},
		{Command: cmdHelp, Description: "How to use the bot"},
		{Command: cmdTimer, Description: "Start a countdown: /timer YYYY-MM-DD HH:MM name"},
		{Command: cmdCancel, Description: "Cancel a countdown: /cancel name"},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return nil, fmt.Errorf("set bot commands: %w", err)
	}

	log.Info("bot initialized", "username", bot.Self.UserName)
	return bot, nil
}

// Run читает апдейты и передаёт их обработчику, пока не отменён ctx.
func Run(ctx context.Context, bot *tgbotapi.BotAPI, h *Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)
	defer bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.HandleUpdate(ctx, update)
		}
	}
}
