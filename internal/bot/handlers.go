package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/natindo/CountdownBot/internal/services"
)

const (
	cmdStart  = "start"
	cmdHelp   = "help"
	cmdTimer  = "timer"
	cmdCancel = "cancel"
)

const (
	errorCmdMsg       = "Wrong format. Use: /timer YYYY-MM-DD HH:MM event name"
	errorCancelMsg    = "There is no such event to cancel. Use: /cancel event name"
	errorDuplicateMsg = "An event with this name already exists in this chat. Cancel it first."
	failureMsg        = "Something went wrong, please try again later."
	cancelMsg         = "Event %s cancelled"
	unknownCmdMsg     = "Unknown command. Use /help"
)

// Handler разбирает команды и управляет событиями.
type Handler struct {
	api   API
	store *services.EventStore
	sched *services.Scheduler
	log   *slog.Logger
}

func NewHandler(api API, store *services.EventStore, sched *services.Scheduler, log *slog.Logger) *Handler {
	return &Handler{api: api, store: store, sched: sched, log: log}
}

// HandleUpdate обрабатывает один апдейт. ctx живёт всё время работы бота:
// на нём же запускаются задачи обновления таймеров.
// Паника в обработке одного апдейта не роняет цикл чтения.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.recovered(update, r)
		}
	}()

	// Inline-кнопки (CallbackQuery)
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	h.handleCommand(ctx, update.Message)
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case cmdStart:
		h.cmdStart(msg)
	case cmdHelp:
		h.cmdHelp(msg)
	case cmdTimer:
		h.cmdTimer(ctx, msg)
	case cmdCancel:
		h.cmdCancel(ctx, msg)
	default:
		h.reply(chatID, unknownCmdMsg)
	}
}

// recovered логирует панику; на упавшую команду пользователь получает общий ответ.
func (h *Handler) recovered(update tgbotapi.Update, r any) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("failed to send failure reply", "panic", r)
		}
	}()

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		h.log.Error("update failed", "update_id", update.UpdateID, "panic", r)
		return
	}

	h.log.Error("command failed", "command", msg.Command(), "chat_id", msg.Chat.ID, "panic", r)
	h.reply(msg.Chat.ID, failureMsg)
}

func (h *Handler) cmdStart(msg *tgbotapi.Message) {
	page := menuPage(menuStart)
	out := tgbotapi.NewMessage(msg.Chat.ID, page.text)
	out.ReplyMarkup = page.markup
	h.send(out)
}

func (h *Handler) cmdHelp(msg *tgbotapi.Message) {
	h.reply(msg.Chat.ID, menuPage(menuHelp).text)
}

// cmdTimer: /timer <date> <time> <name>. Имя может содержать пробелы.
func (h *Handler) cmdTimer(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	date, clock, name, ok := splitTimerArgs(msg.CommandArguments())
	if !ok {
		h.log.Info("bad timer command", "chat_id", chatID, "args", msg.CommandArguments())
		h.reply(chatID, errorCmdMsg)
		return
	}

	ev, err := h.store.Add(ctx, chatID, name, date+" "+clock)
	switch {
	case errors.Is(err, services.ErrParse):
		h.log.Info("bad timer command", "chat_id", chatID, "error", err)
		h.reply(chatID, errorCmdMsg)
		return
	case errors.Is(err, services.ErrDuplicate):
		h.reply(chatID, errorDuplicateMsg)
		return
	case err != nil:
		h.log.Error("failed to add event", "chat_id", chatID, "error", err)
		h.reply(chatID, failureMsg)
		return
	}

	h.sched.Start(ctx, ev)
}

// splitTimerArgs делит "<date> <time> <name>". Между датой и временем может
// быть несколько пробелов, пробелы внутри имени сохраняются.
func splitTimerArgs(args string) (date, clock, name string, ok bool) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return "", "", "", false
	}
	date, clock = fields[0], fields[1]

	rest := strings.TrimSpace(args)
	rest = strings.TrimSpace(strings.TrimPrefix(rest, date))
	rest = strings.TrimSpace(strings.TrimPrefix(rest, clock))
	return date, clock, rest, rest != ""
}

func (h *Handler) cmdCancel(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		h.reply(chatID, errorCancelMsg)
		return
	}

	err := h.store.Cancel(ctx, chatID, name)
	switch {
	case errors.Is(err, services.ErrNotFound):
		h.reply(chatID, errorCancelMsg)
	case err != nil:
		h.log.Error("failed to cancel event", "chat_id", chatID, "event", name, "error", err)
		h.reply(chatID, failureMsg)
	default:
		h.reply(chatID, fmt.Sprintf(cancelMsg, name))
	}
}

func (h *Handler) reply(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.api.Send(c); err != nil {
		h.log.Error("failed to send reply", "error", err)
	}
}
