package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Токены inline-кнопок меню.
const (
	menuStart = "start"
	menuHelp  = "help"
	menuAbout = "about"
)

type page struct {
	text   string
	markup tgbotapi.InlineKeyboardMarkup
}

var pages = map[string]page{
	menuStart: {
		text: "Hi! I count down to your events right in the chat.\n" +
			"Start a timer with /timer YYYY-MM-DD HH:MM event name.",
		markup: tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Help", menuHelp),
				tgbotapi.NewInlineKeyboardButtonData("About", menuAbout),
			),
		),
	},
	menuHelp: {
		text: "Commands:\n" +
			"/timer YYYY-MM-DD HH:MM name — start a countdown (HH:MM:SS works too)\n" +
			"/cancel name — cancel a countdown\n" +
			"The timer message is updated every few seconds until the deadline.",
		markup: tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Back", menuStart),
			),
		),
	},
	menuAbout: {
		text: "Countdown bot. Timers use the server's local time.",
		markup: tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Back", menuStart),
			),
		),
	},
}

// menuPage возвращает страницу меню; неизвестный токен ведёт на стартовую.
func menuPage(token string) page {
	if p, ok := pages[token]; ok {
		return p
	}
	return pages[menuStart]
}

// handleCallbackQuery обрабатывает клики по inline-кнопкам меню.
func (h *Handler) handleCallbackQuery(cq *tgbotapi.CallbackQuery) {
	// Закрыть «часовые песочки» у пользователя
	if _, err := h.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		h.log.Error("failed to answer callback", "error", err)
	}

	if cq.Message == nil {
		return
	}

	p := menuPage(cq.Data)
	edit := tgbotapi.NewEditMessageTextAndMarkup(cq.Message.Chat.ID, cq.Message.MessageID, p.text, p.markup)
	if _, err := h.api.Request(edit); err != nil {
		h.log.Error("failed to edit menu", "error", err)
		return
	}
	h.log.Info("callback handled", "data", cq.Data)
}
