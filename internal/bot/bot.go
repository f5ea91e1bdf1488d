package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type BotLogHook struct{}

func (h *BotLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Bot: " + entry.Message
	return nil
}

func (h *BotLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Bot runs the long-polling update loop and dispatches updates to the
// handler one at a time.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	admins  []int64
	log     *logrus.Entry
}

func NewBot(api *tgbotapi.BotAPI, handler *Handler, admins []int64, log *logrus.Entry) *Bot {
	return &Bot{
		api:     api,
		handler: handler,
		admins:  admins,
		log:     log,
	}
}

func (b *Bot) Run(ctx context.Context) {
	b.setCommands()
	b.notifyAdmins("Я запущен!")
	defer b.notifyAdmins("Бот остановлен!")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("bot started in long polling mode")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handler.HandleUpdate(update)
		}
	}
}

func (b *Bot) setCommands() {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Старт"},
	)
	if _, err := b.api.Request(commands); err != nil {
		b.log.Errorf("failed to set bot commands - %v", err)
	}
}

func (b *Bot) notifyAdmins(text string) {
	for _, adminID := range b.admins {
		if _, err := b.api.Send(tgbotapi.NewMessage(adminID, text)); err != nil {
			b.log.Errorf("failed to notify admin %d - %v", adminID, err)
		}
	}
}
