package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"emby-cdk-manager/internal/config"
	"emby-cdk-manager/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*AdminNotifier)(nil)

// maxMessageLen is Telegram's limit for a text message.
const maxMessageLen = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// AdminNotifier sends operational messages to the configured admin chats.
type AdminNotifier struct {
	bot     sender
	chatIDs []int64
	logger  *zerolog.Logger
}

// NewAdminNotifier connects to the Bot API. It fails when the token is rejected.
func NewAdminNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*AdminNotifier, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token empty")
	}
	if len(cfg.AdminChatIDs) == 0 {
		return nil, errors.New("telegram admin_chat_ids empty")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return newAdminNotifier(bot, cfg.AdminChatIDs, logger), nil
}

func newAdminNotifier(bot sender, chatIDs []int64, logger *zerolog.Logger) *AdminNotifier {
	l := logger.With().Str("component", "AdminNotifier").Logger()
	return &AdminNotifier{bot: bot, chatIDs: append([]int64(nil), chatIDs...), logger: &l}
}

// Notify delivers text to every admin chat. Every chat is attempted; the first failure is returned.
func (n *AdminNotifier) Notify(ctx context.Context, text string) error {
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen-3] + "..."
	}
	var first error
	for _, id := range n.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(id, text)
		msg.DisableWebPagePreview = true
		if _, err := n.bot.Send(msg); err != nil {
			n.logger.Warn().Err(err).Int64("chat_id", id).Msg("telegram send failed")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// NoopNotifier logs instead of sending. Used when no bot token is configured.
type NoopNotifier struct {
	logger *zerolog.Logger
}

var _ adapter.Notifier = (*NoopNotifier)(nil)

func NewNoopNotifier(logger *zerolog.Logger) *NoopNotifier {
	l := logger.With().Str("component", "NoopNotifier").Logger()
	return &NoopNotifier{logger: &l}
}

func (n *NoopNotifier) Notify(ctx context.Context, text string) error {
	n.logger.Debug().Str("text", text).Msg("notification")
	return nil
}
