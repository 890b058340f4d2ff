package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/selivandex/edge-tracker/internal/adapters/config"
	"github.com/selivandex/edge-tracker/internal/tracker"
	"github.com/selivandex/edge-tracker/pkg/logger"
)

// Notifier sends verdict-change alerts to a Telegram chat
type Notifier struct {
	api *tgbotapi.BotAPI
	cfg *config.TelegramConfig
}

// NewNotifier creates new Telegram notifier
func NewNotifier(cfg *config.TelegramConfig) (*Notifier, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	bot.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", bot.Self.UserName),
	)

	return &Notifier{api: bot, cfg: cfg}, nil
}

// VerdictChanged sends an alert when a strategy's edge verdict moves
// between classes.
func (n *Notifier) VerdictChanged(ctx context.Context, strategyName string, previous, current tracker.Verdict, est tracker.Estimate) error {
	if !n.cfg.AlertOnVerdicts {
		return nil
	}

	text := fmt.Sprintf(
		"%s *%s* verdict: %s → %s\n"+
			"Win rate: %.1f%% (95%% CI %.1f–%.1f%%)\n"+
			"Edge probability: %.1f%% over %d trades\n"+
			"Kelly fraction: %.1f%%",
		verdictEmoji(current),
		strategyName,
		previous,
		current,
		est.MeanWinRate*100,
		est.CILower*100,
		est.CIUpper*100,
		est.EdgeProbability*100,
		est.TotalTrades,
		est.KellyFraction*100,
	)

	msg := tgbotapi.NewMessage(n.cfg.ChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send verdict alert: %w", err)
	}

	logger.Debug("verdict alert sent",
		zap.String("strategy", strategyName),
		zap.String("verdict", string(current)),
	)

	return nil
}

func verdictEmoji(v tracker.Verdict) string {
	switch v {
	case tracker.VerdictConfirmedEdge:
		return "🟢"
	case tracker.VerdictProbableEdge:
		return "🟡"
	case tracker.VerdictProbablyNoEdge, tracker.VerdictNoEdge:
		return "🔴"
	default:
		return "⚪"
	}
}
