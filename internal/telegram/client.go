// Package telegram provides a client for sending prediction reminders via the
// Telegram Bot API. It formats the collection summary (overdue predictions,
// the next one coming up and the current score) into a MarkdownV2 message and
// delivers it with retry logic.
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rotisserie/eris"

	"github.com/rewired-gh/predict/internal/logger"
	"github.com/rewired-gh/predict/internal/scoring"
	"github.com/rewired-gh/predict/internal/tracker"
)

// sender is the part of the bot API the client uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications
type Client struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, eris.Wrap(err, "telegram: invalid chat ID")
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, eris.Wrap(err, "telegram: create bot")
	}

	return newClient(bot, chatIDInt, maxRetries, retryDelayBase), nil
}

func newClient(bot sender, chatID int64, maxRetries int, retryDelayBase time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// SendSummary sends a reminder built from the collection summary.
func (c *Client) SendSummary(summary tracker.Summary, now time.Time) error {
	return c.send(formatSummary(summary, now))
}

func (c *Client) send(message string) error {
	msg := tgbotapi.NewMessage(c.chatID, message)
	msg.ParseMode = "MarkdownV2" // Use MarkdownV2 for better escaping support

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Warn("Telegram send attempt %d/%d failed: %v", i+1, c.maxRetries, err)
		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
		}
	}

	logger.Error("Telegram send gave up after %d attempts", c.maxRetries)
	return eris.Wrapf(lastErr, "telegram: send message after %d retries", c.maxRetries)
}

// formatSummary formats a summary into a Telegram message
func formatSummary(summary tracker.Summary, now time.Time) string {
	var b strings.Builder
	b.WriteString("🔮 *Prediction reminder*\n\n")

	if summary.ActionRequired() {
		b.WriteString(fmt.Sprintf("⏰ %d prediction%s waiting to be solved:\n",
			len(summary.Pending), plural(len(summary.Pending))))
		for _, p := range summary.Pending {
			b.WriteString(fmt.Sprintf("• `%s` %s \\(due %s\\)\n",
				p.ShortID(),
				escapeMarkdownV2(p.Statement),
				escapeMarkdownV2(p.RealizationDate.Format("2006-01-02"))))
		}
		b.WriteString("\n")
	}

	if summary.Next != nil {
		b.WriteString(fmt.Sprintf("📅 Next: `%s` %s in %s\n",
			summary.Next.ShortID(),
			escapeMarkdownV2(summary.Next.Statement),
			escapeMarkdownV2(formatDuration(summary.Next.RealizationDate.Sub(now)))))
	}

	if summary.Brier == scoring.NoDataScore {
		b.WriteString("📊 Brier score: no solved predictions yet\n")
	} else {
		b.WriteString(fmt.Sprintf("📊 Brier score: *%s*\n", escapeMarkdownV2(fmt.Sprintf("%.2f", summary.Brier))))
	}

	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	// Characters that need escaping in MarkdownV2:
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '\\', '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

// formatDuration formats a duration in days, hours or minutes
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if days := int(d.Hours() / 24); days >= 1 {
		return fmt.Sprintf("%dd", days)
	}
	if hours := int(d.Hours()); hours >= 1 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
