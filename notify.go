package main

import (
	"fmt"
	"html"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends a single Telegram message summarizing a finished
// CommandSession, per spec §4.14. Adapted from the teacher's TelegramSink
// in telegram.go, trimmed from an interactive command bridge down to a
// one-shot summary sender; the monospace-inline-code formatting is a
// trimmed copy of markdown.go's formatMarkdownToTelegramHTML covering only
// the backtick case the summary line actually uses.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier constructs a Notifier from cfg, or returns (nil, nil) if no
// token/chat ID is configured (notification is optional).
func NewNotifier(cfg *Config) (*Notifier, error) {
	token := cfg.resolvedTelegramToken()
	chatIDStr := cfg.resolvedTelegramChatID()
	if token == "" || chatIDStr == "" {
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("rewindtty: connecting to telegram: %w", err)
	}

	var chatID int64
	if _, err := fmt.Sscanf(chatIDStr, "%d", &chatID); err != nil {
		return nil, fmt.Errorf("rewindtty: invalid telegram chat id %q: %w", chatIDStr, err)
	}

	return &Notifier{bot: bot, chatID: chatID}, nil
}

// NotifySession sends a short HTML-formatted summary of a finished session:
// one line, plus a second with the error snippet when one matched. Failures are logged, not returned: a broken notifier must never
// abort a recording.
func (n *Notifier) NotifySession(s Session) {
	if n == nil {
		return
	}

	text := fmt.Sprintf("Command %s finished in %.1fs", inlineCode(s.Command), s.Duration)
	if snippet, hasError := firstErrorSnippet(s); hasError {
		text += fmt.Sprintf("\n⚠️ %s", html.EscapeString(truncate(snippet, 200)))
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = "HTML"
	if _, err := n.bot.Send(msg); err != nil {
		log.Printf("rewindtty: telegram notification failed: %v", err)
	}
}

// NotifyFinalSummary sends an overall summary once a recording closes,
// covering command count, total duration, and up to 3 flagged errors, per
// spec §4.14.
func (n *Notifier) NotifyFinalSummary(r Report) {
	if n == nil {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session closed: %d commands, %s\n", r.TotalCommands, formatDuration(r.TotalDuration))
	if r.CommandsWithStderr > 0 {
		fmt.Fprintf(&b, "%d commands with errors\n", r.CommandsWithStderr)
		for i, e := range r.ErroredCommands {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "- %s\n", inlineCode(e.Command))
		}
	}

	msg := tgbotapi.NewMessage(n.chatID, b.String())
	msg.ParseMode = "HTML"
	if _, err := n.bot.Send(msg); err != nil {
		log.Printf("rewindtty: telegram summary failed: %v", err)
	}
}

// inlineCode renders s as Telegram-HTML monospace, escaping any HTML
// metacharacters first.
func inlineCode(s string) string {
	return "<code>" + html.EscapeString(s) + "</code>"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
