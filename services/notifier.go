// Package services
// File: services/notifier.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go-drop-registry/logger"
)

// Notifier delivers a short text to the organisers.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// ---------------- telegram ----------------

// TelegramSender is the part of *tgbotapi.BotAPI we use.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var _ TelegramSender = (*tgbotapi.BotAPI)(nil)

// TelegramNotifier posts to every configured chat.
type TelegramNotifier struct {
	Bot     TelegramSender
	ChatIDs []int64
}

// NewTelegramNotifier logs in with token.
func NewTelegramNotifier(token string, chatIDs []int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	logger.Info.Printf("NewTelegramNotifier: authorised as @%s", bot.Self.UserName)
	return &TelegramNotifier{Bot: bot, ChatIDs: chatIDs}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	var errs []error
	for _, id := range n.ChatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := n.Bot.Send(tgbotapi.NewMessage(id, text)); err != nil {
			errs = append(errs, fmt.Errorf("telegram chat %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// ---------------- discord ----------------

// DiscordSession defines the Discord session methods used for notifications.
type DiscordSession interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ DiscordSession = (*discordgo.Session)(nil)

// DiscordNotifier posts to one channel.
type DiscordNotifier struct {
	Session   DiscordSession
	ChannelID string
}

// NewDiscordNotifier creates a bot session for token. No gateway connection
// is opened; messages go over REST.
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &DiscordNotifier{Session: dg, ChannelID: channelID}, nil
}

func (n *DiscordNotifier) Notify(ctx context.Context, text string) error {
	if _, err := n.Session.ChannelMessageSend(n.ChannelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord channel %s: %w", n.ChannelID, err)
	}
	return nil
}

// ---------------- fan out ----------------

// MultiNotifier sends to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, text string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
