package notifier

import (
	"context"
	"fmt"

	"github.com/titulos-monitor/titulos-monitor/internal/telegram"
)

// Sender sends a text to a Telegram chat
type Sender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// TelegramNotifier routes messages to the private chat or broadcast channel
type TelegramNotifier struct {
	sender      Sender
	privateID   string
	broadcastID string
}

// NewTelegramNotifier creates a notifier for the given bot token and chat IDs
func NewTelegramNotifier(botToken, privateID, broadcastID string) (*TelegramNotifier, error) {
	if privateID == "" {
		return nil, fmt.Errorf("private chat ID is required")
	}
	if broadcastID == "" {
		return nil, fmt.Errorf("broadcast channel ID is required")
	}

	client, err := telegram.NewClient(botToken)
	if err != nil {
		return nil, fmt.Errorf("creating telegram client: %w", err)
	}

	return newTelegramNotifier(client, privateID, broadcastID), nil
}

func newTelegramNotifier(sender Sender, privateID, broadcastID string) *TelegramNotifier {
	return &TelegramNotifier{
		sender:      sender,
		privateID:   privateID,
		broadcastID: broadcastID,
	}
}

// Notify sends msg to the chat that backs its channel
func (n *TelegramNotifier) Notify(ctx context.Context, msg Message) error {
	chatID, err := n.chatFor(msg.Channel)
	if err != nil {
		return err
	}
	if err := n.sender.SendMessage(ctx, chatID, msg.Text); err != nil {
		return fmt.Errorf("telegram %s: %w", msg.Channel, err)
	}
	return nil
}

func (n *TelegramNotifier) chatFor(ch Channel) (string, error) {
	switch ch {
	case ChannelPrivate:
		return n.privateID, nil
	case ChannelBroadcast:
		return n.broadcastID, nil
	default:
		return "", fmt.Errorf("unknown channel: %d", ch)
	}
}
