package notifier

import (
	"context"
	"errors"
)

// Channel identifies a message destination
type Channel int

const (
	// ChannelPrivate is the operator chat
	ChannelPrivate Channel = iota
	// ChannelBroadcast is the public channel
	ChannelBroadcast
)

func (c Channel) String() string {
	switch c {
	case ChannelPrivate:
		return "private"
	case ChannelBroadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// Message is a formatted text bound for one channel
type Message struct {
	Channel Channel
	Text    string
}

// Notifier defines the interface for delivering messages
type Notifier interface {
	// Notify makes a single delivery attempt for msg
	Notify(ctx context.Context, msg Message) error
}

// Multi delivers every message to each of its notifiers
type Multi []Notifier

// Notify attempts every notifier even when earlier ones fail and joins their errors
func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
