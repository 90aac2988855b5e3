package notifier

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
)

const tweetLimit = 280

var (
	markdownLink = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

	// markdownCleaner unescapes literal characters and drops emphasis markers in one pass
	markdownCleaner = strings.NewReplacer(
		"\\_", "_",
		"\\*", "*",
		"\\`", "`",
		"\\[", "[",
		"*", "",
		"`", "",
	)
)

// StatusUpdater posts a status update
type StatusUpdater interface {
	Update(status string) error
}

type twitterStatuses struct {
	client *twitter.Client
}

func (s twitterStatuses) Update(status string) error {
	_, _, err := s.client.Statuses.Update(status, nil)
	return err
}

// TwitterNotifier mirrors broadcast messages to Twitter. Private messages are ignored.
type TwitterNotifier struct {
	statuses StatusUpdater
}

// NewTwitterNotifier creates a Twitter notifier from OAuth1 credentials
func NewTwitterNotifier(apiKey, apiSecret, accessToken, accessSecret string) (*TwitterNotifier, error) {
	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{statuses: twitterStatuses{client: client}}, nil
}

// Notify posts broadcast messages as tweets
func (n *TwitterNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.Channel != ChannelBroadcast {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := n.statuses.Update(formatTweet(msg.Text)); err != nil {
		return fmt.Errorf("failed to post tweet: %w", err)
	}
	return nil
}

// formatTweet turns a Markdown message into plain text that fits in a tweet
func formatTweet(text string) string {
	tweet := markdownLink.ReplaceAllString(text, "$1: $2")
	tweet = markdownCleaner.Replace(tweet)
	tweet = strings.TrimSpace(tweet)

	if utf8.RuneCountInString(tweet) > tweetLimit {
		runes := []rune(tweet)
		tweet = string(runes[:tweetLimit-3]) + "..."
	}

	return tweet
}
