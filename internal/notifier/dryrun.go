package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DryRunNotifier prints what would be sent without actually sending
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a new dry-run notifier writing to stdout
func NewDryRunNotifier() *DryRunNotifier {
	return &DryRunNotifier{out: os.Stdout}
}

// Notify prints the message that would be delivered
func (n *DryRunNotifier) Notify(ctx context.Context, msg Message) error {
	fmt.Fprintf(n.out, "--- [DRY RUN] %s message ---\n", msg.Channel)
	fmt.Fprintln(n.out, msg.Text)
	fmt.Fprintf(n.out, "\n(Length: %d characters)\n\n", len(msg.Text))
	return nil
}
