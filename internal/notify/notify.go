// Package notify delivers moderator replies back to the original
// submitter over an external chat channel.
package notify

import "context"

// Notifier sends one text message to a recipient reference. Failures
// surface to the caller; there is no internal retry.
type Notifier interface {
	Send(ctx context.Context, recipientRef, text string) error
}
