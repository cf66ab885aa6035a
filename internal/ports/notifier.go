package ports

import "context"

// Notifier pushes human-readable status messages to an external operator
// channel. Delivery is best-effort: callers log failures and move on, they
// never propagate them.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
