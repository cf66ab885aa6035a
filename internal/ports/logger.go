package ports

import "context"

// Logger is the logging port shared by the mirror orchestrator and every
// adapter. The variadic fields carry structured context for one log line;
// implementations render the first map only.
type Logger interface {
	// Debug logs diagnostic detail below normal operational interest.
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	// Info logs normal operational events (orders detected, placed, recorded).
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	// Warn logs expected but notable conditions (rejections, retries,
	// best-effort failures).
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs unexpected failures, with the error alongside the message.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
