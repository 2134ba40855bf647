package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// appLog is replaced by setupLogger at startup; tests keep the no-op logger.
var appLog = zap.NewNop().Sugar()

// setupLogger installs a JSON logger in production and a console logger
// otherwise.
func setupLogger(production bool, opts ...zap.Option) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if production {
		l, err = zap.NewProduction(opts...)
	} else {
		l, err = zap.NewDevelopment(opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	appLog = l.Sugar()
	return appLog, nil
}

// requestLog returns the app logger tagged with the request id, if any.
func requestLog(ctx context.Context) *zap.SugaredLogger {
	if reqID, ok := ctx.Value(requestIDKey).(string); ok && reqID != "" {
		return appLog.With("request_id", reqID)
	}
	return appLog
}

// formatUptime returns a human-readable string for a duration.
func formatUptime(d time.Duration) string {
	seconds := int(d.Seconds()) % 60
	minutes := int(d.Minutes()) % 60
	hours := int(d.Hours())
	switch {
	case hours > 0:
		return fmt.Sprintf("%d hour%s, %d minute%s, %d second%s",
			hours, plural(hours),
			minutes, plural(minutes),
			seconds, plural(seconds))
	case minutes > 0:
		return fmt.Sprintf("%d minute%s, %d second%s",
			minutes, plural(minutes),
			seconds, plural(seconds))
	default:
		return fmt.Sprintf("%d second%s", seconds, plural(seconds))
	}
}

// plural returns "s" if n != 1, otherwise "".
func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// logInfo logs an info-level message.
func logInfo(format string, v ...any) {
	appLog.Infof(format, v...)
}

// logWarn logs a warning-level message.
func logWarn(format string, v ...any) {
	appLog.Warnf(format, v...)
}

// logFatal logs a fatal error and exits.
func logFatal(format string, v ...any) {
	appLog.Fatalf(format, v...)
}
