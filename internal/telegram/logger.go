// ABOUTME: Adapter from tgbotapi's BotLogger interface to slog
// ABOUTME: Library messages are emitted at debug level under the telegram component

package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type logBridge struct {
	logger *slog.Logger
}

func newLogBridge(logger *slog.Logger) *logBridge {
	return &logBridge{logger: logger.With("source", "tgbotapi")}
}

func (l *logBridge) Println(v ...any) {
	l.log(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l *logBridge) Printf(format string, v ...any) {
	l.log(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}

func (l *logBridge) log(msg string) {
	l.logger.Log(context.Background(), slog.LevelDebug, msg)
}
