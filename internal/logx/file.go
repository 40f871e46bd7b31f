package logx

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/srlehn/wlconn/internal/errors"
)

// OpenFile returns a JSON logger appending to path and the func releasing
// the file. With debug the level drops to debug and the source is recorded.
func OpenFile(path string, debug bool) (*slog.Logger, func() error, error) {
	if len(path) == 0 {
		return nil, nil, errors.New(`empty log file path`)
	}
	if dir := filepath.Dir(path); dir != `.` {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, errors.New(err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, errors.New(err)
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	})
	return slog.New(h), f.Close, nil
}
