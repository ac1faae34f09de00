package hooking

import "log/slog"

var logger = slog.New(slog.DiscardHandler)

// SetLogger sets the logger that receives the debug records of declarations,
// registrations and removals. A nil logger discards them.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}

	logger = l
}
