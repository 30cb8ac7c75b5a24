// Package obs holds the structured-logging default shared by utl and sfs.
// Both packages accept a *slog.Logger from their caller and fall back to
// this default so a standalone program (or a test) never has to wire one up.
package obs

import (
	"log/slog"
	"os"
)

var def = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// Default returns the package-wide fallback logger.
func Default() *slog.Logger { return def }

// Or returns l if non-nil, otherwise Default().
func Or(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return def
}
