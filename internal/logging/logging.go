package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. Format is "console" for
// humans or "json" for log shippers. A nil w writes to stderr.
func Setup(level, format string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	if w == nil {
		w = os.Stderr
	}

	switch format {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "json":
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(w).With().Timestamp().Caller().Logger()
	return nil
}
