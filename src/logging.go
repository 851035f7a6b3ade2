package dump1030

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Diagnostics go to stderr through this logger.  Reports are plain text on stdout.
var logger = log.NewWithOptions(os.Stderr, log.Options{ //nolint:exhaustruct
	Prefix:          "dump1030",
	ReportTimestamp: true,
})

func logInit(level string) error {
	var lvl, err = log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}

	logger.SetLevel(lvl)

	return nil
}

// SetLogOutput redirects diagnostics, mainly so tests can look at them.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}
