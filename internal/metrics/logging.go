package metrics

import (
	"io"

	"github.com/annolens/annolens-cli/internal/logging"
	"github.com/annolens/annolens-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Metrics:", PrefixColor: ui.FgCyan}

// SetLogger sets an optional destination for metrics logs.
// When set to nil, metrics logs are disabled.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(dataset string, format string, args ...any) {
	logger.Logf(dataset, format, args...)
}
