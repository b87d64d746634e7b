package scorectl

import (
	"io"
	"os"
	"strings"

	"github.com/okian/admitcalc/pkg/logger"
)

// SetupLogging initializes the global logger on stderr so stdout stays
// reserved for command output.
func SetupLogging(verbose bool) error {
	level := "info"
	if verbose {
		level = "debug"
	}
	return logger.Init(logger.WithWriter(os.Stderr), logger.WithLevel(level))
}

// ShowHelp prints usage information.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `scorectl - command line client for admitcalc

Usage:
  scorectl [options] <command> [file]

Commands:
  `+strings.Join(Commands(), "\n  ")+`

Exports and result are written to file, or stdout when file is omitted.
Imports read file, which is required. Files ending in .yaml or .yml are
YAML, everything else is JSON, unless -format says otherwise.

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -format string
        json or yaml
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  scorectl export-institutions backup/institutions.yaml
  scorectl import-score-sets sets.json
  scorectl -format yaml result
`)
}
