// Package scorectl implements a command line client for the calculator's
// HTTP API: exporting and importing institutions and score sets, and
// printing the current result.
package scorectl

import "time"

// Config holds one scorectl invocation.
type Config struct {
	BaseURL string        // Base URL of the service
	Timeout time.Duration // HTTP request timeout
	Command string        // One of the Command* constants
	File    string        // Input file for imports, output file for exports; stdout when empty
	Format  Format        // Output format; inferred from File when empty
	Verbose bool          // Enable debug logging
}

// Supported commands.
const (
	CommandExportInstitutions = "export-institutions"
	CommandImportInstitutions = "import-institutions"
	CommandExportScoreSets    = "export-score-sets"
	CommandImportScoreSets    = "import-score-sets"
	CommandResult             = "result"
)

// Commands lists every supported command in help order.
func Commands() []string {
	return []string{
		CommandExportInstitutions,
		CommandImportInstitutions,
		CommandExportScoreSets,
		CommandImportScoreSets,
		CommandResult,
	}
}
