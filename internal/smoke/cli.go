package smoke

import (
	"io"
)

// ShowHelp prints usage information for the smoke tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Roster Smoke Tool
=================

Checks a running roster service end to end.

Usage:
  go run ./cmd/roster-smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -members int
        Number of members to create concurrently (default 200)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -keep
        Keep created members instead of deleting them at the end
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Check a local service with default settings
  go run ./cmd/roster-smoke

  # Hammer creates harder
  go run ./cmd/roster-smoke -members 5000 -workers 64 -url http://localhost:8080
`)
}
