// Package version contains information on the current version of lexcheck.
// It is split from the main program so the CLI and the server can share it.
package version

// Current is the version of the lexcheck analyzer and CLI.
const Current = "0.1.0"

// ServerCurrent is the version of the lexcheckd analysis server.
const ServerCurrent = "0.1.0"
