// Package logging provides subsystem-tagged structured logging for flowbridge.
//
// It is a thin wrapper around log/slog that attaches a subsystem attribute to
// every entry, so that log output from the parser, builder, investigator and
// platform client can be filtered independently:
//
//	logging.Info("PlatformClient", "listing flows (page=%d)", page)
//	logging.Error("Investigator", err, "payload fetch failed for run %s", runID)
//
// Output always goes to the writer passed to Init. When flowbridge serves MCP
// over stdio, that writer must be stderr: stdout carries protocol frames.
package logging
