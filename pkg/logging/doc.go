// Package logging provides structured logging for the controller, built on
// Go's standard slog package.
//
// All log entries carry a subsystem identifier for categorization plus an
// optional error. Output is either human-readable text or one JSON object
// per line, selected at initialization:
//
//	logging.Init(logging.LevelInfo, logging.FormatJSON, os.Stdout)
//	logging.Info("Controller", "starting reconciliation loop")
//	logging.Error("Organizr", err, "failed to list tabs")
package logging
