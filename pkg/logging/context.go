package logging

import (
	"log/slog"
)

// WithOp creates a logger tagged with an operator kind.
//
// Example:
//
//	log := logging.WithOp("Sort")
//	log.Debug("materialized", "rows", n)
func WithOp(op string) *slog.Logger {
	return GetLogger().With("op", op)
}

// WithRun creates a logger tagged with a query run identifier.
// The CLI assigns one per executed query so that logs from concurrent
// runs can be told apart.
func WithRun(runID string) *slog.Logger {
	return GetLogger().With("run_id", runID)
}

// WithTable creates a logger with table context.
// Use this for table sources and Load bindings.
//
// Example:
//
//	log := logging.WithTable("edges")
//	log.Info("source bound", "path", path)
func WithTable(tableName string) *slog.Logger {
	return GetLogger().With("table", tableName)
}

// WithComponent creates a logger with component/subsystem context.
//
// Example:
//
//	log := logging.WithComponent("plan")
//	log.Info("plan compiled")
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithError creates a logger with error context.
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
