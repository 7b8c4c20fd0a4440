// Package logging provides the process-wide structured logger for relalg.
//
// The package wraps [log/slog] and exposes a single global logger instance
// that is initialised once and then retrieved via GetLogger. Operators, the
// plan compiler and the CLI all obtain their logger through this package so
// that level and destination are controlled from one place.
//
// # Initialisation
//
// Call Init once at program startup:
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug, Format: "json"}); err != nil {
//	    log.Fatal(err)
//	}
//
// If GetLogger is called before Init, a default stderr logger at WARN level
// is created lazily (via sync.Once), so library users that never configure
// logging only see advisory warnings.
//
// # Context helpers
//
//	log := logging.WithOp("MergeJoin")   // adds op field
//	log := logging.WithRun(runID)        // adds run_id field
//	log := logging.WithTable("edges")    // adds table field
package logging
