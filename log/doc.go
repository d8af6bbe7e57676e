// Package log wraps [log/slog] with a small, concurrency-safe Logger whose
// configuration is fixed at creation time through functional options.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//	logger.Info("evaluated", slog.String("source", src))
//
// A zero Logger discards everything, so types may embed one without
// initializing it.
//
// Besides the slog levels the package defines [LevelTrace], used by the
// interpreter for per-call diagnostics that are too noisy for debug output.
//
// Package-level functions such as [Info] and [TraceContext] write through a
// process-wide default logger that [Config] reconfigures. Functions without a
// context argument use [DefaultContextProvider].
package log
