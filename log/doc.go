// Package log wraps [log/slog] with a Trace level, functional-option
// configuration, and a reconfigurable package-level logger.
//
// A [Logger] is an immutable value. [Make] builds one from an output
// writer and options; [Logger.Wrap] derives a new logger with some
// options overridden, leaving the original untouched:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
//	verbose := logger.Wrap(log.WithLevel(log.LevelTrace))
//
// Messages carry structured attributes and are emitted at one of five
// levels, [LevelTrace] through [LevelError]. Trace sits below slog's
// Debug and renders with its own TRACE label:
//
//	logger.Info("compiled resource", slog.Int("entries", n))
//	logger.Trace("cache probe", slog.String("key", key))
//
// Every level has a context-aware variant ([Logger.InfoContext] and so
// on). The context-unaware form calls it with the context returned by
// [DefaultContextProvider], which defaults to [context.TODO].
//
// [Logger.With] returns a copy that stamps fixed attributes onto every
// message:
//
//	logger = logger.With(slog.String("component", "compiler"))
//
// Records render as JSON by default, or as key=value text with
// [WithFormat]. Timestamps follow [WithTimeLayout], which accepts the
// named layouts of the [time] package ("RFC3339", "Kitchen", ...), a
// custom layout string, or "none" to omit the time field entirely.
//
// The package-level functions [Trace] through [Error] share one logger
// writing to [os.Stderr]. [Config] reconfigures it atomically; it is
// safe to call while other goroutines are logging.
package log
