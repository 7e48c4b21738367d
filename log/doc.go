// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// A [Logger] is configured once at creation time using functional options.
// Reconfiguring means deriving a new Logger with [Logger.Wrap].
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("program loaded", slog.String("file", name))
//	logger.Error("evaluation failed", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithTimeLayout("Kitchen"),
//		log.WithCaller(true))
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Trace is used by the language core to
// report every declaration and assignment, so it is only useful when
// debugging scripts.
//
// # Output Formats
//
// [FormatText] (default) writes key=value lines, colorized when the output
// is a terminal and [WithPretty] is enabled. [FormatJSON] writes one JSON
// object per line.
//
// # Package-Level Logger
//
// Functions such as [Info] and [DebugContext] log through a package-level
// Logger writing to standard error. [Config] adjusts it. Calls without an
// explicit context use [DefaultContextProvider].
//
// The zero Logger discards all output.
package log
