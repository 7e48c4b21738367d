package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/fns/log"
)

// logFormat configures the default logger's format as a side effect of
// parsing, so that messages logged while kong parses use it.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the default logger's level as a side effect of
// parsing.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"${logLevel}"   enum:"${logLevelEnum}"  help:"Set log level."                                          placeholder:"${enum}"`
	Format     logFormat `default:"${logFormat}"  enum:"${logFormatEnum}" help:"Set log format."                                         placeholder:"${enum}"`
	TimeLayout string    `default:"${logTime}"                             help:"Set timestamp format (layout name, Go layout, or none)."`
	Caller     bool      `default:"false"                                  help:"Include caller information."                             negatable:""`
	Pretty     bool      `default:"true"                                   help:"Enable colorized pretty printing."                       negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevel":      log.DefaultLevel.String(),
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormat":     log.DefaultFormat.String(),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
		"logTime":       "RFC3339",
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start applies the parsed flags to the default logger.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan applies the log flags in args before kong parses them, regardless of
// where they appear on the command line. Arguments after "--" are operands.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			return
		}

		name, value, assigned := strings.Cut(args[i], "=")

		negated := false
		if n, ok := strings.CutPrefix(name, "--no-log-"); ok {
			name, negated = n, true
		} else if n, ok := strings.CutPrefix(name, "--log-"); ok {
			name = n
		} else {
			continue
		}

		switch name {
		case "level", "format", "time-layout":
			if negated {
				continue
			}

			if !assigned {
				if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
					continue
				}

				i++
				value = args[i]
			}

			f.set(name, value)

		case "caller", "pretty":
			on := true

			if assigned {
				b, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				on = b
			}

			f.setBool(name, on != negated)
		}
	}
}

func (f *logConfig) set(name, value string) {
	switch name {
	case "level":
		_ = f.Level.UnmarshalText([]byte(value))
	case "format":
		_ = f.Format.UnmarshalText([]byte(value))
	case "time-layout":
		f.TimeLayout = value
		log.Config(log.WithTimeLayout(value))
	}
}

func (f *logConfig) setBool(name string, on bool) {
	switch name {
	case "caller":
		f.Caller = on
		log.Config(log.WithCaller(on))
	case "pretty":
		f.Pretty = on
		log.Config(log.WithPretty(on))
	}
}
