// Package cli contains the command line interface for fns.
//
// # Usage
//
//	fns [run] [FILE|-]...        evaluate files, stdin by default
//	fns eval SOURCE              evaluate a program given as an argument
//	fns fmt [native|ast|json|yaml] [FILE|-]
//	fns repl                     interactive session
//	fns init [--force]           write the configuration file
//
// # Configuration
//
// Flag defaults are read from $XDG_CONFIG_HOME/fns/config, a program written
// in fns whose bindings name the flags they set, and from config.json in the
// same directory:
//
//	const log_level = "debug"
//	const output = "json"
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: text or json
//   - --log-time-layout: timestamp layout name, Go layout, or none
//   - --[no-]log-caller, --[no-]log-pretty
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof
//
//   - --pprof-mode: allocs, block, clock, cpu, goroutine, heap, mem, mutex,
//     thread, or trace
//   - --pprof-dir: profile output directory (default $XDG_CACHE_HOME/fns/pprof)
package cli
