package cli

import (
	"testing"

	"github.com/ardnew/fns/log"
)

func TestScan(t *testing.T) {
	saved := log.Default()
	t.Cleanup(func() { log.SetDefault(saved) })

	tests := []struct {
		name  string
		args  []string
		check func(logConfig) bool
	}{
		{"level separate", []string{"eval", "--log-level", "debug", "1"},
			func(f logConfig) bool { return f.Level == "debug" }},
		{"level assigned", []string{"--log-level=trace"},
			func(f logConfig) bool { return f.Level == "trace" }},
		{"format", []string{"--log-format=json"},
			func(f logConfig) bool { return f.Format == "json" }},
		{"time layout", []string{"--log-time-layout", "none"},
			func(f logConfig) bool { return f.TimeLayout == "none" }},
		{"missing value", []string{"--log-level", "--log-caller"},
			func(f logConfig) bool { return f.Level == "" && f.Caller }},
		{"negated", []string{"--no-log-pretty"},
			func(f logConfig) bool { return !f.Pretty }},
		{"negated assigned", []string{"--no-log-caller=false"},
			func(f logConfig) bool { return f.Caller }},
		{"bad bool", []string{"--log-pretty=maybe"},
			func(f logConfig) bool { return !f.Pretty }},
		{"after terminator", []string{"--", "--log-level=error"},
			func(f logConfig) bool { return f.Level == "" }},
		{"other flags", []string{"--output=json", "-o", "yaml"},
			func(f logConfig) bool { return f == logConfig{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f logConfig

			f.scan(tt.args)

			if !tt.check(f) {
				t.Errorf("scan(%q) = %+v", tt.args, f)
			}
		})
	}

	var f logConfig

	f.scan([]string{"--log-level=error", "--log-format", "json"})

	if got := log.Default(); got.Level() != log.LevelError || got.Format() != log.FormatJSON {
		t.Errorf("default logger = %v/%v", got.Level(), got.Format())
	}
}
