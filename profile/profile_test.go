package profile

import (
	"slices"
	"testing"
)

func TestProfilerDisabled(t *testing.T) {
	for _, p := range []Profiler{
		{},
		{Mode: "no-such-mode"},
		{Mode: "", Dir: t.TempDir()},
	} {
		if p.Enabled() {
			t.Errorf("%+v reports enabled", p)
		}

		// Must be callable without effect.
		p.Start().Stop()
	}
}

func TestModesSorted(t *testing.T) {
	modes := Modes()
	if !slices.IsSorted(modes) {
		t.Errorf("Modes() = %v is not sorted", modes)
	}

	for _, m := range modes {
		if !(Profiler{Mode: m}).Enabled() {
			t.Errorf("mode %q not enabled", m)
		}
	}
}
