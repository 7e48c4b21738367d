package profile

// Stopper ends an active profile and flushes it to disk.
type Stopper interface{ Stop() }

// Profiler describes a profiling session.
type Profiler struct {
	Mode  string // one of [Modes], or empty to disable
	Dir   string // output directory; empty uses the working directory
	Quiet bool   // suppress the library's start and stop messages
}

// Enabled reports whether p would start a profile.
func (p Profiler) Enabled() bool {
	if p.Mode == "" {
		return false
	}

	for _, m := range Modes() {
		if m == p.Mode {
			return true
		}
	}

	return false
}

// Start begins profiling and returns a [Stopper] that must be called to
// write the profile. Start and Stop are always safe to call; an unknown mode
// or a build without the pprof tag yields a no-op.
func (p Profiler) Start() Stopper {
	if !p.Enabled() {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
