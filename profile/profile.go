package profile

// Profiler describes one profiling session.
type Profiler struct {
	Mode  string
	Dir   string
	Quiet bool
}

// Option applies a configuration option to a Profiler.
type Option func(Profiler) Profiler

// New returns a Profiler configured with opts.
func New(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		p = opt(p)
	}

	return p
}

// WithMode sets the profiling mode, one of [Modes].
func WithMode(mode string) Option {
	return func(p Profiler) Profiler {
		p.Mode = mode

		return p
	}
}

// WithDir sets the directory profiles are written to.
func WithDir(dir string) Option {
	return func(p Profiler) Profiler {
		p.Dir = dir

		return p
	}
}

// WithQuiet suppresses the profiler's own log output.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling. An empty or unsupported mode, or a binary built
// without the pprof tag, yields a Stopper that does nothing. Stop is always
// safe to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// Enabled reports whether p would actually profile.
func (p Profiler) Enabled() bool {
	for _, m := range Modes() {
		if m == p.Mode {
			return true
		}
	}

	return false
}

type ignore struct{}

func (ignore) Stop() {}
