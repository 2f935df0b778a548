package profile

// Config functions return the pprof mode, output path, and quiet flag that
// describe a profiling session.
type Config func() (mode, path string, quiet bool)

// Disabled is the zero configuration. Starting it is a no-op.
func Disabled() (mode, path string, quiet bool) { return "", "", false }

// Start launches the configured profiler and returns a handle for stopping
// it.
//
// When no mode is configured, or the binary was built without the [Tag]
// build tag, the returned handle is a no-op. Start and Stop are always safe
// to call.
func (c Config) Start() interface{ Stop() } {
	mode, path, quiet := c()

	if mode == "" {
		return ignore{}
	}

	return start(mode, path, quiet)
}

// WithMode returns a functional option for setting a profiler's mode.
func WithMode(mode string) func(Config) Config {
	return func(c Config) Config {
		_, path, quiet := c()

		return fix(mode, path, quiet)
	}
}

// WithPath returns a functional option for setting a profiler's output path.
func WithPath(path string) func(Config) Config {
	return func(c Config) Config {
		mode, _, quiet := c()

		return fix(mode, path, quiet)
	}
}

// WithQuiet returns a functional option for setting a profiler's quiet flag.
func WithQuiet(quiet bool) func(Config) Config {
	return func(c Config) Config {
		mode, path, _ := c()

		return fix(mode, path, quiet)
	}
}

func fix(mode, path string, quiet bool) Config {
	return func() (string, string, bool) {
		return mode, path, quiet
	}
}

type ignore struct{}

func (ignore) Stop() {}
