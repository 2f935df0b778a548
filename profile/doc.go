// Package profile provides optional runtime profiling for the lent
// application.
//
// The package wraps [github.com/pkg/profile] behind a build tag.
// Profiling support is compiled in only when building with the "pprof"
// tag; the default build replaces every operation with a no-op, so
// shipping binaries carry no profiling overhead.
//
// Parsing and resolving localization resources is where lent spends its
// time, so the cpu and allocs modes are usually the interesting ones.
//
// # Modes
//
// When built with the pprof tag the profiler understands these modes,
// each mapping to the corresponding [github.com/pkg/profile] option:
//
//   - allocs:    every allocation since process start
//   - block:     time blocked on synchronization primitives
//   - clock:     wall-clock time
//   - cpu:       CPU time
//   - goroutine: goroutine stacks
//   - heap:      live heap objects
//   - mem:       general memory profile
//   - mutex:     lock contention
//   - thread:    OS thread creation
//   - trace:     full execution trace
//
// [Modes] returns the same list programmatically; it is what the CLI
// offers in flag completion.
//
// # Sessions
//
// A session is described by a [Config] closure and adjusted with
// [WithMode], [WithPath], and [WithQuiet]:
//
//	cfg := profile.Config(profile.Disabled)
//	cfg = profile.WithMode("cpu")(cfg)
//	cfg = profile.WithPath("/tmp/profiles")(cfg)
//
//	session := cfg.Start()
//	defer session.Stop()
//
// Output lands in the configured directory under the mode's name, for
// example cpu.pprof. The lent command drives this through its
// --pprof-mode and --pprof-dir flags, defaulting the directory to the
// pprof subdirectory of the user cache (for example
// $XDG_CACHE_HOME/lent/pprof on Linux).
//
// Analyze the result with the standard tooling:
//
//	go tool pprof ./lent /tmp/profiles/cpu.pprof
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//
// # HTTP Endpoints
//
// Building with the pprof tag also imports [net/http/pprof], which
// registers handlers under /debug/pprof/ on the default mux. They become
// reachable if the application starts an HTTP server; lent itself does
// not.
//
// Mind the cost of the heavier modes: block and mutex profiling scale
// with the configured sampling rate ([runtime.SetBlockProfileRate],
// [runtime.SetMutexProfileFraction]), and trace collection is expensive
// enough that short runs are advisable.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
