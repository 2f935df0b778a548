// Package cli contains the command line interface for lent.
//
// # Usage
//
// The CLI compiles localization resources and resolves entities from them:
//
//	lent get brandName strings.lent
//	lent get inbox --var count=5 --locale pl strings.lent
//	lent fmt json --indent 4 strings.lent
//	lent repl strings.lent
//
// All commands accept logging and profiling configuration:
//
//	lent --log-level=debug --pprof-mode=cpu get about strings.lent
//
// # Sources
//
// Commands that read resources accept one or more source files, or "-" for
// standard input. Multiple sources compile into a single resolution scope in
// argument order; a duplicate identifier in a later source overrides the
// earlier definition. Bare names are located through the search path given
// by repeated --path flags merged with $LENT_PATH.
//
// # Configuration
//
// Flag defaults load from a config file written in the lent language
// itself: the [resolve] loader compiles the file and reads the attributes
// of its config entity back as flag values.
//
// # Logging
//
// The --log-level, --log-format, --log-time, --log-caller, and --log-pretty
// flags reconfigure the process logger. Level and format apply as soon as
// the flag is read, so a --log-level=trace placed anywhere on the line also
// traces the parse itself.
//
// # Profiling
//
// Binaries built with the pprof tag grow a --pprof-mode flag naming the
// profile to capture and a --pprof-dir flag for where to write it, which
// defaults under the user cache directory. Without the tag the flags exist
// but profiling is a no-op:
//
//	go build -tags pprof -o lent .
//
// # Examples
//
//	# trace resolution of one entity
//	lent --log-level=trace get brandName strings.lent
//
//	# capture a heap profile of an interactive session
//	lent --pprof-mode=heap repl strings.lent
//
//	# profile allocations during formatting, writing under /tmp
//	lent --pprof-mode=allocs --pprof-dir=/tmp/profiles fmt ast strings.lent
package cli
