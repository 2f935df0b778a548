package repl

import "errors"

var (
	// ErrNoSource means the session has nothing to evaluate against.
	ErrNoSource = errors.New("no source input")

	// ErrHistoryRange means a history index fell outside the recorded
	// entries.
	ErrHistoryRange = errors.New("history index out of range")

	// ErrEditQuit means the user declined to re-edit after a compile
	// failure.
	ErrEditQuit = errors.New("quit editing")
)
