package control

import "errors"

var (
	// ErrInvalidArgument is returned for missing or malformed input to a
	// public method (nil program, negative display index, jump on a mode
	// that has no addressable scenes).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotLoaded is returned when navigation is attempted with no active
	// program or container set.
	ErrNotLoaded = errors.New("no program loaded")

	// ErrNotConnected is returned when a session-dependent operation is
	// attempted without an active production session.
	ErrNotConnected = errors.New("no production session")

	// ErrIndexOutOfRange is returned when a jump target is outside the
	// valid container range.
	ErrIndexOutOfRange = errors.New("scene index out of range")

	// ErrSetup is returned when capture topology synthesis fails during a
	// program load.
	ErrSetup = errors.New("capture setup failed")

	// ErrProgramNotFound is returned by the program store when no program
	// exists under the requested ID.
	ErrProgramNotFound = errors.New("program not found")
)
