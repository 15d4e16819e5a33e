package diagnostic

import "errors"

var (
	// ErrCheckerUnavailable indicates the checker binary is missing or cannot
	// be executed. It is fatal and distinct from "no issues found".
	ErrCheckerUnavailable = errors.New("checker unavailable")

	// ErrMalformedOutput indicates the checker's report could not be parsed.
	// Collect recovers from it with an empty result and a logged warning.
	ErrMalformedOutput = errors.New("malformed diagnostic output")

	// ErrUnsupportedFormat indicates a checker command with an unknown output format.
	ErrUnsupportedFormat = errors.New("unsupported checker output format")
)
